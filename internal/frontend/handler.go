package frontend

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewSPAHandler serves the bundled single-page app: hashed assets with
// long-lived cache headers, known files directly, and everything else falls
// back to index.html for client-side routing.
func NewSPAHandler(distFS fs.FS) gin.HandlerFunc {
	fileServer := http.FileServer(http.FS(distFS))

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if strings.HasPrefix(path, "/assets/") {
			c.Header("Cache-Control", "public, max-age=31536000, immutable")
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}

		cleanPath := strings.TrimPrefix(path, "/")
		if cleanPath == "" {
			cleanPath = "index.html"
		}

		if _, err := fs.Stat(distFS, cleanPath); err == nil {
			c.Header("Cache-Control", "public, max-age=3600")
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}

		index, err := fs.ReadFile(distFS, "index.html")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "frontend bundle missing"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	}
}
