package apperrors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// Kind names the failure classes a recap run can end with. Every error that
// crosses a package boundary in this service carries exactly one Kind.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindNoActivity  Kind = "no_activity"
	KindTimeout     Kind = "timeout"
	KindAnalysis    Kind = "analysis"
	KindUpstream    Kind = "upstream"
	KindTransport   Kind = "transport"
	KindInternal    Kind = "internal"
)

// AppError pairs an errbuilder error with the failure kind and the HTTP
// status the API surfaces it with.
type AppError struct {
	*errbuilder.ErrBuilder
	Kind       Kind
	HTTPStatus int
}

func (e *AppError) Error() string {
	return e.ErrBuilder.Msg
}

func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

func newAppError(code errbuilder.ErrCode, kind Kind, status int, msg string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(code).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &AppError{
		ErrBuilder: builder,
		Kind:       kind,
		HTTPStatus: status,
	}
}

// NewValidation reports invalid caller input.
func NewValidation(msg string) *AppError {
	return newAppError(errbuilder.CodeInvalidArgument, KindValidation, http.StatusBadRequest, msg, nil)
}

// NewNotFound reports that the target username does not exist upstream.
func NewNotFound(username string) *AppError {
	msg := fmt.Sprintf("GitHub user %q not found", username)
	return newAppError(errbuilder.CodeNotFound, KindNotFound, http.StatusNotFound, msg, nil)
}

// NewRateLimited reports an exhausted upstream quota. The message hints at
// supplying a token because unauthenticated GitHub calls have a very low
// ceiling.
func NewRateLimited() *AppError {
	msg := "GitHub rate limit exceeded. Set GITHUB_TOKEN to raise the limit."
	return newAppError(errbuilder.CodeResourceExhausted, KindRateLimited, http.StatusTooManyRequests, msg, nil)
}

// NewNoActivity reports that no repository was updated in the target year.
// Terminal for the run, not a transport failure.
func NewNoActivity(year int) *AppError {
	msg := fmt.Sprintf("no activity found in %d; this analysis only tracks work done that year", year)
	return newAppError(errbuilder.CodeFailedPrecondition, KindNoActivity, http.StatusUnprocessableEntity, msg, nil)
}

// NewTimeout reports that the analysis step exceeded its deadline.
func NewTimeout(msg string, cause error) *AppError {
	return newAppError(errbuilder.CodeDeadlineExceeded, KindTimeout, http.StatusGatewayTimeout, msg, cause)
}

// NewAnalysis reports a missing, unparsable, or schema-nonconformant model
// response.
func NewAnalysis(msg string, cause error) *AppError {
	return newAppError(errbuilder.CodeInternal, KindAnalysis, http.StatusBadGateway, msg, cause)
}

// NewUpstream reports a non-success status from an HTTP dependency.
func NewUpstream(msg string, cause error) *AppError {
	return newAppError(errbuilder.CodeUnavailable, KindUpstream, http.StatusBadGateway, msg, cause)
}

// NewTransport reports a network-level failure before any status was read.
func NewTransport(msg string, cause error) *AppError {
	return newAppError(errbuilder.CodeUnavailable, KindTransport, http.StatusBadGateway, msg, cause)
}

// KindOf extracts the failure kind from err, or KindInternal when err is not
// an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ToAppError converts any error into an AppError, defaulting to an internal
// failure with a generic message so raw internals never leak to callers.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	msg := err.Error()
	if msg == "" {
		msg = "something went wrong"
	}
	return newAppError(errbuilder.CodeInternal, KindInternal, http.StatusInternalServerError, msg, err)
}

// Respond logs err and writes it as a {"error": msg} JSON body with the
// mapped status. No failure is surfaced without being logged first.
func Respond(c *gin.Context, err error) {
	appErr := ToAppError(err)
	slog.Error("request failed",
		"kind", appErr.Kind,
		"status", appErr.HTTPStatus,
		"path", c.Request.URL.Path,
		"ip", c.ClientIP(),
		"error", appErr.Error(),
	)
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{"error": appErr.Error()})
}
