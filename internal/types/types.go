package types

// SkillCategory classifies an inferred skill.
type SkillCategory string

const (
	CategoryLanguage  SkillCategory = "Language"
	CategoryFramework SkillCategory = "Framework"
	CategoryTool      SkillCategory = "Tool"
	CategoryDatabase  SkillCategory = "Database"
	CategoryPlatform  SkillCategory = "Platform"
)

// SkillCategories lists every valid category, in the order the analysis
// schema advertises them.
var SkillCategories = []string{
	string(CategoryLanguage),
	string(CategoryFramework),
	string(CategoryTool),
	string(CategoryDatabase),
	string(CategoryPlatform),
}

// Valid reports whether c is one of the enumerated categories.
func (c SkillCategory) Valid() bool {
	switch c {
	case CategoryLanguage, CategoryFramework, CategoryTool, CategoryDatabase, CategoryPlatform:
		return true
	}
	return false
}

// UserProfile is a public GitHub account as returned by GET /users/{username}.
// Unknown upstream fields are ignored on decode.
type UserProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	HTMLURL     string `json:"html_url"`
}

// Repository is one public repo owned by the user.
type Repository struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	Language        *string  `json:"language"`
	Topics          []string `json:"topics"`
	StargazersCount int      `json:"stargazers_count"`
	UpdatedAt       string   `json:"updated_at"`
	HTMLURL         string   `json:"html_url"`
}

// RepositorySummary is the token-budget-limited projection of a Repository
// sent to the model. The compact keys are part of the wire contract with the
// analysis prompt.
type RepositorySummary struct {
	Name        string   `json:"n"`
	Description *string  `json:"d"`
	Language    *string  `json:"l"`
	Topics      []string `json:"t"`
	UpdatedAt   string   `json:"u"`
}

// Skill is one inferred capability with a 0-100 relative usage score.
type Skill struct {
	Name       string        `json:"name"`
	Category   SkillCategory `json:"category"`
	UsageScore float64       `json:"usageScore"`
}

// LanguageShare is one language's relative weight. Percentages are
// model-generated and not renormalized.
type LanguageShare struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// DeveloperProfile is the full analysis result. Skills are sorted by usage
// score, descending, before the profile is handed to any consumer.
type DeveloperProfile struct {
	Summary      string          `json:"summary"`
	Archetype    string          `json:"archetype"`
	Skills       []Skill         `json:"skills"`
	TopLanguages []LanguageShare `json:"topLanguages"`
}

// AppState is the orchestration phase of one analysis run.
type AppState string

const (
	StateIdle    AppState = "idle"
	StateLoading AppState = "loading"
	StateSuccess AppState = "success"
	StateError   AppState = "error"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Username    string              `json:"username" binding:"required"`
	RepoSummary []RepositorySummary `json:"repoSummary" binding:"required"`
}

// RecapResponse is the body of a successful GET /api/recap.
type RecapResponse struct {
	User    *UserProfile      `json:"user"`
	Profile *DeveloperProfile `json:"profile"`
}
