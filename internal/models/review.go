package models

// ContentStatus explains why file content is or is not attached to a FileDiff
type ContentStatus string

const (
	ContentFetched     ContentStatus = "fetched"
	ContentDeletedFile ContentStatus = "deleted_file"
	ContentNotText     ContentStatus = "not_text"
	ContentFetchFailed ContentStatus = "fetch_failed"
)

// FileDiff holds the unified diff for one file plus optional raw content.
// Content is best-effort enrichment; ContentStatus records why it is absent.
type FileDiff struct {
	FilePath      string        `json:"file_path"`
	Content       string        `json:"content,omitempty"`
	ContentStatus ContentStatus `json:"content_status"`
	Diff          string        `json:"diff"`
}

// CommitDiff is the DiffFetcher output for one commit
type CommitDiff struct {
	Diff  string     `json:"diff"`
	Files []FileDiff `json:"files"`
}

// ReviewRequest carries everything the review engine needs for one commit
type ReviewRequest struct {
	CommitMessage string     `json:"commit_message"`
	AuthorName    string     `json:"author_name"`
	Files         []FileDiff `json:"files"`
	ProjectName   string     `json:"project_name"`
	CommitURL     string     `json:"commit_url"`
}

// Severity is the ordinal issue rank
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IssueType classifies what kind of problem an issue describes
type IssueType string

const (
	IssueBug             IssueType = "bug"
	IssueSecurity        IssueType = "security"
	IssuePerformance     IssueType = "performance"
	IssueStyle           IssueType = "style"
	IssueMaintainability IssueType = "maintainability"
	IssueDocumentation   IssueType = "documentation"
)

// Issue represents one finding in a review
type Issue struct {
	Severity   Severity  `json:"severity"`
	Type       IssueType `json:"type"`
	File       string    `json:"file"`
	Line       int       `json:"line,omitempty"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// ReviewResult is the structured output of a review engine.
// OverallScore is always clamped to [0, 10].
type ReviewResult struct {
	OverallScore    float64  `json:"overall_score"`
	Summary         string   `json:"summary"`
	Issues          []Issue  `json:"issues"`
	Positives       []string `json:"positives"`
	Recommendations []string `json:"recommendations"`
}
