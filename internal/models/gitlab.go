package models

// PushEvent represents the GitLab push webhook payload
type PushEvent struct {
	ObjectKind string      `json:"object_kind" validate:"required"`
	Before     string      `json:"before"`
	After      string      `json:"after"`
	Ref        string      `json:"ref"`
	UserName   string      `json:"user_name"`
	UserEmail  string      `json:"user_email"`
	Project    Project     `json:"project"`
	Commits    []RawCommit `json:"commits"`
}

// Project represents the GitLab project block of a webhook payload
type Project struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	WebURL  string `json:"web_url"`
	HTTPURL string `json:"http_url"`
}

// RawCommit represents a commit exactly as GitLab sends it
type RawCommit struct {
	ID        string       `json:"id"`
	Message   string       `json:"message"`
	Timestamp string       `json:"timestamp"`
	URL       string       `json:"url"`
	Author    CommitAuthor `json:"author"`
	Added     []string     `json:"added"`
	Removed   []string     `json:"removed"`
	Modified  []string     `json:"modified"`
}

// CommitAuthor represents the author block of a raw commit
type CommitAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CommitRecord is the normalized commit handed to the pipeline.
// Created once per push, read-only thereafter.
type CommitRecord struct {
	ID           string   `json:"id"`
	ShortID      string   `json:"short_id"`
	Message      string   `json:"message"`
	Author       string   `json:"author"`
	Timestamp    string   `json:"timestamp"`
	URL          string   `json:"url"`
	FilesChanged []string `json:"files_changed"`
}

// ValidatedPush is the EventValidator output for one webhook delivery
type ValidatedPush struct {
	IsValidPush bool           `json:"is_valid_push"`
	ProjectName string         `json:"project_name"`
	ProjectURL  string         `json:"project_url"`
	Branch      string         `json:"branch"`
	Commits     []CommitRecord `json:"commits"`
}
