package models

// ReviewNotification bundles one reviewed commit for dispatch
type ReviewNotification struct {
	ProjectName string       `json:"project_name"`
	Branch      string       `json:"branch"`
	Commit      CommitRecord `json:"commit"`
	Review      ReviewResult `json:"review"`
}

// CommitReview pairs a commit with its review inside a batch report
type CommitReview struct {
	Commit CommitRecord `json:"commit"`
	Review ReviewResult `json:"review"`
}

// BatchNotification bundles a whole push for a single aggregate report
type BatchNotification struct {
	ProjectName string         `json:"project_name"`
	Branch      string         `json:"branch"`
	Author      string         `json:"author"`
	Reviews     []CommitReview `json:"reviews"`
}

// PipelineResult summarizes one push event run for the HTTP caller
type PipelineResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ReviewCount int    `json:"review_count"`
}
