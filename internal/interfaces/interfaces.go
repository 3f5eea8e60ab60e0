package interfaces

import (
	"context"

	"github.com/igorsal/commit-reviewer/internal/models"
)

// DiffFetcher retrieves per-commit diffs and file content from the code host
type DiffFetcher interface {
	FetchCommitDiff(ctx context.Context, commitSHA string) (*models.CommitDiff, error)
}

// ReviewEngine produces a structured review for one commit. The shipped
// implementation is a deterministic heuristic; a model-backed engine can be
// substituted without touching the orchestrator.
type ReviewEngine interface {
	Review(ctx context.Context, req models.ReviewRequest) (*models.ReviewResult, error)
}

// NotificationDispatcher formats and delivers review reports to the chat webhook
type NotificationDispatcher interface {
	NotifyReview(ctx context.Context, n models.ReviewNotification) error
	NotifyBatch(ctx context.Context, n models.BatchNotification) error
	NotifyText(ctx context.Context, title, message string) error
}

// ReviewPipeline defines the push event processing orchestration
type ReviewPipeline interface {
	ProcessPush(ctx context.Context, token string, event *models.PushEvent) (*models.PipelineResult, error)
}

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Fatal(msg string, err error, fields ...interface{})
}

// MetricsCollector defines the interface for collecting metrics
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	RecordDuration(name string, duration float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
}

// CircuitBreaker defines the interface for circuit breaker pattern
type CircuitBreaker interface {
	Execute(req func() (interface{}, error)) (interface{}, error)
	Name() string
	State() string
}
