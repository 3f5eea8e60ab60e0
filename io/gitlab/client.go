package gitlab

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/igorsal/commit-reviewer/internal/config"
	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

// file content is best-effort context for the review engine; anything beyond
// this prefix is dropped before the content reaches a scorer
const maxContentBytes = 5000

// extensions considered text-like enough to fetch raw content for
var textFilePattern = regexp.MustCompile(`(?i)\.(go|js|ts|tsx|jsx|py|java|cpp|c|h|css|html|md|json|yaml|yml|xml)$`)

type Client struct {
	httpClient     *resty.Client
	config         config.GitLabConfig
	logger         interfaces.Logger
	circuitBreaker interfaces.CircuitBreaker
	metrics        interfaces.MetricsCollector
}

// NewClient creates a new GitLab API client with circuit breaker and metrics
func NewClient(cfg config.GitLabConfig, logger interfaces.Logger, metrics interfaces.MetricsCollector) *Client {
	// Configure Resty client
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.AccessToken).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))

	// Configure circuit breaker
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gitlab-api",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("GitLab API circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.SetGauge("circuit_breaker_state", float64(to), map[string]string{
				"service": "gitlab",
				"name":    name,
			})
		},
	})

	return &Client{
		httpClient:     client,
		config:         cfg,
		logger:         logger,
		circuitBreaker: &circuitBreakerWrapper{cb: cb},
		metrics:        metrics,
	}
}

// circuitBreakerWrapper implements interfaces.CircuitBreaker
type circuitBreakerWrapper struct {
	cb *gobreaker.CircuitBreaker
}

func (w *circuitBreakerWrapper) Execute(req func() (interface{}, error)) (interface{}, error) {
	return w.cb.Execute(req)
}

func (w *circuitBreakerWrapper) Name() string {
	return w.cb.Name()
}

func (w *circuitBreakerWrapper) State() string {
	return w.cb.State().String()
}

// FetchCommitDiff retrieves the per-file diffs for one commit and, best
// effort, the raw content of each text-like file at that commit. Only the
// diff list request itself can fail the call; content fetch failures are
// recorded on the FileDiff and swallowed.
func (c *Client) FetchCommitDiff(ctx context.Context, commitSHA string) (*models.CommitDiff, error) {
	startTime := time.Now()
	labels := map[string]string{
		"service":   "gitlab",
		"operation": "commit_diff",
	}

	c.logger.Debug("Fetching commit diff",
		"project_id", c.config.ProjectID,
		"commit_sha", commitSHA,
		"circuit_breaker_state", c.circuitBreaker.State(),
	)

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.executeFetch(ctx, commitSHA)
	})

	duration := time.Since(startTime).Seconds()
	c.metrics.RecordDuration("gitlab_request_duration_seconds", duration, labels)

	if err != nil {
		labels["status"] = "error"
		c.metrics.IncrementCounter("gitlab_requests_total", labels)

		if c.circuitBreaker.State() == gobreaker.StateOpen.String() {
			c.logger.Error("GitLab API circuit breaker open", err, "commit_sha", commitSHA)
			return nil, pkgerrors.NewUnavailableError("gitlab").WithCause(err)
		}

		c.logger.Error("Failed to fetch commit diff", err, "commit_sha", commitSHA)
		return nil, err
	}

	labels["status"] = "success"
	c.metrics.IncrementCounter("gitlab_requests_total", labels)

	commitDiff := result.(*models.CommitDiff)

	c.logger.Debug("Fetched commit diff",
		"commit_sha", commitSHA,
		"files", len(commitDiff.Files),
		"duration_ms", duration*1000,
	)

	return commitDiff, nil
}

// executeFetch performs the diff list request and the per-file content requests
func (c *Client) executeFetch(ctx context.Context, commitSHA string) (*models.CommitDiff, error) {
	var entries []CommitDiffEntry
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&entries).
		Get(fmt.Sprintf("/api/v4/projects/%d/repository/commits/%s/diff", c.config.ProjectID, commitSHA))

	if err != nil {
		return nil, pkgerrors.NewExternalError("gitlab", err.Error()).WithCause(err)
	}

	if resp.IsError() {
		errorMsg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), string(resp.Body()))

		switch resp.StatusCode() {
		case 401:
			return nil, pkgerrors.NewUnauthorizedError("Invalid GitLab access token")
		case 429:
			return nil, pkgerrors.NewRateLimitError("gitlab")
		case 500, 502, 503, 504:
			return nil, pkgerrors.NewUnavailableError("gitlab").WithContext("status_code", resp.StatusCode())
		default:
			return nil, pkgerrors.NewExternalError("gitlab", errorMsg)
		}
	}

	var fullDiff strings.Builder
	files := make([]models.FileDiff, 0, len(entries))

	for _, entry := range entries {
		fullDiff.WriteString(fmt.Sprintf("\n--- %s\n+++ %s\n%s", entry.OldPath, entry.NewPath, entry.Diff))

		filePath := entry.NewPath
		if filePath == "" {
			filePath = entry.OldPath
		}

		file := models.FileDiff{
			FilePath: filePath,
			Diff:     entry.Diff,
		}

		switch {
		case entry.DeletedFile:
			file.ContentStatus = models.ContentDeletedFile
		case !textFilePattern.MatchString(entry.NewPath):
			file.ContentStatus = models.ContentNotText
		default:
			content, err := c.fetchFileContent(ctx, entry.NewPath, commitSHA)
			if err != nil {
				// File may be too large, missing at this ref, or the request
				// failed transiently; the review proceeds without content.
				c.logger.Debug("Skipping file content", "file", entry.NewPath, "reason", err.Error())
				file.ContentStatus = models.ContentFetchFailed
			} else {
				file.Content = content
				file.ContentStatus = models.ContentFetched
			}
		}

		files = append(files, file)
	}

	return &models.CommitDiff{
		Diff:  fullDiff.String(),
		Files: files,
	}, nil
}

// fetchFileContent retrieves the raw file body at the given commit, truncated
// to maxContentBytes
func (c *Client) fetchFileContent(ctx context.Context, filePath, ref string) (string, error) {
	labels := map[string]string{
		"service":   "gitlab",
		"operation": "file_raw",
	}

	startTime := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("ref", ref).
		Get(fmt.Sprintf("/api/v4/projects/%d/repository/files/%s/raw", c.config.ProjectID, url.PathEscape(filePath)))

	c.metrics.RecordDuration("gitlab_request_duration_seconds", time.Since(startTime).Seconds(), labels)

	if err != nil {
		labels["status"] = "error"
		c.metrics.IncrementCounter("gitlab_requests_total", labels)
		return "", err
	}

	if resp.IsError() {
		labels["status"] = "error"
		c.metrics.IncrementCounter("gitlab_requests_total", labels)
		return "", fmt.Errorf("HTTP %d", resp.StatusCode())
	}

	labels["status"] = "success"
	c.metrics.IncrementCounter("gitlab_requests_total", labels)

	content := string(resp.Body())
	if len(content) > maxContentBytes {
		content = content[:maxContentBytes]
	}

	return content, nil
}
