package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/igorsal/commit-reviewer/internal/config"
	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

// PipelineService walks a push event through validate, fetch, review and
// notify. Commits are processed strictly in order; each commit is its own
// failure domain, so one bad commit never aborts the batch.
type PipelineService struct {
	cfg        *config.Config
	validator  *EventValidator
	fetcher    interfaces.DiffFetcher
	engine     interfaces.ReviewEngine
	dispatcher interfaces.NotificationDispatcher
	logger     interfaces.Logger
	metrics    interfaces.MetricsCollector
}

// NewPipelineService wires the pipeline from already-constructed collaborators
func NewPipelineService(
	cfg *config.Config,
	validator *EventValidator,
	fetcher interfaces.DiffFetcher,
	engine interfaces.ReviewEngine,
	dispatcher interfaces.NotificationDispatcher,
	logger interfaces.Logger,
	metrics interfaces.MetricsCollector,
) *PipelineService {
	return &PipelineService{
		cfg:        cfg,
		validator:  validator,
		fetcher:    fetcher,
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// ProcessPush runs the whole pipeline for one webhook delivery
func (s *PipelineService) ProcessPush(ctx context.Context, token string, event *models.PushEvent) (*models.PipelineResult, error) {
	startTime := time.Now()

	validated, err := s.validator.Validate(token, event)
	if err != nil {
		return nil, err
	}

	if !validated.IsValidPush {
		s.logger.Info("Skipping non-reviewable event",
			"project", validated.ProjectName,
			"object_kind", event.ObjectKind,
			"ref", event.Ref,
		)
		return &models.PipelineResult{
			Success:     true,
			Message:     "not a reviewable push event",
			ReviewCount: 0,
		}, nil
	}

	if err := s.checkRequiredConfig(); err != nil {
		return nil, err
	}

	s.logger.Info("Processing push event",
		"project", validated.ProjectName,
		"branch", validated.Branch,
		"commits", len(validated.Commits),
	)

	result := s.processCommits(ctx, validated)

	s.metrics.RecordDuration("push_pipeline_duration_seconds",
		time.Since(startTime).Seconds(),
		map[string]string{"project": validated.ProjectName},
	)

	return result, nil
}

// checkRequiredConfig rejects runs that cannot reach the code host or the
// chat webhook; a misconfigured process fails the request rather than
// silently dropping commits.
func (s *PipelineService) checkRequiredConfig() error {
	if s.cfg.GitLab.AccessToken == "" {
		return pkgerrors.NewValidationError("GITLAB_ACCESS_TOKEN is not configured")
	}
	if s.cfg.GitLab.ProjectID == 0 {
		return pkgerrors.NewValidationError("GITLAB_PROJECT_ID is not configured")
	}
	if s.cfg.DingTalk.WebhookURL == "" {
		return pkgerrors.NewValidationError("DINGTALK_WEBHOOK_URL is not configured")
	}
	return nil
}

func (s *PipelineService) processCommits(ctx context.Context, validated *models.ValidatedPush) *models.PipelineResult {
	var errs []string
	var batch []models.CommitReview
	successCount := 0
	skipped := 0

	for _, commit := range validated.Commits {
		s.logger.Info("Reviewing commit",
			"commit", commit.ShortID,
			"author", commit.Author,
			"files_changed", len(commit.FilesChanged),
		)

		commitDiff, err := s.fetcher.FetchCommitDiff(ctx, commit.ID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("commit %s: %v", commit.ShortID, err))
			s.countReview(validated.ProjectName, "fetch_error")
			continue
		}

		if len(commitDiff.Files) == 0 {
			s.logger.Info("Commit has no file diffs, skipping review", "commit", commit.ShortID)
			skipped++
			continue
		}

		review := s.reviewCommit(ctx, validated, commit, commitDiff)

		s.metrics.SetGauge("last_review_score", review.OverallScore,
			map[string]string{"project": validated.ProjectName})

		if s.cfg.DingTalk.BatchMode {
			batch = append(batch, models.CommitReview{Commit: commit, Review: *review})
			continue
		}

		if err := s.dispatcher.NotifyReview(ctx, models.ReviewNotification{
			ProjectName: validated.ProjectName,
			Branch:      validated.Branch,
			Commit:      commit,
			Review:      *review,
		}); err != nil {
			errs = append(errs, fmt.Sprintf("commit %s: %v", commit.ShortID, err))
			s.countReview(validated.ProjectName, "notify_error")
			continue
		}

		successCount++
		s.countReview(validated.ProjectName, "success")
	}

	if s.cfg.DingTalk.BatchMode && len(batch) > 0 {
		if err := s.dispatcher.NotifyBatch(ctx, models.BatchNotification{
			ProjectName: validated.ProjectName,
			Branch:      validated.Branch,
			Author:      batch[0].Commit.Author,
			Reviews:     batch,
		}); err != nil {
			errs = append(errs, fmt.Sprintf("batch report: %v", err))
			s.countReview(validated.ProjectName, "notify_error")
		} else {
			successCount = len(batch)
			s.countReview(validated.ProjectName, "success")
		}
	}

	return s.buildResult(validated, successCount, skipped, errs)
}

// reviewCommit asks the engine for a review; an engine failure is downgraded
// to a neutral fallback result so the commit still gets a notification.
func (s *PipelineService) reviewCommit(ctx context.Context, validated *models.ValidatedPush, commit models.CommitRecord, commitDiff *models.CommitDiff) *models.ReviewResult {
	review, err := s.engine.Review(ctx, models.ReviewRequest{
		CommitMessage: commit.Message,
		AuthorName:    commit.Author,
		Files:         commitDiff.Files,
		ProjectName:   validated.ProjectName,
		CommitURL:     commit.URL,
	})
	if err == nil {
		return review
	}

	s.logger.Error("Review engine failed, using fallback result", err, "commit", commit.ShortID)
	s.countReview(validated.ProjectName, "engine_error")

	return &models.ReviewResult{
		OverallScore:    5,
		Summary:         fmt.Sprintf("Automated review failed: %v", err),
		Recommendations: []string{"Review this commit manually"},
	}
}

func (s *PipelineService) buildResult(validated *models.ValidatedPush, successCount, skipped int, errs []string) *models.PipelineResult {
	attempted := len(validated.Commits)

	if len(errs) == 0 {
		message := fmt.Sprintf("successfully processed %d/%d commits", successCount, attempted)
		if skipped > 0 {
			message += fmt.Sprintf(" (%d without file changes)", skipped)
		}
		return &models.PipelineResult{
			// a push where every commit was empty is a no-op, not a failure
			Success:     successCount > 0 || successCount+skipped == attempted,
			Message:     message,
			ReviewCount: successCount,
		}
	}

	return &models.PipelineResult{
		Success:     successCount > 0,
		Message:     fmt.Sprintf("processed %d/%d commits. errors: %s", successCount, attempted, strings.Join(errs, "; ")),
		ReviewCount: successCount,
	}
}

func (s *PipelineService) countReview(project, status string) {
	s.metrics.IncrementCounter("commit_reviews_total", map[string]string{
		"project": project,
		"status":  status,
	})
}
