package services

import (
	"strings"

	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

const (
	// GitLab sends the all-zero hash as "after" on branch deletion
	zeroHash = "0000000000000000000000000000000000000000"

	tagRefPrefix    = "refs/tags/"
	branchRefPrefix = "refs/heads/"

	shortIDLength = 8
)

// EventValidator authenticates and normalizes inbound push webhooks
type EventValidator struct {
	secretToken string
	logger      interfaces.Logger
}

// NewEventValidator creates a validator bound to the configured shared secret.
// An empty secret disables the token check entirely.
func NewEventValidator(secretToken string, logger interfaces.Logger) *EventValidator {
	return &EventValidator{
		secretToken: secretToken,
		logger:      logger,
	}
}

// Validate checks the webhook token and maps the raw event into a
// ValidatedPush. Non-push events, tag pushes and branch deletions come back
// with IsValidPush false and no error; downstream treats that as nothing to
// do. A mismatched token is the only hard failure.
func (v *EventValidator) Validate(token string, event *models.PushEvent) (*models.ValidatedPush, error) {
	// The token is optional defense: enforce only when both sides supply one
	if v.secretToken != "" && token != "" && token != v.secretToken {
		v.logger.Warn("Webhook token mismatch", "project", event.Project.Name)
		return nil, pkgerrors.NewUnauthorizedError("invalid webhook token")
	}

	notAPush := &models.ValidatedPush{
		IsValidPush: false,
		ProjectName: event.Project.Name,
		ProjectURL:  event.Project.WebURL,
	}

	if event.ObjectKind != "push" {
		v.logger.Debug("Ignoring non-push event", "object_kind", event.ObjectKind)
		return notAPush, nil
	}

	if strings.HasPrefix(event.Ref, tagRefPrefix) || event.After == zeroHash {
		v.logger.Debug("Ignoring tag push or branch deletion", "ref", event.Ref, "after", event.After)
		return notAPush, nil
	}

	commits := make([]models.CommitRecord, 0, len(event.Commits))
	for _, raw := range event.Commits {
		commits = append(commits, models.CommitRecord{
			ID:           raw.ID,
			ShortID:      shortID(raw.ID),
			Message:      raw.Message,
			Author:       raw.Author.Name,
			Timestamp:    raw.Timestamp,
			URL:          raw.URL,
			FilesChanged: filesChanged(raw),
		})
	}

	return &models.ValidatedPush{
		IsValidPush: true,
		ProjectName: event.Project.Name,
		ProjectURL:  event.Project.WebURL,
		Branch:      strings.TrimPrefix(event.Ref, branchRefPrefix),
		Commits:     commits,
	}, nil
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

// filesChanged joins added, modified and removed paths in that order
func filesChanged(raw models.RawCommit) []string {
	files := make([]string, 0, len(raw.Added)+len(raw.Modified)+len(raw.Removed))
	files = append(files, raw.Added...)
	files = append(files, raw.Modified...)
	files = append(files, raw.Removed...)
	return files
}
