package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

func validPushEvent() *models.PushEvent {
	return &models.PushEvent{
		ObjectKind: "push",
		Before:     "1111111111111111111111111111111111111111",
		After:      "2222222222222222222222222222222222222222",
		Ref:        "refs/heads/feature/login",
		Project:    models.Project{ID: 42, Name: "demo", WebURL: "https://gitlab.example.com/demo"},
		Commits: []models.RawCommit{
			{
				ID:        "abcdef1234567890abcdef1234567890abcdef12",
				Message:   "fix: correct off-by-one",
				Timestamp: "2024-05-01T10:00:00Z",
				URL:       "https://gitlab.example.com/demo/-/commit/abcdef12",
				Author:    models.CommitAuthor{Name: "dev", Email: "dev@example.com"},
				Added:     []string{"new.go"},
				Removed:   []string{"old.go"},
				Modified:  []string{"changed.go"},
			},
		},
	}
}

func TestValidateAcceptsBranchPush(t *testing.T) {
	v := NewEventValidator("", nopLogger{})

	result, err := v.Validate("", validPushEvent())

	require.NoError(t, err)
	assert.True(t, result.IsValidPush)
	assert.Equal(t, "feature/login", result.Branch)
	assert.Equal(t, "demo", result.ProjectName)
	require.Len(t, result.Commits, 1)

	commit := result.Commits[0]
	assert.Equal(t, "abcdef12", commit.ShortID)
	assert.Equal(t, "dev", commit.Author)
	// added, then modified, then removed
	assert.Equal(t, []string{"new.go", "changed.go", "old.go"}, commit.FilesChanged)
}

func TestValidateRejectsNonPushEvents(t *testing.T) {
	v := NewEventValidator("", nopLogger{})

	event := validPushEvent()
	event.ObjectKind = "merge_request"

	result, err := v.Validate("", event)

	require.NoError(t, err)
	assert.False(t, result.IsValidPush)
	assert.Empty(t, result.Commits)
	assert.Equal(t, "demo", result.ProjectName)
}

func TestValidateRejectsTagPush(t *testing.T) {
	v := NewEventValidator("", nopLogger{})

	event := validPushEvent()
	event.Ref = "refs/tags/v1.2.3"

	result, err := v.Validate("", event)

	require.NoError(t, err)
	assert.False(t, result.IsValidPush)
	assert.Empty(t, result.Commits)
}

func TestValidateRejectsBranchDeletion(t *testing.T) {
	v := NewEventValidator("", nopLogger{})

	event := validPushEvent()
	event.After = "0000000000000000000000000000000000000000"

	result, err := v.Validate("", event)

	require.NoError(t, err)
	assert.False(t, result.IsValidPush)
	assert.Empty(t, result.Commits)
}

func TestValidateTokenMismatch(t *testing.T) {
	v := NewEventValidator("expected-secret", nopLogger{})

	_, err := v.Validate("wrong-secret", validPushEvent())

	require.Error(t, err)
	appErr, ok := pkgerrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, pkgerrors.ErrorTypeUnauthorized, appErr.Type)
}

func TestValidateMissingTokenIsSkipped(t *testing.T) {
	// the token header is optional defense: absence does not fail the request
	v := NewEventValidator("expected-secret", nopLogger{})

	result, err := v.Validate("", validPushEvent())

	require.NoError(t, err)
	assert.True(t, result.IsValidPush)
}

func TestValidateBranchStrippingIsIdempotent(t *testing.T) {
	v := NewEventValidator("", nopLogger{})

	// a ref without the branch prefix comes back unchanged
	event := validPushEvent()
	event.Ref = "main"

	result, err := v.Validate("", event)

	require.NoError(t, err)
	assert.Equal(t, "main", result.Branch)
}

func TestValidateShortIDForShortHashes(t *testing.T) {
	v := NewEventValidator("", nopLogger{})

	event := validPushEvent()
	event.Commits[0].ID = "abcdef12"

	result, err := v.Validate("", event)

	require.NoError(t, err)
	assert.Equal(t, "abcdef12", result.Commits[0].ShortID)
}
