package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorsal/commit-reviewer/internal/config"
	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, fields ...interface{})            {}
func (nopLogger) Info(msg string, fields ...interface{})             {}
func (nopLogger) Warn(msg string, fields ...interface{})             {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (nopLogger) Fatal(msg string, err error, fields ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(name string, labels map[string]string)                {}
func (nopMetrics) RecordDuration(name string, duration float64, labels map[string]string) {}
func (nopMetrics) SetGauge(name string, value float64, labels map[string]string)          {}

// newTestClient builds a fresh client for each test so circuit breaker
// state never leaks between cases.
func newTestClient(baseURL string) *Client {
	return NewClient(config.GitLabConfig{
		BaseURL:     baseURL,
		AccessToken: "glpat-test",
		ProjectID:   42,
		Timeout:     5 * time.Second,
	}, nopLogger{}, nopMetrics{})
}

func diffEntries(entries []CommitDiffEntry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}
}

func TestFetchCommitDiffBuildsFullDiff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/repository/files/") {
			_, _ = w.Write([]byte("package main\n"))
			return
		}
		assert.Equal(t, "/api/v4/projects/42/repository/commits/abc123/diff", r.URL.Path)
		assert.Equal(t, "Bearer glpat-test", r.Header.Get("Authorization"))
		diffEntries([]CommitDiffEntry{
			{OldPath: "main.go", NewPath: "main.go", Diff: "@@ -1 +1 @@\n-old\n+new\n"},
			{OldPath: "util.go", NewPath: "util.go", Diff: "@@ -5 +5 @@\n+added\n"},
		})(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	diff, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.NoError(t, err)
	require.Len(t, diff.Files, 2)
	assert.Contains(t, diff.Diff, "--- main.go\n+++ main.go\n@@ -1 +1 @@")
	assert.Contains(t, diff.Diff, "--- util.go\n+++ util.go\n@@ -5 +5 @@")
	assert.Equal(t, "main.go", diff.Files[0].FilePath)
	assert.Equal(t, models.ContentFetched, diff.Files[0].ContentStatus)
	assert.Equal(t, "package main\n", diff.Files[0].Content)
}

func TestFetchCommitDiffDeletedFileSkipsContent(t *testing.T) {
	rawCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/repository/files/") {
			rawCalls++
			_, _ = w.Write([]byte("should not be requested"))
			return
		}
		diffEntries([]CommitDiffEntry{
			{OldPath: "legacy.go", NewPath: "legacy.go", Diff: "@@ deleted @@\n", DeletedFile: true},
		})(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	diff, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.NoError(t, err)
	require.Len(t, diff.Files, 1)
	assert.Equal(t, models.ContentDeletedFile, diff.Files[0].ContentStatus)
	assert.Empty(t, diff.Files[0].Content)
	assert.Zero(t, rawCalls)
}

func TestFetchCommitDiffNonTextFileSkipsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/repository/files/") {
			t.Error("raw content should not be requested for binary files")
			return
		}
		diffEntries([]CommitDiffEntry{
			{OldPath: "logo.png", NewPath: "logo.png", Diff: "Binary files differ\n"},
		})(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	diff, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.NoError(t, err)
	require.Len(t, diff.Files, 1)
	assert.Equal(t, models.ContentNotText, diff.Files[0].ContentStatus)
}

func TestFetchCommitDiffContentFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/repository/files/") {
			http.Error(w, "404 File Not Found", http.StatusNotFound)
			return
		}
		diffEntries([]CommitDiffEntry{
			{OldPath: "moved.go", NewPath: "moved.go", Diff: "@@ -1 +1 @@\n"},
		})(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	diff, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.NoError(t, err)
	require.Len(t, diff.Files, 1)
	assert.Equal(t, models.ContentFetchFailed, diff.Files[0].ContentStatus)
	assert.Empty(t, diff.Files[0].Content)
	assert.Equal(t, "@@ -1 +1 @@\n", diff.Files[0].Diff)
}

func TestFetchCommitDiffContentTruncated(t *testing.T) {
	big := strings.Repeat("x", maxContentBytes+500)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/repository/files/") {
			_, _ = w.Write([]byte(big))
			return
		}
		diffEntries([]CommitDiffEntry{
			{OldPath: "big.go", NewPath: "big.go", Diff: "@@ -1 +1 @@\n"},
		})(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	diff, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.NoError(t, err)
	require.Len(t, diff.Files, 1)
	assert.Equal(t, models.ContentFetched, diff.Files[0].ContentStatus)
	assert.Len(t, diff.Files[0].Content, maxContentBytes)
}

func TestFetchCommitDiffUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"401 Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.Error(t, err)
	appErr, ok := pkgerrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, pkgerrors.ErrorTypeUnauthorized, appErr.Type)
}

func TestFetchCommitDiffServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.Error(t, err)
	appErr, ok := pkgerrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, pkgerrors.ErrorTypeUnavailable, appErr.Type)
}

func TestFetchCommitDiffRenamedFileUsesNewPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/repository/files/") {
			assert.Contains(t, r.URL.Path, "renamed.go")
			_, _ = w.Write([]byte("package renamed\n"))
			return
		}
		diffEntries([]CommitDiffEntry{
			{OldPath: "original.go", NewPath: "renamed.go", Diff: "@@ -1 +1 @@\n", RenamedFile: true},
		})(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	diff, err := client.FetchCommitDiff(context.Background(), "abc123")

	require.NoError(t, err)
	require.Len(t, diff.Files, 1)
	assert.Equal(t, "renamed.go", diff.Files[0].FilePath)
	assert.Contains(t, diff.Diff, "--- original.go\n+++ renamed.go")
}
