package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

type fakeDispatcher struct {
	err error

	gotReview *models.ReviewNotification
}

func (f *fakeDispatcher) NotifyReview(ctx context.Context, n models.ReviewNotification) error {
	f.gotReview = &n
	return f.err
}

func (f *fakeDispatcher) NotifyBatch(ctx context.Context, n models.BatchNotification) error {
	return f.err
}

func (f *fakeDispatcher) NotifyText(ctx context.Context, title, message string) error {
	return f.err
}

func TestTestNotifySendsCannedReview(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := NewTestNotifyHandler(dispatcher, nopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/test/dingtalk", bytes.NewReader([]byte(`{"message":"hello from ops"}`)))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, dispatcher.gotReview)
	assert.Equal(t, "hello from ops", dispatcher.gotReview.Commit.Message)
	assert.Equal(t, "test project", dispatcher.gotReview.ProjectName)
	assert.InDelta(t, 9.0, dispatcher.gotReview.Review.OverallScore, 0.001)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "test notification delivered", result["message"])
}

func TestTestNotifyDefaultsMessage(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := NewTestNotifyHandler(dispatcher, nopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/test/dingtalk", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, dispatcher.gotReview)
	assert.Equal(t, "test commit message", dispatcher.gotReview.Commit.Message)
}

func TestTestNotifyRejectsOversizedMessage(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := NewTestNotifyHandler(dispatcher, nopLogger{})

	body, err := json.Marshal(map[string]string{"message": strings.Repeat("a", 501)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/test/dingtalk", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, dispatcher.gotReview)
}

func TestTestNotifyRejectsNonPost(t *testing.T) {
	handler := NewTestNotifyHandler(&fakeDispatcher{}, nopLogger{})

	req := httptest.NewRequest(http.MethodGet, "/test/dingtalk", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTestNotifySurfacesDispatchFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{err: pkgerrors.NewExternalError("dingtalk", "errcode 310000: invalid token")}
	handler := NewTestNotifyHandler(dispatcher, nopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/test/dingtalk", bytes.NewReader([]byte(`{"message":"probe"}`)))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["message"], "invalid token")
}
