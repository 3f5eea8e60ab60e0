package dingtalk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/igorsal/commit-reviewer/internal/config"
	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/models"
	pkgerrors "github.com/igorsal/commit-reviewer/pkg/errors"
)

type Client struct {
	httpClient     *http.Client
	config         config.DingTalkConfig
	logger         interfaces.Logger
	circuitBreaker interfaces.CircuitBreaker
	metrics        interfaces.MetricsCollector
	now            func() time.Time
}

// NewClient creates a new DingTalk webhook client with circuit breaker
func NewClient(cfg config.DingTalkConfig, logger interfaces.Logger, metrics interfaces.MetricsCollector) *Client {
	// Configure HTTP client
	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	// Configure circuit breaker
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dingtalk-webhook",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("DingTalk webhook circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.SetGauge("circuit_breaker_state", float64(to), map[string]string{
				"service": "dingtalk",
				"name":    name,
			})
		},
	})

	return &Client{
		httpClient:     client,
		config:         cfg,
		logger:         logger,
		circuitBreaker: &dingtalkCircuitBreakerWrapper{cb: cb},
		metrics:        metrics,
		now:            time.Now,
	}
}

// dingtalkCircuitBreakerWrapper implements interfaces.CircuitBreaker
type dingtalkCircuitBreakerWrapper struct {
	cb *gobreaker.CircuitBreaker
}

func (w *dingtalkCircuitBreakerWrapper) Execute(req func() (any, error)) (any, error) {
	return w.cb.Execute(req)
}

func (w *dingtalkCircuitBreakerWrapper) Name() string {
	return w.cb.Name()
}

func (w *dingtalkCircuitBreakerWrapper) State() string {
	return w.cb.State().String()
}

// NotifyReview delivers a single-commit review report
func (c *Client) NotifyReview(ctx context.Context, n models.ReviewNotification) error {
	title, text := buildReviewReport(n, c.now())
	return c.send(ctx, "review", MarkdownMessage{
		MsgType:  "markdown",
		Markdown: MarkdownBody{Title: title, Text: text},
	})
}

// NotifyBatch delivers one aggregate report covering a whole push
func (c *Client) NotifyBatch(ctx context.Context, n models.BatchNotification) error {
	title, text := buildBatchReport(n, c.now())
	return c.send(ctx, "batch", MarkdownMessage{
		MsgType:  "markdown",
		Markdown: MarkdownBody{Title: title, Text: text},
	})
}

// NotifyText delivers a plain text message, used by the test endpoint
func (c *Client) NotifyText(ctx context.Context, title, message string) error {
	content := message
	if title != "" {
		content = fmt.Sprintf("%s\n%s", title, message)
	}
	return c.send(ctx, "text", TextMessage{
		MsgType: "text",
		Text:    TextBody{Content: content},
	})
}

// send posts one message to the webhook. The signed URL is rebuilt for every
// call; failed deliveries are never retried here, retry policy belongs to
// the caller.
func (c *Client) send(ctx context.Context, kind string, payload any) error {
	startTime := time.Now()
	labels := map[string]string{
		"service": "dingtalk",
		"kind":    kind,
	}

	_, err := c.circuitBreaker.Execute(func() (any, error) {
		return nil, c.executeSend(ctx, payload)
	})

	duration := time.Since(startTime).Seconds()
	c.metrics.RecordDuration("dingtalk_notification_duration_seconds", duration, labels)

	if err != nil {
		labels["status"] = "error"
		c.metrics.IncrementCounter("dingtalk_notifications_total", labels)

		if c.circuitBreaker.State() == gobreaker.StateOpen.String() {
			c.logger.Error("DingTalk webhook circuit breaker open", err, "kind", kind)
			return pkgerrors.NewUnavailableError("dingtalk").WithCause(err)
		}

		c.logger.Error("Failed to deliver DingTalk notification", err, "kind", kind)
		return err
	}

	labels["status"] = "success"
	c.metrics.IncrementCounter("dingtalk_notifications_total", labels)

	c.logger.Info("Delivered DingTalk notification",
		"kind", kind,
		"duration_ms", duration*1000,
	)

	return nil
}

func (c *Client) executeSend(ctx context.Context, payload any) error {
	if c.config.WebhookURL == "" {
		return pkgerrors.NewValidationError("DingTalk webhook URL is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.WrapError(err, "failed to encode DingTalk payload")
	}

	requestURL := c.config.WebhookURL
	if c.config.Secret != "" {
		requestURL = SignURL(requestURL, c.config.Secret, c.now().UnixMilli())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.NewExternalError("dingtalk", "failed to create request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.NewExternalError("dingtalk", err.Error()).WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.NewExternalError("dingtalk", "failed to read response").WithCause(err)
	}

	if resp.StatusCode >= 400 {
		return pkgerrors.NewExternalError("dingtalk", fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)))
	}

	var webhookResp WebhookResponse
	if err := json.Unmarshal(respBody, &webhookResp); err != nil {
		return pkgerrors.NewExternalError("dingtalk", "failed to parse response").WithCause(err)
	}

	// The robot API reports delivery failures in the body, not the status code
	if webhookResp.ErrCode != 0 {
		return pkgerrors.NewExternalError("dingtalk", fmt.Sprintf("errcode %d: %s", webhookResp.ErrCode, webhookResp.ErrMsg))
	}

	return nil
}
