// Package notify pushes signal reports to chat webhooks.
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"go.uber.org/zap"
)

// Notifier delivers a text report.
type Notifier interface {
	// Notify sends report and returns how many targets accepted it.
	Notify(ctx context.Context, report string) (int, error)
}

// TextMessage is the DingTalk style text payload most chat webhooks accept.
type TextMessage struct {
	MsgType string      `json:"msgtype"`
	Text    TextContent `json:"text"`
}

type TextContent struct {
	Content string `json:"content"`
}

// NewTextMessage wraps content in a text payload.
func NewTextMessage(content string) TextMessage {
	return TextMessage{MsgType: "text", Text: TextContent{Content: content}}
}

// WebhookNotifier posts the report to every configured URL.
type WebhookNotifier struct {
	urls   []string
	client *resty.Client
	logger *logger.Logger
}

// DefaultTimeout applies when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// NewWebhookNotifier creates a notifier for urls.
func NewWebhookNotifier(urls []string, timeout time.Duration, log *logger.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &WebhookNotifier{
		urls:   urls,
		client: client,
		logger: log.Named("notify"),
	}
}

// Notify implements Notifier. A failing target does not stop the others;
// an error is returned only when every target failed.
func (n *WebhookNotifier) Notify(ctx context.Context, report string) (int, error) {
	if len(n.urls) == 0 {
		return 0, nil
	}

	payload := NewTextMessage(report)
	sent := 0

	var lastErr error

	for _, url := range n.urls {
		resp, err := n.client.R().
			SetContext(ctx).
			SetBody(payload).
			Post(url)
		if err != nil {
			lastErr = err
			n.logger.Warn("Webhook request failed", zap.String("url", url), zap.Error(err))

			continue
		}

		if resp.IsError() {
			lastErr = errors.Newf(errors.ErrCodeNotifyFailed, "webhook %s returned %d", url, resp.StatusCode())
			n.logger.Warn("Webhook rejected report", zap.String("url", url), zap.Int("status", resp.StatusCode()))

			continue
		}

		sent++
	}

	if sent == 0 {
		return 0, errors.Wrap(errors.ErrCodeNotifyFailed, "no webhook accepted the report", lastErr)
	}

	n.logger.Info("Report delivered", zap.Int("sent", sent), zap.Int("targets", len(n.urls)))

	return sent, nil
}
