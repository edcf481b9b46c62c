package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"transfer-service/ddd/domain/gateway"
	"transfer-service/ddd/domain/vo"
	"transfer-service/pkg/config"
	"transfer-service/pkg/logger"
)

// WebhookNotifier 通过一次HTTP POST把终态结果回调给调用方。
// A job gets at most one delivery attempt; delivery failure never changes
// the job's result.
type WebhookNotifier struct {
	client *http.Client
}

// NewWebhookNotifier 创建webhook通知器
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ gateway.ResultNotifier = (*WebhookNotifier)(nil)

// Notify POSTs the merged result payload as JSON to notifyURL.
func (n *WebhookNotifier) Notify(ctx context.Context, notifyURL string, result vo.PublishResult, passthrough map[string]interface{}) error {
	body, err := json.Marshal(result.Payload(passthrough))
	if err != nil {
		return vo.Classify(vo.ErrorKindNotification, fmt.Errorf("encode webhook payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notifyURL, bytes.NewReader(body))
	if err != nil {
		return vo.Classify(vo.ErrorKindNotification, fmt.Errorf("build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return vo.Classify(vo.ErrorKindNotification, fmt.Errorf("deliver webhook: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return vo.Classify(vo.ErrorKindNotification, fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode))
	}

	logger.Info("Webhook delivered", map[string]interface{}{
		"notify_url": notifyURL,
		"status":     resp.StatusCode,
		"success":    result.Success,
	})
	return nil
}
