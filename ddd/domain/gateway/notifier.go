package gateway

import (
	"context"

	"transfer-service/ddd/domain/vo"
)

// ResultNotifier delivers the terminal PublishResult to a caller-supplied
// endpoint. Delivery is best-effort: one attempt, no retry.
type ResultNotifier interface {
	Notify(ctx context.Context, notifyURL string, result vo.PublishResult, passthrough map[string]interface{}) error
}
