package gateway

import (
	"context"

	"transfer-service/ddd/domain/vo"
)

// Publisher turns a local media file plus metadata into a published artifact.
// The API-based and browser-driven strategies are interchangeable behind this
// interface; the orchestrator selects one by destination.
type Publisher interface {
	Publish(ctx context.Context, localPath string, meta vo.PublishMetadata) vo.PublishResult
}

// SizeConstrainer 媒体前置约束转换
type SizeConstrainer interface {
	// EnsureSizeConstraint returns the path to use for publishing (original or
	// a re-encoded sibling) and an observability note when the constraint was
	// handled in a degraded way. The returned path differs from localPath only
	// when a compressed sibling was produced; the caller owns its cleanup.
	EnsureSizeConstraint(ctx context.Context, localPath string, maxMB int) (string, string, error)
}
