package vo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadMergesPassthrough(t *testing.T) {
	result := NewSuccessResult("https://example.com/watch?v=abc", "uploaded")
	payload := result.Payload(map[string]interface{}{
		"episode": 42,
		"success": "caller-value", // 结果字段优先
	})

	assert.Equal(t, 42, payload["episode"])
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "https://example.com/watch?v=abc", payload["locator"])
	assert.Equal(t, "uploaded", payload["message"])
	assert.NotContains(t, payload, "errorKind")
}

func TestPayloadFailureFields(t *testing.T) {
	result := NewFailureResult(ErrorKindFetch, "download interrupted")
	payload := result.Payload(nil)

	assert.Equal(t, false, payload["success"])
	assert.Equal(t, string(ErrorKindFetch), payload["errorKind"])
	assert.Equal(t, "download interrupted", payload["errorDetail"])
	assert.NotContains(t, payload, "locator")
}

func TestClassifyAndKindOf(t *testing.T) {
	base := errors.New("boom")
	classified := Classify(ErrorKindAuth, base)

	assert.Equal(t, ErrorKindAuth, KindOf(classified, ErrorKindUnknown))
	assert.ErrorIs(t, classified, base)

	// 包装后依然能取出分类
	wrapped := fmt.Errorf("outer: %w", classified)
	assert.Equal(t, ErrorKindAuth, KindOf(wrapped, ErrorKindUnknown))

	// 未分类错误回落到fallback
	assert.Equal(t, ErrorKindFetch, KindOf(base, ErrorKindFetch))
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, Classify(ErrorKindAuth, nil))
}

func TestFailureFromError(t *testing.T) {
	err := Classify(ErrorKindQuotaOrPermission, errors.New("quota exceeded"))
	result := FailureFromError(err, ErrorKindUnknown)

	assert.False(t, result.Success)
	assert.Equal(t, ErrorKindQuotaOrPermission, result.ErrorKind)
	assert.Contains(t, result.ErrorDetail, "quota exceeded")
}
