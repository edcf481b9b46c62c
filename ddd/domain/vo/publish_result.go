package vo

// PublishResult 任务的唯一终态结果，也是webhook回调的载荷来源。
type PublishResult struct {
	Success     bool      `json:"success"`
	Locator     string    `json:"locator,omitempty"`
	Message     string    `json:"message,omitempty"`
	ErrorKind   ErrorKind `json:"errorKind,omitempty"`
	ErrorDetail string    `json:"errorDetail,omitempty"`
}

// NewSuccessResult 构造成功结果
func NewSuccessResult(locator, message string) PublishResult {
	return PublishResult{Success: true, Locator: locator, Message: message}
}

// NewFailureResult 构造失败结果
func NewFailureResult(kind ErrorKind, detail string) PublishResult {
	return PublishResult{Success: false, ErrorKind: kind, ErrorDetail: detail}
}

// FailureFromError 从阶段错误构造失败结果
func FailureFromError(err error, fallback ErrorKind) PublishResult {
	return NewFailureResult(KindOf(err, fallback), err.Error())
}

// Payload merges the result with caller-supplied passthrough fields for
// webhook delivery. Result fields win on key collision.
func (r PublishResult) Payload(passthrough map[string]interface{}) map[string]interface{} {
	payload := make(map[string]interface{}, len(passthrough)+5)
	for k, v := range passthrough {
		payload[k] = v
	}
	payload["success"] = r.Success
	if r.Locator != "" {
		payload["locator"] = r.Locator
	}
	if r.Message != "" {
		payload["message"] = r.Message
	}
	if !r.Success {
		payload["errorKind"] = string(r.ErrorKind)
		payload["errorDetail"] = r.ErrorDetail
	}
	return payload
}
