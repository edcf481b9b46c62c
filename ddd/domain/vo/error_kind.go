package vo

import "errors"

// ErrorKind 管道阶段失败的分类，最终随PublishResult回调给调用方。
type ErrorKind string

const (
	ErrorKindValidation              ErrorKind = "ValidationError"
	ErrorKindAuth                    ErrorKind = "AuthError"
	ErrorKindFetch                   ErrorKind = "FetchError"
	ErrorKindCompressionInsufficient ErrorKind = "CompressionInsufficientError"
	ErrorKindTransientUpload         ErrorKind = "TransientUploadError"
	ErrorKindQuotaOrPermission       ErrorKind = "QuotaOrPermissionError"
	ErrorKindAutomation              ErrorKind = "AutomationError"
	ErrorKindNotification            ErrorKind = "NotificationError"
	ErrorKindUnknown                 ErrorKind = "UnknownError"
)

// ClassifiedError attaches an ErrorKind to an underlying error so the
// orchestrator can fold any stage failure into a PublishResult without
// inspecting adapter internals.
type ClassifiedError struct {
	Kind ErrorKind
	Err  error
}

func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classify wraps err with the given kind. A nil err stays nil.
func Classify(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Kind: kind, Err: err}
}

// KindOf extracts the ErrorKind from err, or fallback when err carries none.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return fallback
}
