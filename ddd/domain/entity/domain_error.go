package entity

// DomainError 领域错误
type DomainError struct {
	Message string
}

// NewDomainError 创建领域错误
func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}
