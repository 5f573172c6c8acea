package services

import "errors"

var (
	// ErrValidation 输入校验失败（400）
	ErrValidation = errors.New("validation error")
	// ErrArtworkNotFound 作品不存在（404）
	ErrArtworkNotFound = errors.New("artwork not found")
)

// ValidationError 带具体原因的校验错误，errors.Is(err, ErrValidation) 为真
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
