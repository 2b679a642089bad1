package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCaseNotFound 案件不存在
	ErrCaseNotFound = errors.New("case not found")
	// ErrInvalidTransition 案件已处于终态，不允许再次审核
	ErrInvalidTransition = errors.New("case has already been reviewed")
	// ErrInvalidStatus 目标状态不是 approved 或 rejected
	ErrInvalidStatus = errors.New("status must be approved or rejected")
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 输入形状错误，在访问任何存储之前返回，不会被缓存
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError 创建单字段校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError 判断 err 链中是否包含 ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
