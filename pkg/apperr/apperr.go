package apperr

import (
	"errors"
	"fmt"
)

// 业务错误类别，handler 层通过 errors.Is 映射为 HTTP 状态码
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrExpiredWindow     = errors.New("expired window")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrForbidden         = errors.New("forbidden")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrConflict          = errors.New("conflict")
	ErrInvalidParam      = errors.New("invalid param")
)

// Error 带提示信息的业务错误
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New 创建业务错误
func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Newf 创建带格式化信息的业务错误
func Newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message 返回可以直接展示给用户的信息
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
