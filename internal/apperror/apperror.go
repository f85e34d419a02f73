package apperror

import (
	"errors"
	"fmt"
)

// Type 错误类型
type Type string

const (
	// TypeValidation 调用方输入不合法，在任何 I/O 之前检出
	TypeValidation Type = "VALIDATION"
	// TypeNotFound 资源不存在
	TypeNotFound Type = "NOT_FOUND"
	// TypeStorage 存储层失败（网络、约束、权限）
	TypeStorage Type = "STORAGE"
	// TypeExternalAPI 外部元数据服务失败
	TypeExternalAPI Type = "EXTERNAL_API"
	// TypeParse 存储列中的 JSON 无法解析
	TypeParse Type = "PARSE"
	// TypeUnauthorized 未登录或凭证无效
	TypeUnauthorized Type = "UNAUTHORIZED"
)

// Error 应用错误
type Error struct {
	Type    Type
	Op      string // 出错的操作名，如 "content.update"
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Type)
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建应用错误
func New(t Type, op, message string) error {
	return &Error{Type: t, Op: op, Message: message}
}

// Wrap 包装底层错误
func Wrap(t Type, op, message string, err error) error {
	return &Error{Type: t, Op: op, Message: message, Err: err}
}

// Validation 创建校验错误
func Validation(op, format string, args ...any) error {
	return New(TypeValidation, op, fmt.Sprintf(format, args...))
}

// NotFound 创建不存在错误
func NotFound(op, format string, args ...any) error {
	return New(TypeNotFound, op, fmt.Sprintf(format, args...))
}

// Storage 包装存储层错误
func Storage(op, message string, err error) error {
	return Wrap(TypeStorage, op, message, err)
}

// ExternalAPI 包装外部 API 错误
func ExternalAPI(op, message string, err error) error {
	return Wrap(TypeExternalAPI, op, message, err)
}

// Unauthorized 创建未授权错误
func Unauthorized(op, message string) error {
	return New(TypeUnauthorized, op, message)
}

// TypeOf 返回错误链上第一个应用错误的类型，非应用错误返回空串
func TypeOf(err error) Type {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsValidation 是否为校验错误
func IsValidation(err error) bool { return TypeOf(err) == TypeValidation }

// IsNotFound 是否为不存在错误
func IsNotFound(err error) bool { return TypeOf(err) == TypeNotFound }

// IsStorage 是否为存储错误
func IsStorage(err error) bool { return TypeOf(err) == TypeStorage }

// IsExternalAPI 是否为外部 API 错误
func IsExternalAPI(err error) bool { return TypeOf(err) == TypeExternalAPI }

// IsUnauthorized 是否为未授权错误
func IsUnauthorized(err error) bool { return TypeOf(err) == TypeUnauthorized }

// IsParse 是否为解析错误
func IsParse(err error) bool { return TypeOf(err) == TypeParse }
