package errorx

import (
	"errors"
	"fmt"
)

// 业务错误类别，handlers 层据此决定 HTTP 状态码
const (
	CodeValidation = 1001 // 参数校验失败 -> 400
	CodeAuth       = 1002 // 未登录/凭证错误 -> 401
	CodeNotFound   = 1003 // 资源不存在 -> 404
	CodeMethod     = 1004 // 请求方法错误 -> 405
	CodeStore      = 1005 // 存储层失败 -> 500
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
// Field 记录触发校验失败的字段名（仅校验错误携带）
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息（直接展示给调用方）
	Field string // 触发错误的字段名，可为空
	cause error  // 被包装的底层错误
}

// Error 实现标准 error 接口
// 存在底层错误时返回 "消息: 底层错误"，否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

// Validation 创建带字段名的校验错误
// 用法: errorx.Validation("inviteCode", "邀请码错误")
func Validation(field, msg string) *CodeError {
	return &CodeError{Code: CodeValidation, Msg: msg, Field: field}
}

// Auth 创建认证错误
func Auth(msg string) *CodeError {
	return &CodeError{Code: CodeAuth, Msg: msg}
}

// NotFound 创建资源不存在错误
func NotFound(msg string) *CodeError {
	return &CodeError{Code: CodeNotFound, Msg: msg}
}

// WrapStore 包装存储层错误，统一归类为 CodeStore
// 用法: errorx.WrapStore(err, "读取用户失败")
func WrapStore(err error, msg string) *CodeError {
	return &CodeError{Code: CodeStore, Msg: msg, cause: err}
}

// GetCode 从错误中提取业务错误码，非 CodeError 一律按存储层错误处理
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeStore
}

// GetField 提取校验错误的字段名，非校验错误返回空串
func GetField(err error) string {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Field
	}
	return ""
}

// IsCode 判断错误是否属于指定业务类别
func IsCode(err error, code int) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == code
}
