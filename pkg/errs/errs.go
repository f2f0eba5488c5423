// Package errs 定义统一的错误分类（校验、鉴权、授权、未找到、冲突、业务规则、内部错误）
// 以及到 HTTP 状态码的映射。服务层通过 errors.Is 判别类别。
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误类别哨兵
var (
	// ErrValidation 输入不合法，事务开启前即被拒绝
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized 凭证缺失或无效
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden 操作者不是资源所有者或角色不符
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound 引用的记录不存在
	ErrNotFound = errors.New("not found")
	// ErrConflict 与现有记录冲突（如重复申请）
	ErrConflict = errors.New("conflict")
	// ErrBusinessRule 业务规则拒绝（如撤回已定稿的申请）
	ErrBusinessRule = errors.New("business rule violated")
	// ErrInternal 存储故障或其他基础设施错误
	ErrInternal = errors.New("internal error")
)

// Error 携带类别、对外消息与底层原因的错误
type Error struct {
	kind    error
	message string
	cause   error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap 同时暴露类别哨兵与底层原因
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Message 对外可见的消息
func (e *Error) Message() string {
	return e.message
}

// New 构建指定类别的错误
func New(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Wrap 构建携带底层原因的错误
func Wrap(kind error, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Validation 构建校验错误
func Validation(message string) *Error { return New(ErrValidation, message) }

// Unauthorized 构建鉴权错误
func Unauthorized(message string) *Error { return New(ErrUnauthorized, message) }

// Forbidden 构建授权错误
func Forbidden(message string) *Error { return New(ErrForbidden, message) }

// NotFound 构建未找到错误
func NotFound(resource string) *Error { return New(ErrNotFound, resource+" not found") }

// Conflict 构建冲突错误
func Conflict(message string) *Error { return New(ErrConflict, message) }

// Business 构建业务规则错误
func Business(message string) *Error { return New(ErrBusinessRule, message) }

// Internal 包装基础设施错误
func Internal(cause error) *Error {
	return Wrap(ErrInternal, "internal error", cause)
}

// IsNotFound 判断是否为未找到错误
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict 判断是否为冲突错误
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// HTTPStatus 将错误映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBusinessRule):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回可以安全对外暴露的错误消息。
// 基础设施错误不向调用方泄露内部细节。
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
