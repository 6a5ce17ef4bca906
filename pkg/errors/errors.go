// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 剧情目录错误 (3xxx)
	CodeUnknownCampaign ErrorCode = "3001"
	CodeUnknownDecision ErrorCode = "3002"
	CodeUnknownScene    ErrorCode = "3003"
	CodeUnknownNPC      ErrorCode = "3004"

	// 回合处理错误 (4xxx)
	CodeNotInitialized     ErrorCode = "4001"
	CodeAlreadyInitialized ErrorCode = "4002"
	CodeInvalidOption      ErrorCode = "4003"
	CodeNoPendingDecision  ErrorCode = "4004"

	// 外部服务错误 (5xxx)
	CodeDatabaseError      ErrorCode = "5001"
	CodeCacheError         ErrorCode = "5002"
	CodePersistenceFailure ErrorCode = "5003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeInvalidOption, CodeNoPendingDecision:
		return http.StatusBadRequest
	case CodeNotFound, CodeUnknownCampaign, CodeUnknownDecision,
		CodeUnknownScene, CodeUnknownNPC, CodeNotInitialized:
		return http.StatusNotFound
	case CodeConflict, CodeAlreadyInitialized:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrUnknownCampaign = New(CodeUnknownCampaign, "campaign not found")
	ErrUnknownDecision = New(CodeUnknownDecision, "decision not defined for current position")
	ErrUnknownScene    = New(CodeUnknownScene, "scene not found")
	ErrUnknownNPC      = New(CodeUnknownNPC, "npc not found")

	ErrNotInitialized     = New(CodeNotInitialized, "room has no campaign progress")
	ErrAlreadyInitialized = New(CodeAlreadyInitialized, "room campaign already initialized")
	ErrInvalidOption      = New(CodeInvalidOption, "option not declared for decision")
	ErrNoPendingDecision  = New(CodeNoPendingDecision, "no pending decision for room")

	ErrPersistenceFailure = New(CodePersistenceFailure, "turn effects could not be persisted")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 检查错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
