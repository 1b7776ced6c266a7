package response

import "net/http"

// AppError 带业务码的错误，service 层返回，handler 层通过 HandleError 输出
type AppError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is 按业务码比较，WithMessage 派生出的错误与原哨兵错误相等
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage 复制错误并替换提示信息
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{HTTPStatus: e.HTTPStatus, Code: e.Code, Message: msg}
}

func NewValidation(code int, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Code: code, Message: msg}
}

func NewUnauthorized(code int, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Code: code, Message: msg}
}

func NewForbidden(code int, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Code: code, Message: msg}
}

func NewNotFound(code int, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Code: code, Message: msg}
}

func NewConflict(code int, msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Code: code, Message: msg}
}

func NewUpstream(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadGateway, Code: ErrUpstream, Message: msg}
}
