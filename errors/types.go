package errors

import "net/http"

// 4xx
func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func PaymentRequired(format string, args ...any) *Error {
	return New(http.StatusPaymentRequired, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, format, args...)
}

func UnprocessableEntity(format string, args ...any) *Error {
	return New(http.StatusUnprocessableEntity, format, args...)
}

func TooManyRequests(format string, args ...any) *Error {
	return New(http.StatusTooManyRequests, format, args...)
}

// 5xx
func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

func BadGateway(format string, args ...any) *Error {
	return New(http.StatusBadGateway, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(http.StatusServiceUnavailable, format, args...)
}

func UnauthorizedWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(http.StatusUnauthorized, metadata, format, args...)
}

func BadRequestWithMetadata(metadata map[string]string, format string, args ...any) *Error {
	return NewWithMetadata(http.StatusBadRequest, metadata, format, args...)
}
