package validator

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Validator 校验器接口
type Validator interface {
	Struct(s any) error
	StructCtx(ctx context.Context, s any) error
	GetValidator() *validator.Validate
}

// ValidationErrors 校验错误集合
type ValidationErrors interface {
	error
	Errors() []FieldError
	HasErrors() bool
}

// FieldError 单个字段的校验错误
type FieldError interface {
	Field() string
	Tag() string
	Value() any
	Message() string
	Translate(lang string) string
}

// ValidationOption 校验器选项
type ValidationOption func(*validatorImpl)

// WithTagName 设置校验标签名
func WithTagName(tagName string) ValidationOption {
	return func(v *validatorImpl) {
		v.validator.SetTagName(tagName)
	}
}

// WithDefaultLang 设置默认翻译语言
func WithDefaultLang(lang string) ValidationOption {
	return func(v *validatorImpl) {
		v.defaultLang = lang
	}
}
