package validator

import (
	"errors"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	kerrors "github.com/kochabx/portfoliohub/errors"
)

type validationErrorsImpl struct {
	fieldErrors []FieldError
	message     string
}

func (ve *validationErrorsImpl) Error() string {
	return ve.message
}

func (ve *validationErrorsImpl) Errors() []FieldError {
	return ve.fieldErrors
}

func (ve *validationErrorsImpl) HasErrors() bool {
	return len(ve.fieldErrors) > 0
}

type fieldErrorImpl struct {
	fieldError  validator.FieldError
	message     string
	translators map[string]ut.Translator
}

func (fe *fieldErrorImpl) Field() string {
	return fe.fieldError.Field()
}

func (fe *fieldErrorImpl) Tag() string {
	return fe.fieldError.Tag()
}

func (fe *fieldErrorImpl) Value() any {
	return fe.fieldError.Value()
}

func (fe *fieldErrorImpl) Message() string {
	return fe.message
}

func (fe *fieldErrorImpl) Translate(lang string) string {
	if trans, ok := fe.translators[lang]; ok {
		return fe.fieldError.Translate(trans)
	}
	return fe.message
}

// IsValidationError 检查是否为校验错误
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// HasFieldError 检查指定字段是否校验失败
func HasFieldError(err error, field string) bool {
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	for _, fe := range ve.Errors() {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

// ToError 将校验错误转换为 422 错误，字段消息放入 metadata，供表单逐项展示
func ToError(err error) *kerrors.Error {
	if err == nil {
		return nil
	}
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		return kerrors.Wrap(err, http.StatusUnprocessableEntity, "invalid input")
	}
	metadata := make(map[string]string, len(ve.Errors()))
	for _, fe := range ve.Errors() {
		metadata[fe.Field()] = fe.Message()
	}
	return kerrors.NewWithMetadata(http.StatusUnprocessableEntity, metadata, "%s", ve.Error()).WithCause(err)
}
