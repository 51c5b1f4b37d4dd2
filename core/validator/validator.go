package validator

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

var (
	// usernames double as the first URL segment of a public portfolio
	usernamePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_-]{1,28}[a-z0-9])$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reservedNames   = map[string]struct{}{
		"admin": {}, "api": {}, "auth": {}, "dashboard": {}, "signin": {}, "signup": {}, "p": {},
	}
)

type validatorImpl struct {
	validator   *validator.Validate
	uni         *ut.UniversalTranslator
	translators map[string]ut.Translator
	mutex       sync.RWMutex
	defaultLang string
}

// Validate 全局校验器实例
var Validate Validator = New()

// New 创建校验器，注册 en/zh 翻译及 username、slug 规则
func New(opts ...ValidationOption) Validator {
	v := &validatorImpl{
		validator:   validator.New(),
		translators: make(map[string]ut.Translator),
		defaultLang: "en",
	}

	enLocale := en.New()
	v.uni = ut.New(enLocale, enLocale, zh.New())

	// 错误中使用 json 字段名，便于表单直接定位
	v.validator.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.validator.RegisterValidation("username", isUsername)
	_ = v.validator.RegisterValidation("slug", isSlug)

	for _, opt := range opts {
		opt(v)
	}

	v.initTranslators()
	return v
}

func isUsername(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if _, reserved := reservedNames[s]; reserved {
		return false
	}
	return usernamePattern.MatchString(s)
}

func isSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func (v *validatorImpl) initTranslators() {
	if trans, ok := v.uni.GetTranslator("en"); ok {
		v.translators["en"] = trans
		_ = en_translations.RegisterDefaultTranslations(v.validator, trans)
		v.registerCustom(trans, map[string]string{
			"username": "{0} must be 3-30 lowercase letters, digits, '-' or '_' and not a reserved name",
			"slug":     "{0} must be lowercase words separated by '-'",
		})
	}
	if trans, ok := v.uni.GetTranslator("zh"); ok {
		v.translators["zh"] = trans
		_ = zh_translations.RegisterDefaultTranslations(v.validator, trans)
		v.registerCustom(trans, map[string]string{
			"username": "{0}必须为3-30位小写字母、数字、'-'或'_'，且不能是保留名称",
			"slug":     "{0}必须为以'-'连接的小写单词",
		})
	}
}

func (v *validatorImpl) registerCustom(trans ut.Translator, messages map[string]string) {
	for tag, text := range messages {
		_ = v.validator.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, text, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
	}
}

// Struct 校验结构体
func (v *validatorImpl) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

// StructCtx 带上下文校验结构体
func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	if err := v.validator.StructCtx(ctx, s); err != nil {
		return v.translateError(err, v.defaultLang)
	}
	return nil
}

// GetValidator 获取底层 validator
func (v *validatorImpl) GetValidator() *validator.Validate {
	return v.validator
}

func (v *validatorImpl) translateError(err error, lang string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	v.mutex.RLock()
	trans, ok := v.translators[lang]
	if !ok {
		trans, ok = v.translators[v.defaultLang]
	}
	v.mutex.RUnlock()
	if !ok {
		return err
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		item := &fieldErrorImpl{
			fieldError:  fe,
			message:     fe.Translate(trans),
			translators: v.translators,
		}
		fieldErrors = append(fieldErrors, item)
		messages = append(messages, item.message)
	}

	return &validationErrorsImpl{
		fieldErrors: fieldErrors,
		message:     strings.Join(messages, "; "),
	}
}
