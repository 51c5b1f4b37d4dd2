package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/portfoliohub/errors"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username" validate:"required,username"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
}

func TestBasicValidation(t *testing.T) {
	v := New()
	err := v.Struct(&signup{
		Email:    "a@b.com",
		Password: "correct-horse",
		Username: "jane-doe",
		Slug:     "my-first-site",
	})
	assert.NoError(t, err)
}

func TestValidationErrors(t *testing.T) {
	v := New()
	err := v.Struct(&signup{Email: "nope", Password: "short", Username: "admin"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.True(t, HasFieldError(err, "email"))
	assert.True(t, HasFieldError(err, "password"))
	assert.True(t, HasFieldError(err, "username"))
	assert.False(t, HasFieldError(err, "slug"))
}

func TestUsernameRule(t *testing.T) {
	v := New()
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "jane", true},
		{"with dash", "jane-doe", true},
		{"too short", "jd", false},
		{"upper case", "Jane", false},
		{"reserved", "dashboard", false},
		{"trailing dash", "jane-", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&signup{Email: "a@b.com", Password: "12345678", Username: tt.input})
			assert.Equal(t, tt.valid, err == nil, "username %q: %v", tt.input, err)
		})
	}
}

func TestTranslate(t *testing.T) {
	v := New()
	err := v.Struct(&signup{Email: "a@b.com", Password: "12345678", Username: "x"})
	require.Error(t, err)

	ve := err.(ValidationErrors)
	require.Len(t, ve.Errors(), 1)
	fe := ve.Errors()[0]
	assert.Contains(t, fe.Message(), "username")
	assert.NotEmpty(t, fe.Translate("zh"))
}

func TestToError(t *testing.T) {
	err := ToError(New().Struct(&signup{Email: "bad"}))
	require.NotNil(t, err)
	assert.Equal(t, 422, err.Code)
	assert.Equal(t, errors.KindValidation, err.Kind())
	assert.Contains(t, err.GetMetadata(), "email")
	assert.Nil(t, ToError(nil))
}
