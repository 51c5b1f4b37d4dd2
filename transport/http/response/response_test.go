package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kochabx/portfoliohub/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinJson(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	GinJSON(c, "test data")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"message":"success","data":"test data"}`, w.Body.String())
}

func TestGinJsonStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	GinJSONStatus(c, http.StatusCreated, map[string]string{"id": "m-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"code":201`)
}

func TestGinJsonWithError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"unauthorized", errors.Unauthorized("token expired"), 401, `{"code":401,"message":"token expired"}`},
		{"rate limited", errors.TooManyRequests("slow down"), 429, `{"code":429,"message":"slow down"}`},
		{"wrapped conflict", fmt.Errorf("register: %w", errors.Conflict("username taken")), 409, `{"code":409,"message":"username taken"}`},
		{"plain error", fmt.Errorf("db down"), 500, `{"code":500,"message":"db down"}`},
		{"non http code", errors.New(10000, "legacy"), 500, `{"code":500,"message":"legacy"}`},
		{"nil", nil, 503, `{"code":503,"message":"service temporarily unavailable"}`},
		{"metadata", errors.UnprocessableEntity("invalid").WithMetadata(map[string]string{"email": "bad"}), 422,
			`{"code":422,"message":"invalid","metadata":{"email":"bad"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			GinJSONE(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}
