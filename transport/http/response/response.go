package response

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/portfoliohub/errors"
)

const (
	// 成功响应常量
	defaultSuccessMessage = "success"
	successCode           = http.StatusOK

	// 错误响应常量
	defaultErrorMessage = "service temporarily unavailable"
	defaultErrorCode    = http.StatusServiceUnavailable
)

type Response struct {
	Code     int               `json:"code"`               // 与 HTTP 状态码一致
	Data     any               `json:"data,omitempty"`     // 响应数据，为nil时省略
	Message  string            `json:"message,omitempty"`  // 响应消息，为空时省略
	Metadata map[string]string `json:"metadata,omitempty"` // 错误附加信息，如字段校验消息
}

// reset 清空所有字段用于对象池复用
func (r *Response) reset() {
	r.Code = 0
	r.Data = nil
	r.Message = ""
	r.Metadata = nil
}

// 对象池用于复用Response实例
var responsePool = sync.Pool{
	New: func() any {
		return &Response{}
	},
}

func acquireResponse() *Response {
	return responsePool.Get().(*Response)
}

func releaseResponse(r *Response) {
	if r != nil {
		r.reset()
		responsePool.Put(r)
	}
}

// GinJSON 写入 200 成功响应
func GinJSON(c *gin.Context, data any) {
	GinJSONStatus(c, successCode, data)
}

// GinJSONStatus 写入指定 2xx 状态码的成功响应
func GinJSONStatus(c *gin.Context, status int, data any) {
	if c == nil {
		return
	}

	resp := acquireResponse()
	defer releaseResponse(resp)

	resp.Code = status
	resp.Data = data
	resp.Message = defaultSuccessMessage
	c.JSON(status, resp)
}

// GinJSONE 写入错误响应并中止后续处理。HTTP 状态码取自 *errors.Error，非 HTTP 状态码时回落为 500
func GinJSONE(c *gin.Context, err error) {
	if c == nil {
		return
	}

	defer c.Abort()

	resp := acquireResponse()
	defer releaseResponse(resp)

	if err == nil {
		resp.Code = defaultErrorCode
		resp.Message = defaultErrorMessage
		c.JSON(defaultErrorCode, resp)
		return
	}

	e := errors.FromError(err)
	status := e.Code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	resp.Code = status
	resp.Message = e.Message
	resp.Metadata = e.GetMetadata()
	c.JSON(status, resp)
}
