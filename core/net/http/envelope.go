package http

import (
	"encoding/json"
	"net/http"

	"github.com/kochabx/portfoliohub/errors"
)

// Envelope 服务端统一响应格式 {code,data,message}
type Envelope struct {
	Code     int               `json:"code"`
	Data     json.RawMessage   `json:"data,omitempty"`
	Message  string            `json:"message,omitempty"`
	// Metadata 错误附加信息，如表单字段消息
	Metadata map[string]string `json:"metadata,omitempty"`
}

// decodeEnvelope 把 body 中 envelope 的 data 解码到 dest。body 不是 envelope 时整体解码
func decodeEnvelope(body []byte, dest any) error {
	if dest == nil || len(body) == 0 {
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		return json.Unmarshal(env.Data, dest)
	}
	return json.Unmarshal(body, dest)
}

// statusError 把非 2xx 响应转换为 *errors.Error，优先使用服务端的 message
func statusError(resp *Response, req *Request, requestID string) *errors.Error {
	var env Envelope
	_ = json.Unmarshal(resp.Body, &env)

	return errors.FromStatus(resp.StatusCode, env.Message).WithMetadata(env.Metadata).WithMetadata(map[string]string{
		"method":     req.Method,
		"path":       req.Path,
		"request_id": requestID,
	})
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func decodeError(err error, req *Request) *errors.Error {
	return errors.Wrap(err, http.StatusBadGateway, "decode %s %s response", req.Method, req.Path)
}
