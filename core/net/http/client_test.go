package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/portfoliohub/errors"
)

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    status,
		"data":    data,
		"message": message,
	})
}

type profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func TestClient_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/me", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Equal(t, ContentTypeJSON, r.Header.Get(HeaderAccept))
		writeEnvelope(w, http.StatusOK, profile{ID: "u-1", Email: "a@b.com"}, "success")
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	require.NoError(t, err)

	var got profile
	require.NoError(t, c.Get(context.Background(), "/users/me", &got))
	assert.Equal(t, profile{ID: "u-1", Email: "a@b.com"}, got)
}

func TestClient_DecodesBareJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"u-2","email":"x@y.z"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	var got profile
	require.NoError(t, c.Get(context.Background(), "/users/me", &got))
	assert.Equal(t, "u-2", got.ID)
}

func TestClient_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, MethodPut, r.Method)
		assert.Equal(t, ContentTypeJSON, r.Header.Get(HeaderContentType))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEnvelope(w, http.StatusOK, body, "")
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	var echo map[string]string
	require.NoError(t, c.Put(context.Background(), "/users/me", map[string]string{"name": "Ada"}, &echo))
	assert.Equal(t, "Ada", echo["name"])
}

func TestClient_MapsStatusToError(t *testing.T) {
	tests := []struct {
		status  int
		message string
		kind    errors.Kind
	}{
		{http.StatusUnauthorized, "token expired", errors.KindUnauthenticated},
		{http.StatusForbidden, "", errors.KindUnauthenticated},
		{http.StatusTooManyRequests, "slow down", errors.KindRateLimited},
		{http.StatusConflict, "username taken", errors.KindValidation},
		{http.StatusInternalServerError, "boom", errors.KindServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, nil, tt.message)
			}))
			defer srv.Close()

			c, err := New(srv.URL)
			require.NoError(t, err)

			err = c.Post(context.Background(), "/auth/register", map[string]string{}, nil, WithoutRefresh())
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Equal(t, tt.status, errors.Code(err))
			if tt.message != "" {
				assert.Equal(t, tt.message, errors.Message(err))
			} else {
				assert.Equal(t, http.StatusText(tt.status), errors.Message(err))
			}
			assert.Equal(t, "/auth/register", errors.FromError(err).GetMetadata()["path"])
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/users/me", nil)
	assert.Equal(t, errors.KindNetwork, errors.KindOf(err))
}

func TestClient_ReaderBodyIsReplayable(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		b, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(b))
		writeEnvelope(w, http.StatusOK, nil, "")
	}))
	defer srv.Close()

	replayTwice := func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if _, err := next(ctx, req); err != nil {
				return nil, err
			}
			return next(ctx, req.Clone())
		}
	}

	c, err := New(srv.URL, WithInterceptors(replayTwice))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), &Request{
		Method: MethodPost,
		Path:   "/media",
		Body:   strings.NewReader("payload"),
		Header: http.Header{HeaderContentType: {ContentTypeText}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Interceptor {
		return func(next Handler) Handler {
			return func(ctx context.Context, req *Request) (*Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := Chain(func(context.Context, *Request) (*Response, error) {
		order = append(order, "send")
		return &Response{StatusCode: 200}, nil
	}, mark("outer"), mark("inner"))

	_, err := h(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "send"}, order)
}
