package devserver

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/store/oss/minio"
)

var ErrMediaNotFound = errors.NotFound("media not found")

// BlobStore 保存上传文件内容，*minio.Client 满足此接口
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

var _ BlobStore = (*minio.Client)(nil)

type blob struct {
	data        []byte
	contentType string
}

type memoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: make(map[string]blob)}
}

func (m *memoryBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[key] = blob{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *memoryBlobs) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	b, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, "", minio.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.contentType, nil
}

func mediaKey(id, filename string) string {
	return id + "/" + filename
}
