package minio

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client 单桶对象存储
type Client struct {
	config *Config
	client *minio.Client
}

// New 创建客户端，桶不存在时自动创建
func New(ctx context.Context, cfg *Config) (*Client, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}

	c := &Client{config: cfg, client: mc}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	ok, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return fmt.Errorf("minio: check bucket %s: %w", c.config.Bucket, err)
	}
	if ok {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
		return fmt.Errorf("minio: create bucket %s: %w", c.config.Bucket, err)
	}
	return nil
}

func (c *Client) Bucket() string {
	return c.config.Bucket
}

// Put 写入对象；contentType 为空时按扩展名推断
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if key == "" {
		return ErrEmptyObjectName
	}
	if contentType == "" {
		contentType = contentTypeOf(key)
	}
	_, err := c.client.PutObject(ctx, c.config.Bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Open 读取对象，不存在时返回 ErrObjectNotFound
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := c.client.GetObject(ctx, c.config.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNotFound(err) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", err
	}
	return obj, info.ContentType, nil
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.config.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	return c.client.RemoveObject(ctx, c.config.Bucket, key, minio.RemoveObjectOptions{})
}

// PresignedGetURL 生成临时下载地址，有效期为 PresignExpiry
func (c *Client) PresignedGetURL(ctx context.Context, key string) (*url.URL, error) {
	return c.client.PresignedGetObject(ctx, c.config.Bucket, key, c.config.PresignExpiry, nil)
}

func contentTypeOf(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
