package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kochabx/portfoliohub/log"
)

var ErrInvalidConfig = errors.New("mongo: config is required")

// Client 连接与默认数据库
type Client struct {
	client *mongo.Client
	config *Config
	logger *log.Logger
}

type Option func(*Client)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New 连接并 Ping，超时取 Config.Timeout
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg, logger: log.G.Component("mongo")}
	for _, opt := range opts {
		opt(c)
	}

	// 嵌套文档解码为 bson.M，便于直接序列化为 JSON
	clientOpts := options.Client().
		ApplyURI(cfg.uri()).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true, NilSliceAsEmpty: true}).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	c.client = client

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	c.logger.Debug().Str("database", cfg.Database).Msg("mongo client created")
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

// Database 返回配置的默认数据库
func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.config.Database)
}

func (c *Client) Client() *mongo.Client {
	return c.client
}
