package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/portfoliohub/log"
)

// Client gorm 连接与底层连接池
type Client struct {
	config DriverConfig
	db     *gorm.DB
	sqlDB  *sql.DB
	logger *log.Logger
}

// New 打开连接、配置连接池、Ping，并按需执行迁移
func New(cfg DriverConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	if options.logger == nil {
		options.logger = log.G.Component("db")
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	gormDB, err := gorm.Open(dialector, gormConfig(cfg, options))
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Driver(), err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	pool := cfg.Pool()
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	c := &Client{config: cfg, db: gormDB, sqlDB: sqlDB, logger: options.logger}

	ctx, cancel := context.WithTimeout(context.Background(), options.connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("db: ping %s: %w", cfg.Driver(), err)
	}

	if len(options.models) > 0 {
		if err := gormDB.WithContext(ctx).AutoMigrate(options.models...); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("db: migrate: %w", err)
		}
	}

	c.logger.Debug().Str("driver", cfg.Driver().String()).Int("models", len(options.models)).Msg("database client created")
	return c, nil
}

func dialectorFor(cfg DriverConfig) (gorm.Dialector, error) {
	switch cfg.Driver() {
	case DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	case DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

func gormConfig(cfg DriverConfig, o *clientOptions) *gorm.Config {
	if o.gormConfig != nil {
		return o.gormConfig
	}

	lc := logger.Config{
		LogLevel:                  logger.LogLevel(cfg.LogLevel()),
		IgnoreRecordNotFoundError: true,
		SlowThreshold:             o.slowQueryThresh,
	}
	return &gorm.Config{
		Logger: logger.New(gormWriter{o.logger}, lc),
		// 唯一约束冲突统一为 gorm.ErrDuplicatedKey
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) DB() *gorm.DB {
	return c.db
}

func (c *Client) Driver() Driver {
	return c.config.Driver()
}

func (c *Client) Ping(ctx context.Context) error {
	if c.sqlDB == nil {
		return ErrNotInitialized
	}
	return c.sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.sqlDB == nil {
		return nil
	}
	return c.sqlDB.Close()
}

func (c *Client) Stats() sql.DBStats {
	if c.sqlDB == nil {
		return sql.DBStats{}
	}
	return c.sqlDB.Stats()
}

// gormWriter 将 gorm 日志写入 zerolog
type gormWriter struct {
	logger *log.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logger.Info().Msgf(format, args...)
}
