package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kochabx/portfoliohub/core/tag"
)

type note struct {
	ID   uint   `gorm:"primaryKey"`
	Body string `gorm:"size:64;uniqueIndex"`
}

func sqliteConfig(t *testing.T) *SQLiteConfig {
	t.Helper()
	cfg := &Config{Driver: DriverSQLite}
	require.NoError(t, tag.ApplyDefaults(cfg))
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	dc, err := cfg.DriverConfig()
	require.NoError(t, err)
	return dc.(*SQLiteConfig)
}

func TestConfigDriverConfig(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, tag.ApplyDefaults(cfg))
	assert.False(t, cfg.Enabled())
	_, err := cfg.DriverConfig()
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	cfg.Driver = DriverPostgres
	cfg.Level = "warn"
	dc, err := cfg.DriverConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, LogLevelWarn, dc.LogLevel())
	assert.Contains(t, dc.DSN(), "host=localhost port=5432")
	assert.Contains(t, dc.DSN(), "connect_timeout=10")
	assert.Equal(t, 50, dc.Pool().MaxOpenConns)
}

func TestDSN(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, tag.ApplyDefaults(cfg))

	assert.True(t, strings.HasPrefix(cfg.SQLite.DSN(), "file:portfoliohub.db?"))
	assert.Contains(t, cfg.SQLite.DSN(), "_journal_mode=WAL")
	assert.Equal(t, 1, cfg.SQLite.Pool().MaxOpenConns)

	cfg.MySQL.Password = "secret"
	assert.True(t, strings.HasPrefix(cfg.MySQL.DSN(), "root:secret@tcp(localhost:3306)/portfoliohub?"))
	assert.Contains(t, cfg.MySQL.DSN(), "parseTime=true")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelInfo, ParseLogLevel("INFO"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelSilent, ParseLogLevel("verbose"))
}

func TestNewSQLite(t *testing.T) {
	client, err := New(sqliteConfig(t),
		WithConnectTimeout(5*time.Second),
		WithSlowQuery(100*time.Millisecond),
		WithAutoMigrate(&note{}),
	)
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, DriverSQLite, client.Driver())
	require.NoError(t, client.Ping(context.Background()))

	ctx := context.Background()
	require.NoError(t, client.DB().WithContext(ctx).Create(&note{Body: "hello"}).Error)
	err = client.DB().WithContext(ctx).Create(&note{Body: "hello"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	assert.Equal(t, 1, client.Stats().MaxOpenConnections)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClosedClient(t *testing.T) {
	var c Client
	assert.ErrorIs(t, c.Ping(context.Background()), ErrNotInitialized)
	assert.NoError(t, c.Close())
}
