// devserver 运行开发用 PortfolioHub 后端
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/kochabx/portfoliohub/app"
	"github.com/kochabx/portfoliohub/config"
	"github.com/kochabx/portfoliohub/core/auth/jwt/cache"
	"github.com/kochabx/portfoliohub/devserver"
	"github.com/kochabx/portfoliohub/log"
	"github.com/kochabx/portfoliohub/metrics"
	"github.com/kochabx/portfoliohub/store/db"
	"github.com/kochabx/portfoliohub/store/kafka"
	"github.com/kochabx/portfoliohub/store/mongo"
	"github.com/kochabx/portfoliohub/store/oss/minio"
	"github.com/kochabx/portfoliohub/store/redis"
	khttp "github.com/kochabx/portfoliohub/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("config", config.DefaultFile, "config file name")
	dir := flag.String("dir", ".", "config search path")
	flag.Parse()

	var settings config.Settings
	var cfg *config.Config
	// 热更新只调整日志级别，其余配置重启生效
	cfg = config.New(&settings,
		config.WithFile(*file, *dir),
		config.WithOptionalFile(),
		config.WithOnChange(func() {
			cfg.Read(func(any) {
				if level, err := zerolog.ParseLevel(settings.Log.Level); err == nil {
					log.SetGlobalLevel(level)
				}
			})
		}),
	)
	if err := cfg.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := log.FromConfig(settings.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.SetGlobalLogger(logger)

	if err := cfg.Watch(); err != nil {
		log.Warn().Err(err).Msg("config watch disabled")
	}

	closers := []app.Option{
		app.WithClose("logger", func(context.Context) error { return logger.Close() }, time.Second),
	}
	opts, extra, err := backends(settings.Server)
	if err != nil {
		return err
	}
	closers = append(closers, extra...)

	srv, err := devserver.New(settings.Server, opts...)
	if err != nil {
		return err
	}

	httpServer := khttp.NewServer(settings.Server.Addr, srv.Handler(),
		khttp.WithMeta(khttp.Meta{Name: "devserver"}),
		khttp.WithMetricsOptions(khttp.MetricsOption{Enabled: settings.Server.Metrics, EnabledGoCollector: true}),
		khttp.WithHealthOptions(khttp.HealthOption{Enabled: true}),
	)

	// close 逆序执行，devserver 最先关闭
	closers = append(closers, app.WithClose("devserver", func(context.Context) error { return srv.Close() }, 0))
	return app.New(append([]app.Option{
		app.WithServers(httpServer),
		app.WithShutdownTimeout(settings.Server.Shutdown),
	}, closers...)...).Run()
}

// backends 按配置接入数据库、redis、对象存储与 kafka 审计，未配置时 devserver 使用内存实现
func backends(cfg config.ServerSettings) ([]devserver.Option, []app.Option, error) {
	var (
		opts    []devserver.Option
		closers []app.Option
	)
	if cfg.Metrics {
		opts = append(opts, devserver.WithHTTPMetrics(metrics.NewHTTPServer(metrics.Prom.Registry())))
	}

	switch {
	case cfg.Mongo.Enabled:
		client, err := mongo.New(context.Background(), &cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		repo, err := devserver.NewMongoRepository(context.Background(), client.Database(), time.Now)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, devserver.WithRepository(repo))
		closers = append(closers, app.WithClose("mongo", client.Close, 0))
	case cfg.Database.Enabled():
		dc, err := cfg.Database.DriverConfig()
		if err != nil {
			return nil, nil, err
		}
		client, err := db.New(dc, db.WithSlowQuery(200*time.Millisecond), db.WithAutoMigrate(devserver.Models()...))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, devserver.WithRepository(devserver.NewGormRepository(client.DB(), time.Now)))
		closers = append(closers, app.WithClose("database", func(context.Context) error { return client.Close() }, 0))
	}

	if cfg.Redis.Enabled() {
		client, err := redis.New(context.Background(), &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, devserver.WithBlacklist(cache.NewRedisBlacklist(client.UniversalClient(), client.Key("jwt", "blacklist", ""))))
		closers = append(closers, app.WithClose("redis", func(context.Context) error { return client.Close() }, 0))
	}

	if cfg.Media.Enabled() {
		blobs, err := minio.New(context.Background(), &cfg.Media)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, devserver.WithBlobStore(blobs))
	}

	if cfg.Audit.Enabled() {
		producer, err := kafka.NewProducer(&cfg.Audit)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, devserver.WithAuditor(devserver.NewPublishAuditor(producer, nil)))
		closers = append(closers, app.WithClose("kafka", func(context.Context) error { return producer.Close() }, 0))
	}
	return opts, closers, nil
}
