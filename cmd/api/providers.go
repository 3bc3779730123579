package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/apiclient"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/messaging"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/persistence/mongo"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reading-tracker/internal/interface/http/handler"
	"github.com/xiebiao/reading-tracker/internal/interface/http/middleware"
	"github.com/xiebiao/reading-tracker/pkg/jwt"
	"github.com/xiebiao/reading-tracker/pkg/logger"
	"github.com/xiebiao/reading-tracker/pkg/mq"
	"github.com/xiebiao/reading-tracker/pkg/tracing"
)

const closeTimeout = 5 * time.Second

// App serve子命令运行所需的全部对象
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Engine  *gin.Engine
	Tracing Tracer
}

func newApp(cfg *config.Config, log *zap.Logger, engine *gin.Engine, tracer Tracer) *App {
	return &App{Config: cfg, Log: log, Engine: engine, Tracing: tracer}
}

// Tracer 全局TracerProvider的初始化结果
type Tracer struct {
	enabled bool
}

// ========================================
// Custom Providers
// ========================================
// 这些依赖需要从Config中挑选参数,或按配置选择实现,
// 返回的cleanup函数由Wire按创建的逆序串联

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	return logger.Setup(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
}

// provideTracer 未启用时使用otel默认的Noop实现
func provideTracer(cfg *config.Config, log *zap.Logger) (Tracer, func(), error) {
	if !cfg.Tracing.Enabled {
		return Tracer{}, func() {}, nil
	}

	shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
	if err != nil {
		return Tracer{}, nil, err
	}
	return Tracer{enabled: true}, func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("关闭Tracer失败", zap.Error(err))
		}
	}, nil
}

// provideBookRepository 按storage.driver选择仓储实现
// 连接失败直接返回错误,进程在开始服务前退出
func provideBookRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (book.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		gateway, err := mongo.NewGateway(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, nil, err
		}
		return mongo.NewBookRepository(gateway), func() {
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			if err := gateway.Close(ctx); err != nil {
				log.Warn("关闭MongoDB连接失败", zap.Error(err))
			}
		}, nil

	case config.DriverMySQL:
		db, err := mysql.NewDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return mysql.NewBookRepository(db), func() {
			if err := mysql.Close(db); err != nil {
				log.Warn("关闭MySQL连接失败", zap.Error(err))
			}
		}, nil

	default:
		log.Warn("使用内存存储,进程退出后数据丢失")
		return memory.NewBookRepository(), func() {}, nil
	}
}

// provideEventPublisher 未配置mq.url时不发布事件
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (book.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled() {
		return book.NopPublisher{}, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, messaging.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewBookEventPublisher(publisher), func() {
		if err := publisher.Close(); err != nil {
			log.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}, nil
}

// provideRevocationStore 未启用Redis时登出只清除Cookie
func provideRevocationStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (middleware.RevocationStore, func(), error) {
	if !cfg.Redis.Enabled {
		return middleware.NopRevocationStore{}, func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewSessionStore(client), func() {
		if err := client.Close(); err != nil {
			log.Warn("关闭Redis连接失败", zap.Error(err))
		}
	}, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.SessionExpire)
}

func provideAuthMiddleware(jwtManager *jwt.Manager, store middleware.RevocationStore, cfg *config.Config, log *zap.Logger) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtManager, store, cfg.Auth.CookieName, log)
}

// provideBookAPI 页面通过公开地址访问图书API
func provideBookAPI(cfg *config.Config, log *zap.Logger) handler.BookAPI {
	return apiclient.New(cfg.View.BaseURL, cfg.View.RequestTimeout, log)
}

func providePageHandler(api handler.BookAPI, cfg *config.Config, log *zap.Logger) *handler.PageHandler {
	return handler.NewPageHandler(api, cfg.View.DegradeToEmptyOnUpstreamFailure, log)
}

func provideSessionHandler(jwtManager *jwt.Manager, store middleware.RevocationStore, cfg *config.Config, log *zap.Logger) *handler.SessionHandler {
	return handler.NewSessionHandler(jwtManager, store, cfg.Auth, cfg.View.BaseURL, log)
}
