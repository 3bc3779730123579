//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 依赖链:
// *App 需要 → *gin.Engine
// *gin.Engine 需要 → Handler、AuthMiddleware
// Handler 需要 → UseCase / BookAPI
// UseCase 需要 → book.Service、book.EventPublisher
// book.Service 需要 → book.Repository(按storage.driver选择)

package main

import (
	"context"

	"github.com/google/wire"

	appbook "github.com/xiebiao/reading-tracker/internal/application/book"
	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
	"github.com/xiebiao/reading-tracker/internal/interface/http/handler"
	"github.com/xiebiao/reading-tracker/internal/interface/http/router"
)

// infrastructureSet 基础设施层依赖
// 包含:配置、日志、Tracer、存储、消息队列、会话撤销列表
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	provideTracer,
	provideBookRepository,
	provideEventPublisher,
	provideRevocationStore,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appbook.NewAddBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewReplaceBookUseCase,
	appbook.NewDeleteBookUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewBookHandler,
	provideBookAPI,
	providePageHandler,
	provideSessionHandler,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序关闭所有资源
func InitializeApp(ctx context.Context, configFile string) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		router.New,
		newApp,
	)
	return nil, nil, nil
}
