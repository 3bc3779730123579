// Package router 组装gin引擎:全局中间件、资源API、页面、运维端点
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	// swagger文档注册
	_ "github.com/xiebiao/reading-tracker/docs"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
	"github.com/xiebiao/reading-tracker/internal/interface/http/handler"
	"github.com/xiebiao/reading-tracker/internal/interface/http/middleware"
	"github.com/xiebiao/reading-tracker/internal/interface/http/view"
	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
	"github.com/xiebiao/reading-tracker/pkg/response"
)

const apiPrefix = "/api/"

// New 创建gin引擎并注册全部路由
//
// 中间件顺序:Recovery → Tracing → Logger → Metrics → Authenticate
// Tracing在Logger之前,日志中才能带上trace_id
func New(
	cfg *config.Config,
	log *zap.Logger,
	bookHandler *handler.BookHandler,
	pageHandler *handler.PageHandler,
	sessionHandler *handler.SessionHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// ClientIP()只采信可信代理转发的X-Forwarded-For,限流和访问日志都依赖它
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Warn("可信代理配置无效,不采信任何转发头", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.SetHTMLTemplate(view.MustTemplates())
	r.Use(
		gin.Recovery(),
		middleware.Tracing(),
		middleware.Logger(log),
		middleware.Metrics(),
		authMiddleware.Authenticate(),
	)

	// 运维端点
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 图书资源API(不要求登录)
	// 按ClientIP限流;页面经apiclient的调用带着发起页面请求的客户端IP,各自计入自己的桶
	api := r.Group("/api/books")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}
	{
		api.GET("", bookHandler.ListBooks)
		api.POST("", bookHandler.AddBook)
		api.GET("/:id", bookHandler.GetBook)
		api.PUT("/:id", bookHandler.ReplaceBook)
		api.DELETE("/:id", bookHandler.DeleteBook)
	}

	// 页面
	// 列表页和添加页对未登录用户显示登录提示,其余页面重定向到登录页
	r.GET("/", pageHandler.Home)
	r.GET("/books", pageHandler.ListBooks)
	r.GET("/books/add", pageHandler.NewBookForm)

	protected := r.Group("/books")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/add", pageHandler.CreateBook)
		protected.GET("/:id", pageHandler.ShowBook)
		protected.GET("/:id/edit", pageHandler.EditBookForm)
		protected.POST("/:id/edit", pageHandler.UpdateBook)
		protected.POST("/:id/delete", pageHandler.DeleteBook)
	}

	// 会话
	r.GET(middleware.SignInPath, sessionHandler.SignIn)
	r.GET(middleware.SignInPath+"/callback", sessionHandler.Callback)
	r.POST("/sign-out", sessionHandler.SignOut)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			response.Error(c, apperrors.ErrNotFound)
			return
		}
		c.HTML(http.StatusNotFound, view.ErrorTemplate, view.ErrorPage{
			Layout: view.Layout{
				Title:     "Not Found",
				SignedIn:  middleware.IsSignedIn(c),
				UserName:  middleware.GetUserName(c),
				SignInURL: middleware.SignInPath,
			},
			Status:  http.StatusNotFound,
			Message: "Page not found.",
		})
	})

	return r
}
