package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务",
	Long: `启动HTTP服务,收到SIGINT/SIGTERM后优雅退出:
  1. 停止接收新连接,等待进行中的请求完成(最长server.shutdown_timeout)
  2. 按创建的逆序关闭消息队列、Redis、存储连接和Tracer`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.InitMetrics()

	// 1. 依赖注入(存储连接失败时直接退出,不开始服务)
	app, cleanup, err := InitializeApp(ctx, configFile)
	if err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}
	defer cleanup()

	cfg := app.Config
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 2. 启动服务
	errCh := make(chan error, 1)
	go func() {
		app.Log.Info("服务启动",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("tracing", app.Tracing.enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 3. 等待退出信号
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.Log.Info("收到退出信号,开始优雅关闭", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("优雅关闭失败: %w", err)
	}
	app.Log.Info("服务已停止")
	return nil
}
