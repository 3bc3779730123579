package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/messaging"
	"github.com/xiebiao/reading-tracker/pkg/metrics"
	"github.com/xiebiao/reading-tracker/pkg/mq"
)

var eventsQueue string

// eventsCmd 订阅图书事件并输出到日志,用于排查事件发布
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "订阅并打印图书事件",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if !cfg.MQ.Enabled() {
			return errors.New("未配置mq.url")
		}

		log, flush, err := provideLogger(cfg)
		if err != nil {
			return err
		}
		defer flush()
		metrics.InitMetrics()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, messaging.ExchangeType, eventsQueue, messaging.BindingKeys, log)
		if err != nil {
			return err
		}
		defer consumer.Close()

		log.Info("开始订阅图书事件", zap.String("exchange", cfg.MQ.Exchange), zap.String("queue", eventsQueue))
		return consumer.Consume(ctx, messaging.LogBookEvents(log))
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsQueue, "queue", "reading-tracker.events", "队列名")
}
