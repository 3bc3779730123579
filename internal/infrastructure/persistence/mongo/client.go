// Package mongo 基于MongoDB的持久化网关和图书仓储
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
)

// Gateway 持久化网关
// 设计说明：
// 1. 进程启动时创建一次，所有请求共享同一个Client(Client本身并发安全)
// 2. 由main显式构造并注入，不使用包级全局变量
// 3. 启动时Ping并确保id唯一索引，失败则启动失败
type Gateway struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *zap.Logger
}

// NewGateway 连接MongoDB并返回网关
func NewGateway(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*Gateway, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("未配置MongoDB连接串")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB连接测试失败: %w", err)
	}

	g := &Gateway{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		log:        log,
	}

	if err := g.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("MongoDB连接成功",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
	)
	return g, nil
}

// Collection 图书集合句柄
func (g *Gateway) Collection() *mongo.Collection {
	return g.collection
}

// Close 断开连接
func (g *Gateway) Close(ctx context.Context) error {
	if err := g.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("断开MongoDB连接失败: %w", err)
	}
	return nil
}

// ensureIndexes id上的唯一索引保证并发创建不会产生重复ID
// 历史数据中已有重复ID时创建会失败，需要先人工清理
func (g *Gateway) ensureIndexes(ctx context.Context) error {
	_, err := g.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldID, Value: 1}},
		Options: options.Index().SetName("uniq_id").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("创建id唯一索引失败: %w", err)
	}
	return nil
}
