// Package messaging 图书事件与消息队列之间的适配
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/pkg/mq"
)

// ExchangeType 图书事件使用topic Exchange,订阅方按book.*绑定
const ExchangeType = "topic"

// BindingKeys 订阅全部图书事件
var BindingKeys = []string{"book.*"}

const publishTimeout = 3 * time.Second

// MessagePublisher 消息发布能力(*mq.Publisher实现)
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// BookEventPublisher 将图书事件发布到RabbitMQ
// routing key即事件类型(book.created等)
type BookEventPublisher struct {
	publisher MessagePublisher
}

var _ book.EventPublisher = (*BookEventPublisher)(nil)

// NewBookEventPublisher 创建事件发布者
func NewBookEventPublisher(publisher MessagePublisher) *BookEventPublisher {
	return &BookEventPublisher{publisher: publisher}
}

// PublishBookEvent 发布事件,单次发布最多等待publishTimeout
func (p *BookEventPublisher) PublishBookEvent(ctx context.Context, ev book.Event) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.publisher.Publish(ctx, string(ev.Type), ev)
}

// DecodeBookEvent 解析消息体
func DecodeBookEvent(d mq.Delivery) (book.Event, error) {
	var ev book.Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return book.Event{}, fmt.Errorf("解析图书事件失败: %w", err)
	}
	if ev.Type == "" {
		ev.Type = book.EventType(d.RoutingKey)
	}
	return ev, nil
}

// LogBookEvents 返回把每条图书事件写入日志的消费函数
// 无法解析的消息记录日志后直接确认,避免反复重新入队
func LogBookEvents(log *zap.Logger) func(context.Context, mq.Delivery) error {
	return func(_ context.Context, d mq.Delivery) error {
		ev, err := DecodeBookEvent(d)
		if err != nil {
			log.Warn("丢弃无法解析的消息", zap.String("routing_key", d.RoutingKey), zap.Error(err))
			return nil
		}

		fields := []zap.Field{
			zap.String("type", string(ev.Type)),
			zap.Int64("book_id", ev.BookID),
			zap.String("user_id", ev.UserID),
			zap.Time("occurred_at", ev.OccurredAt),
		}
		if ev.Book != nil {
			fields = append(fields, zap.String("title", ev.Book.Title))
		}
		log.Info("收到图书事件", fields...)
		return nil
	}
}
