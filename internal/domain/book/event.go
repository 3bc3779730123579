package book

import (
	"context"
	"time"
)

// EventType 图书事件类型,同时作为消息的routing key
type EventType string

const (
	EventCreated  EventType = "book.created"
	EventReplaced EventType = "book.replaced"
	EventDeleted  EventType = "book.deleted"
)

// Event 图书领域事件
// Book为事件发生后的文档;删除事件中为被删除的文档
type Event struct {
	Type       EventType `json:"type"`
	BookID     int64     `json:"book_id"`
	Book       *Book     `json:"book,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent 创建事件
func NewEvent(t EventType, b *Book, userID string) Event {
	return Event{
		Type:       t,
		BookID:     b.ID,
		Book:       b,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher 事件发布接口
// 实现:infrastructure/messaging(RabbitMQ)、NopPublisher
type EventPublisher interface {
	PublishBookEvent(ctx context.Context, ev Event) error
}

// NopPublisher 未配置消息队列时使用
type NopPublisher struct{}

// PublishBookEvent 丢弃事件
func (NopPublisher) PublishBookEvent(context.Context, Event) error { return nil }
