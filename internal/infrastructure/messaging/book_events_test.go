package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/pkg/mq"
)

type recordingPublisher struct {
	routingKey string
	message    interface{}
	deadline   bool
	err        error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	p.routingKey = routingKey
	p.message = message
	_, p.deadline = ctx.Deadline()
	return p.err
}

func TestBookEventPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	pub := NewBookEventPublisher(rec)

	ev := book.NewEvent(book.EventCreated, &book.Book{ID: 7, Title: "Dune", Author: "Herbert", Rating: 9}, "user_1")
	require.NoError(t, pub.PublishBookEvent(context.Background(), ev))

	assert.Equal(t, "book.created", rec.routingKey)
	assert.Equal(t, ev, rec.message)
	assert.True(t, rec.deadline, "发布带超时")

	rec.err = errors.New("channel closed")
	assert.Error(t, pub.PublishBookEvent(context.Background(), ev))
}

func TestDecodeBookEvent(t *testing.T) {
	ev := book.NewEvent(book.EventReplaced, &book.Book{ID: 3, Title: "Piranesi", Author: "Clarke", Rating: 8}, "user_2")
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	got, err := DecodeBookEvent(mq.Delivery{RoutingKey: "book.replaced", Body: body, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, book.EventReplaced, got.Type)
	assert.Equal(t, int64(3), got.BookID)
	require.NotNil(t, got.Book)
	assert.Equal(t, book.Rating(8), got.Book.Rating, "评分以展示字符串传输并还原")
	assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))

	got, err = DecodeBookEvent(mq.Delivery{RoutingKey: "book.deleted", Body: []byte(`{"book_id":5}`)})
	require.NoError(t, err)
	assert.Equal(t, book.EventDeleted, got.Type, "缺少type时取routing key")

	_, err = DecodeBookEvent(mq.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
}

func TestLogBookEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := LogBookEvents(zap.New(core))

	body, err := json.Marshal(book.NewEvent(book.EventDeleted, &book.Book{ID: 9, Title: "Emma"}, "user_3"))
	require.NoError(t, err)

	require.NoError(t, handle(context.Background(), mq.Delivery{RoutingKey: "book.deleted", Body: body}))
	require.NoError(t, handle(context.Background(), mq.Delivery{RoutingKey: "book.deleted", Body: []byte("{")}), "坏消息不重新入队")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "收到图书事件", entries[0].Message)
	assert.Equal(t, int64(9), entries[0].ContextMap()["book_id"])
	assert.Equal(t, "Emma", entries[0].ContextMap()["title"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
