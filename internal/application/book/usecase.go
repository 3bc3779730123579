package book

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/pkg/metrics"
	"github.com/xiebiao/reading-tracker/pkg/tracing"
)

const tracerName = "application/book"

// BookInput 创建/替换请求的公共字段
type BookInput struct {
	Title    string
	Author   string
	Genre    string
	Rating   book.Rating
	Comments string
}

func (in BookInput) draft() book.Draft {
	return book.Draft{
		Title:    in.Title,
		Author:   in.Author,
		Genre:    in.Genre,
		Rating:   in.Rating,
		Comments: in.Comments,
	}
}

// startOperation 为用例创建Span
func startOperation(ctx context.Context, op string, id int64) (context.Context, trace.Span) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "book."+op)
	if id != 0 {
		span.SetAttributes(attribute.Int64("book.id", id))
	}
	return ctx, span
}

// finishOperation 记录Span状态和操作指标
func finishOperation(span trace.Span, op string, err error) {
	defer span.End()

	switch {
	case err == nil:
		metrics.RecordBookOperation(op, "success")
	case errors.Is(err, book.ErrBookNotFound):
		metrics.RecordBookOperation(op, "not_found")
	default:
		metrics.RecordBookOperation(op, "failure")
		tracing.RecordError(span, err)
	}
}

// publish 发布图书事件
// 发布失败只记录日志,不影响请求结果
func publish(ctx context.Context, publisher book.EventPublisher, log *zap.Logger, ev book.Event) {
	if err := publisher.PublishBookEvent(ctx, ev); err != nil {
		log.Warn("发布图书事件失败",
			zap.String("type", string(ev.Type)),
			zap.Int64("book_id", ev.BookID),
			zap.Error(err),
		)
	}
}
