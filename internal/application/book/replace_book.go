package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// ReplaceBookUseCase 整体替换图书用例
// 设计说明:
// 1. ID取自路径,请求体中的ID被忽略
// 2. 响应返回替换前的文档
// 3. 事件中携带替换后的文档
type ReplaceBookUseCase struct {
	bookService book.Service
	publisher   book.EventPublisher
	log         *zap.Logger
}

// NewReplaceBookUseCase 创建替换用例
func NewReplaceBookUseCase(bookService book.Service, publisher book.EventPublisher, log *zap.Logger) *ReplaceBookUseCase {
	return &ReplaceBookUseCase{
		bookService: bookService,
		publisher:   publisher,
		log:         log,
	}
}

// ReplaceBookRequest 替换请求
type ReplaceBookRequest struct {
	BookInput
	ID     int64
	UserID string
}

// Execute 执行替换,返回替换前的文档
func (uc *ReplaceBookUseCase) Execute(ctx context.Context, req ReplaceBookRequest) (prev *book.Book, err error) {
	ctx, span := startOperation(ctx, "replace", req.ID)
	defer func() { finishOperation(span, "replace", err) }()

	prev, err = uc.bookService.ReplaceBook(ctx, req.ID, req.draft())
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.publisher, uc.log, book.NewEvent(book.EventReplaced, book.Replacement(req.ID, req.draft()), req.UserID))
	return prev, nil
}
