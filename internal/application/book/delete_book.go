package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// DeleteBookUseCase 删除图书用例
type DeleteBookUseCase struct {
	bookService book.Service
	publisher   book.EventPublisher
	log         *zap.Logger
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, publisher book.EventPublisher, log *zap.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		publisher:   publisher,
		log:         log,
	}
}

// DeleteBookResponse 删除结果
type DeleteBookResponse struct {
	Message string `json:"message"`
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id int64, userID string) (resp *DeleteBookResponse, err error) {
	ctx, span := startOperation(ctx, "delete", id)
	defer func() { finishOperation(span, "delete", err) }()

	deleted, err := uc.bookService.DeleteBook(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.log.Info("图书已删除", zap.Int64("book_id", id), zap.String("user_id", userID))
	publish(ctx, uc.publisher, uc.log, book.NewEvent(book.EventDeleted, deleted, userID))

	return &DeleteBookResponse{Message: book.DeletedMessage(id)}, nil
}
