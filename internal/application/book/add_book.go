package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// AddBookUseCase 添加图书用例
// 设计说明:
// 1. ID分配由领域服务负责(最大ID+1)
// 2. 插入成功后发布book.created事件
type AddBookUseCase struct {
	bookService book.Service
	publisher   book.EventPublisher
	log         *zap.Logger
}

// NewAddBookUseCase 创建添加图书用例
func NewAddBookUseCase(bookService book.Service, publisher book.EventPublisher, log *zap.Logger) *AddBookUseCase {
	return &AddBookUseCase{
		bookService: bookService,
		publisher:   publisher,
		log:         log,
	}
}

// AddBookRequest 添加请求
type AddBookRequest struct {
	BookInput
	UserID string // 当前登录用户(可能为空)
}

// Execute 执行添加
func (uc *AddBookUseCase) Execute(ctx context.Context, req AddBookRequest) (created *book.Book, err error) {
	ctx, span := startOperation(ctx, "create", 0)
	defer func() { finishOperation(span, "create", err) }()

	created, err = uc.bookService.AddBook(ctx, req.draft())
	if err != nil {
		return nil, err
	}

	uc.log.Info("图书已添加", zap.Int64("book_id", created.ID), zap.String("user_id", req.UserID))
	publish(ctx, uc.publisher, uc.log, book.NewEvent(book.EventCreated, created, req.UserID))
	return created, nil
}
