package book

import (
	"context"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// GetBookUseCase 图书详情用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 根据ID查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id int64) (b *book.Book, err error) {
	ctx, span := startOperation(ctx, "get", id)
	defer func() { finishOperation(span, "get", err) }()

	return uc.bookService.GetBook(ctx, id)
}
