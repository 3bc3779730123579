package book

import (
	"context"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 返回集合中的全部图书,不分页
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context) (books []*book.Book, err error) {
	ctx, span := startOperation(ctx, "list", 0)
	defer func() { finishOperation(span, "list", err) }()

	return uc.bookService.ListBooks(ctx)
}
