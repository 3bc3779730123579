// Package memory 提供基于内存的图书仓储(本地开发、测试)
package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// bookRepository 内存图书仓储
// 设计说明:
// 1. 互斥锁保护,并发安全
// 2. order记录插入顺序,List按插入顺序返回(与文档数据库的自然顺序一致)
// 3. Insert检查ID唯一性,等价于存储层的唯一索引
// 4. 存取时复制实体,调用方修改返回值不会影响存储内容
type bookRepository struct {
	mu    sync.RWMutex
	books map[int64]*book.Book
	order []int64
}

var _ book.Repository = (*bookRepository)(nil)

// NewBookRepository 创建内存仓储
func NewBookRepository() book.Repository {
	return &bookRepository{
		books: make(map[int64]*book.Book),
	}
}

func (r *bookRepository) List(ctx context.Context) ([]*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]*book.Book, 0, len(r.order))
	for _, id := range r.order {
		books = append(books, clone(r.books[id]))
	}
	return books, nil
}

func (r *bookRepository) MaxID(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var max int64
	for id := range r.books {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (r *bookRepository) Insert(ctx context.Context, b *book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.books[b.ID]; exists {
		return book.ErrDuplicateID
	}
	r.books[b.ID] = clone(b)
	r.order = append(r.order, b.ID)
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return clone(b), nil
}

func (r *bookRepository) Replace(ctx context.Context, b *book.Book) (*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.books[b.ID]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	r.books[b.ID] = clone(b)
	return prev, nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) (*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	delete(r.books, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return b, nil
}

func clone(b *book.Book) *book.Book {
	c := *b
	return &c
}
