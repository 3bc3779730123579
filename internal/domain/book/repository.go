package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(mongo/mysql/memory)
// 2. 未找到统一返回ErrBookNotFound
// 3. Insert遇到ID冲突返回ErrDuplicateID,由存储层唯一索引保证
type Repository interface {
	// List 返回全部图书(存储顺序)
	List(ctx context.Context) ([]*Book, error)

	// MaxID 当前最大ID,集合为空时返回0
	MaxID(ctx context.Context) (int64, error)

	// Insert 插入图书(ID已分配)
	Insert(ctx context.Context, b *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id int64) (*Book, error)

	// Replace 整体替换,返回替换前的文档
	Replace(ctx context.Context, b *Book) (*Book, error)

	// Delete 原子地查找并删除,返回被删除的文档
	Delete(ctx context.Context, id int64) (*Book, error)
}
