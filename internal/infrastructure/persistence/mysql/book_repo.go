package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/pkg/metrics"
)

const driverName = "mysql"

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 负责domain实体与GORM模型之间的转换
// 2. 主键冲突转换为ErrDuplicateID
// 3. Replace/Delete在事务内先加行锁再修改,返回修改前的记录
type bookRepository struct {
	db  *gorm.DB
	txm *TxManager
}

var _ book.Repository = (*bookRepository)(nil)

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db, txm: NewTxManager(db)}
}

// List 按ID升序返回全部图书
func (r *bookRepository) List(ctx context.Context) ([]*book.Book, error) {
	defer metrics.ObserveStoreOperation(driverName, "list", time.Now())

	var models []BookModel
	if err := dbFrom(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("查询图书列表失败: %w", err)
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// MaxID 当前最大ID,空表返回0
func (r *bookRepository) MaxID(ctx context.Context) (int64, error) {
	defer metrics.ObserveStoreOperation(driverName, "max_id", time.Now())

	var maxID int64
	err := dbFrom(ctx, r.db).Model(&BookModel{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, fmt.Errorf("查询最大ID失败: %w", err)
	}
	return maxID, nil
}

// Insert 插入图书
func (r *bookRepository) Insert(ctx context.Context, b *book.Book) error {
	defer metrics.ObserveStoreOperation(driverName, "insert", time.Now())

	if err := dbFrom(ctx, r.db).Create(toBookModel(b)).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrDuplicateID
		}
		return fmt.Errorf("插入图书失败: %w", err)
	}
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id int64) (*book.Book, error) {
	defer metrics.ObserveStoreOperation(driverName, "find", time.Now())

	var model BookModel
	err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, fmt.Errorf("查询图书失败: %w", err)
	}
	return toBookEntity(&model), nil
}

// Replace 整体替换,返回替换前的记录
// 所有列都会被覆盖(包括置空genre)
func (r *bookRepository) Replace(ctx context.Context, b *book.Book) (*book.Book, error) {
	defer metrics.ObserveStoreOperation(driverName, "replace", time.Now())

	var prev *book.Book
	err := r.txm.Transaction(ctx, func(ctx context.Context) error {
		locked, err := r.lockByID(ctx, b.ID)
		if err != nil {
			return err
		}

		err = dbFrom(ctx, r.db).Model(&BookModel{}).
			Where("id = ?", b.ID).
			Select("*").
			Updates(toBookModel(b)).Error
		if err != nil {
			return fmt.Errorf("替换图书失败: %w", err)
		}

		prev = toBookEntity(locked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

// Delete 删除图书(物理删除),返回被删除的记录
func (r *bookRepository) Delete(ctx context.Context, id int64) (*book.Book, error) {
	defer metrics.ObserveStoreOperation(driverName, "delete", time.Now())

	var deleted *book.Book
	err := r.txm.Transaction(ctx, func(ctx context.Context) error {
		locked, err := r.lockByID(ctx, id)
		if err != nil {
			return err
		}

		if err := dbFrom(ctx, r.db).Where("id = ?", id).Delete(&BookModel{}).Error; err != nil {
			return fmt.Errorf("删除图书失败: %w", err)
		}

		deleted = toBookEntity(locked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// lockByID SELECT ... FOR UPDATE,必须在事务内调用
func (r *bookRepository) lockByID(ctx context.Context, id int64) (*BookModel, error) {
	var model BookModel
	err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, fmt.Errorf("锁定图书失败: %w", err)
	}
	return &model, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.Genre,
		Rating:      b.Rating.String(),
		RatingValue: b.Rating.Value(),
		Comments:    b.Comments,
	}
}

func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:       model.ID,
		Title:    model.Title,
		Author:   model.Author,
		Genre:    model.Genre,
		Rating:   book.RestoreRating(model.RatingValue, model.Rating),
		Comments: model.Comments,
	}
}
