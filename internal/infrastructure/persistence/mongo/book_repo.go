package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/pkg/metrics"
	"github.com/xiebiao/reading-tracker/pkg/tracing"
)

const (
	driverName = "mongo"
	tracerName = "persistence/mongo"

	fieldID = "id"
)

// bookDocument 集合中的文档结构
// 设计说明：
// 1. rating保存展示字符串("9/10 ⭐")，兼容已有读取方
// 2. ratingValue保存数值，历史文档没有该字段时从rating解析
// 3. _id由MongoDB生成，不参与业务
type bookDocument struct {
	ID          int64  `bson:"id"`
	Title       string `bson:"title"`
	Author      string `bson:"author"`
	Genre       string `bson:"genre,omitempty"`
	Rating      string `bson:"rating,omitempty"`
	RatingValue int    `bson:"ratingValue,omitempty"`
	Comments    string `bson:"comments,omitempty"`
}

// bookRepository 图书仓储实现(MongoDB)
type bookRepository struct {
	coll *mongo.Collection
}

var _ book.Repository = (*bookRepository)(nil)

// NewBookRepository 创建图书仓储
func NewBookRepository(g *Gateway) book.Repository {
	return &bookRepository{coll: g.Collection()}
}

// List 查询全部文档，按存储的自然顺序返回
func (r *bookRepository) List(ctx context.Context) (books []*book.Book, err error) {
	ctx, done := r.observe(ctx, "list")
	defer func() { done(err) }()

	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("查询图书列表失败: %w", err)
	}

	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("读取图书列表失败: %w", err)
	}

	books = make([]*book.Book, 0, len(docs))
	for i := range docs {
		books = append(books, toEntity(&docs[i]))
	}
	return books, nil
}

// MaxID 当前最大ID，空集合返回0
func (r *bookRepository) MaxID(ctx context.Context) (maxID int64, err error) {
	ctx, done := r.observe(ctx, "max_id")
	defer func() { done(err) }()

	opts := options.FindOne().
		SetSort(bson.D{{Key: fieldID, Value: -1}}).
		SetProjection(bson.D{{Key: fieldID, Value: 1}})

	var doc bookDocument
	err = r.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("查询最大ID失败: %w", err)
	}
	return doc.ID, nil
}

// Insert 插入文档，ID冲突(唯一索引)返回ErrDuplicateID
func (r *bookRepository) Insert(ctx context.Context, b *book.Book) (err error) {
	ctx, done := r.observe(ctx, "insert")
	defer func() { done(err) }()

	if _, err := r.coll.InsertOne(ctx, toDocument(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return book.ErrDuplicateID
		}
		return fmt.Errorf("插入图书失败: %w", err)
	}
	return nil
}

// FindByID 根据ID查找
func (r *bookRepository) FindByID(ctx context.Context, id int64) (b *book.Book, err error) {
	ctx, done := r.observe(ctx, "find")
	defer func() { done(err) }()

	var doc bookDocument
	err = r.coll.FindOne(ctx, byID(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, book.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询图书失败: %w", err)
	}
	return toEntity(&doc), nil
}

// Replace 整体替换，返回替换前的文档
func (r *bookRepository) Replace(ctx context.Context, b *book.Book) (prev *book.Book, err error) {
	ctx, done := r.observe(ctx, "replace")
	defer func() { done(err) }()

	opts := options.FindOneAndReplace().SetReturnDocument(options.Before)

	var doc bookDocument
	err = r.coll.FindOneAndReplace(ctx, byID(b.ID), toDocument(b), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, book.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("替换图书失败: %w", err)
	}
	return toEntity(&doc), nil
}

// Delete 查找并删除，存在性判断与删除是同一次调用
func (r *bookRepository) Delete(ctx context.Context, id int64) (deleted *book.Book, err error) {
	ctx, done := r.observe(ctx, "delete")
	defer func() { done(err) }()

	var doc bookDocument
	err = r.coll.FindOneAndDelete(ctx, byID(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, book.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("删除图书失败: %w", err)
	}
	return toEntity(&doc), nil
}

// observe 为存储调用创建Span并记录耗时
func (r *bookRepository) observe(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "mongo."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.mongodb.collection", r.coll.Name()),
		),
	)
	return ctx, func(err error) {
		if err != nil && !errors.Is(err, book.ErrBookNotFound) {
			tracing.RecordError(span, err)
		}
		span.End()
		metrics.ObserveStoreOperation(driverName, op, start)
	}
}

func byID(id int64) bson.D {
	return bson.D{{Key: fieldID, Value: id}}
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toDocument(b *book.Book) *bookDocument {
	return &bookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.Genre,
		Rating:      b.Rating.String(),
		RatingValue: b.Rating.Value(),
		Comments:    b.Comments,
	}
}

func toEntity(doc *bookDocument) *book.Book {
	return &book.Book{
		ID:       doc.ID,
		Title:    doc.Title,
		Author:   doc.Author,
		Genre:    doc.Genre,
		Rating:   book.RestoreRating(doc.RatingValue, doc.Rating),
		Comments: doc.Comments,
	}
}
