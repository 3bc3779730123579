package book

import (
	"context"
	"errors"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 封装ID分配策略和替换规则
// 2. 存储错误统一转换为带操作提示的500错误,ErrBookNotFound原样返回
// 3. 任何失败都不重试
type Service interface {
	// ListBooks 查询全部图书,集合为空时返回空切片(非nil)
	ListBooks(ctx context.Context) ([]*Book, error)

	// AddBook 分配ID(最大ID+1)并插入
	// 并发创建时由唯一索引兜底,落败方返回500
	AddBook(ctx context.Context, d Draft) (*Book, error)

	// GetBook 根据ID获取图书
	GetBook(ctx context.Context, id int64) (*Book, error)

	// ReplaceBook 整体替换,返回替换前的文档
	ReplaceBook(ctx context.Context, id int64, d Draft) (*Book, error)

	// DeleteBook 删除图书,返回被删除的文档
	DeleteBook(ctx context.Context, id int64) (*Book, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, MsgListFailed)
	}
	if books == nil {
		books = []*Book{}
	}
	return books, nil
}

func (s *service) AddBook(ctx context.Context, d Draft) (*Book, error) {
	// 1. 读取当前最大ID
	maxID, err := s.repo.MaxID(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, MsgAddFailed)
	}

	// 2. 分配ID并插入
	// 读最大值与插入之间不是原子的,ID冲突(ErrDuplicateID)同样按500处理
	b := NewBook(NextID(maxID), d)
	if err := s.repo.Insert(ctx, b); err != nil {
		return nil, apperrors.Wrap(err, MsgAddFailed)
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id int64) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, MsgGetFailed)
	}
	return b, nil
}

func (s *service) ReplaceBook(ctx context.Context, id int64, d Draft) (*Book, error) {
	prev, err := s.repo.Replace(ctx, Replacement(id, d))
	if err != nil {
		return nil, storeError(err, MsgReplaceFailed)
	}
	return prev, nil
}

func (s *service) DeleteBook(ctx context.Context, id int64) (*Book, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, storeError(err, MsgDeleteFailed)
	}
	return deleted, nil
}

// storeError 未找到原样返回,其余包装为500
func storeError(err error, msg string) error {
	if errors.Is(err, ErrBookNotFound) {
		return ErrBookNotFound
	}
	return apperrors.Wrap(err, msg)
}
