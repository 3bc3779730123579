package book

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

var errStore = errors.New("store unavailable")

// stubRepo 用于领域服务测试的仓储桩
type stubRepo struct {
	books     []*Book
	failOn    string
	insertErr error
	replaced  *Book
}

func (r *stubRepo) fail(op string) error {
	if r.failOn == op {
		return errStore
	}
	return nil
}

func (r *stubRepo) List(context.Context) ([]*Book, error) {
	if err := r.fail("list"); err != nil {
		return nil, err
	}
	return r.books, nil
}

func (r *stubRepo) MaxID(context.Context) (int64, error) {
	if err := r.fail("max"); err != nil {
		return 0, err
	}
	var max int64
	for _, b := range r.books {
		if b.ID > max {
			max = b.ID
		}
	}
	return max, nil
}

func (r *stubRepo) Insert(_ context.Context, b *Book) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.books = append(r.books, b)
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, id int64) (*Book, error) {
	if err := r.fail("find"); err != nil {
		return nil, err
	}
	for _, b := range r.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, ErrBookNotFound
}

func (r *stubRepo) Replace(_ context.Context, nb *Book) (*Book, error) {
	if err := r.fail("replace"); err != nil {
		return nil, err
	}
	for i, b := range r.books {
		if b.ID == nb.ID {
			r.books[i] = nb
			r.replaced = nb
			return b, nil
		}
	}
	return nil, ErrBookNotFound
}

func (r *stubRepo) Delete(_ context.Context, id int64) (*Book, error) {
	if err := r.fail("delete"); err != nil {
		return nil, err
	}
	for i, b := range r.books {
		if b.ID == id {
			r.books = append(r.books[:i], r.books[i+1:]...)
			return b, nil
		}
	}
	return nil, ErrBookNotFound
}

func TestService_AddBook_AssignsSequentialIDs(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.AddBook(ctx, Draft{Title: "A", Author: "X"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID, "空集合第一本ID为1")

	second, err := svc.AddBook(ctx, Draft{Title: "B", Author: "Y"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	// 删除最大ID后,下一个ID复用
	_, err = svc.DeleteBook(ctx, 2)
	require.NoError(t, err)
	third, err := svc.AddBook(ctx, Draft{Title: "C", Author: "Z"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), third.ID)

	// 中间有空洞时仍取最大值+1
	repo.books = []*Book{{ID: 1}, {ID: 7}}
	next, err := svc.AddBook(ctx, Draft{Title: "D", Author: "W"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), next.ID)
}

func TestService_AddBook_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("读取最大ID失败", func(t *testing.T) {
		svc := NewService(&stubRepo{failOn: "max"})
		_, err := svc.AddBook(ctx, Draft{Title: "A"})
		assertAppError(t, err, http.StatusInternalServerError, MsgAddFailed)
	})

	t.Run("ID冲突按500处理", func(t *testing.T) {
		svc := NewService(&stubRepo{insertErr: ErrDuplicateID})
		_, err := svc.AddBook(ctx, Draft{Title: "A"})
		assertAppError(t, err, http.StatusInternalServerError, MsgAddFailed)
		assert.ErrorIs(t, err, ErrDuplicateID)
	})
}

func TestService_ListBooks(t *testing.T) {
	ctx := context.Background()

	books, err := NewService(&stubRepo{}).ListBooks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books, "空集合返回空切片")
	assert.Len(t, books, 0)

	_, err = NewService(&stubRepo{failOn: "list"}).ListBooks(ctx)
	assertAppError(t, err, http.StatusInternalServerError, MsgListFailed)
}

func TestService_GetBook(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{books: []*Book{{ID: 1, Title: "A"}}}
	svc := NewService(repo)

	b, err := svc.GetBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", b.Title)

	_, err = svc.GetBook(ctx, 99)
	assertAppError(t, err, http.StatusNotFound, "Book not found.")

	repo.failOn = "find"
	_, err = svc.GetBook(ctx, 1)
	assertAppError(t, err, http.StatusInternalServerError, MsgGetFailed)
}

func TestService_ReplaceBook(t *testing.T) {
	ctx := context.Background()
	original := &Book{ID: 1, Title: "Old", Author: "X", Genre: "Fantasy", Rating: 5, Comments: "meh"}
	repo := &stubRepo{books: []*Book{original}}
	svc := NewService(repo)

	prev, err := svc.ReplaceBook(ctx, 1, Draft{Title: "New", Author: "Y", Genre: "Drama", Rating: 8, Comments: "better"})
	require.NoError(t, err)
	assert.Same(t, original, prev, "返回替换前的文档")

	require.NotNil(t, repo.replaced)
	assert.Equal(t, int64(1), repo.replaced.ID)
	assert.Equal(t, "New", repo.replaced.Title)
	assert.Empty(t, repo.replaced.Genre, "替换后genre丢失")

	_, err = svc.ReplaceBook(ctx, 42, Draft{Title: "Z"})
	assert.ErrorIs(t, err, ErrBookNotFound)

	repo.failOn = "replace"
	_, err = svc.ReplaceBook(ctx, 1, Draft{})
	assertAppError(t, err, http.StatusInternalServerError, MsgReplaceFailed)
}

func TestService_DeleteBook(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{books: []*Book{{ID: 1}, {ID: 2}}}
	svc := NewService(repo)

	deleted, err := svc.DeleteBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted.ID)

	_, err = svc.DeleteBook(ctx, 1)
	assert.ErrorIs(t, err, ErrBookNotFound, "重复删除返回404")

	repo.failOn = "delete"
	_, err = svc.DeleteBook(ctx, 2)
	assertAppError(t, err, http.StatusInternalServerError, MsgDeleteFailed)
}

func assertAppError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, status, appErr.Status)
	assert.Equal(t, msg, appErr.Message)
}
