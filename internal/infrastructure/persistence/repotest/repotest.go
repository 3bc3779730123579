// Package repotest 图书仓储的通用一致性测试
// memory、mongo、mysql三种实现共用同一组用例
package repotest

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// Factory 为每个子测试创建一个空仓储
type Factory func(t *testing.T) book.Repository

// Run 执行全部一致性用例
func Run(t *testing.T, newRepo Factory) {
	t.Run("空集合", func(t *testing.T) { testEmpty(t, newRepo(t)) })
	t.Run("插入与查询", func(t *testing.T) { testInsertAndFind(t, newRepo(t)) })
	t.Run("ID唯一", func(t *testing.T) { testDuplicateID(t, newRepo(t)) })
	t.Run("整体替换", func(t *testing.T) { testReplace(t, newRepo(t)) })
	t.Run("删除", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("并发创建", func(t *testing.T) { testConcurrentCreate(t, newRepo(t)) })
}

func sample(id int64) *book.Book {
	return &book.Book{
		ID:       id,
		Title:    "The Left Hand of Darkness",
		Author:   "Ursula K. Le Guin",
		Genre:    "Sci-Fi",
		Rating:   9,
		Comments: "Winter is cold.",
	}
}

func testEmpty(t *testing.T, repo book.Repository) {
	ctx := context.Background()

	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	maxID, err := repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), maxID, "空集合最大ID为0")

	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func testInsertAndFind(t *testing.T, repo book.Repository) {
	ctx := context.Background()

	first := sample(1)
	second := &book.Book{ID: 2, Title: "Piranesi", Author: "Susanna Clarke", Comments: ""}
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("FindByID结果不一致 (-want +got):\n%s", diff)
	}

	got, err = repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, got.Rating.IsSet(), "未评分的图书读回后仍为未评分")
	assert.Empty(t, got.Genre)

	books, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, []int64{1, 2}, ids(books), "按插入顺序返回")

	maxID, err := repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), maxID)
}

func testDuplicateID(t *testing.T, repo book.Repository) {
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, sample(5)))
	err := repo.Insert(ctx, sample(5))
	assert.ErrorIs(t, err, book.ErrDuplicateID)

	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func testReplace(t *testing.T, repo book.Repository) {
	ctx := context.Background()

	original := sample(3)
	require.NoError(t, repo.Insert(ctx, original))

	replacement := book.Replacement(3, book.Draft{
		Title:    "The Dispossessed",
		Author:   "Ursula K. Le Guin",
		Genre:    "ignored",
		Rating:   10,
		Comments: "Anarres",
	})

	prev, err := repo.Replace(ctx, replacement)
	require.NoError(t, err)
	if diff := cmp.Diff(original, prev); diff != "" {
		t.Errorf("Replace应返回替换前的文档 (-want +got):\n%s", diff)
	}

	got, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "The Dispossessed", got.Title)
	assert.Equal(t, book.Rating(10), got.Rating)
	assert.Empty(t, got.Genre, "替换后genre丢失")

	_, err = repo.Replace(ctx, book.Replacement(99, book.Draft{Title: "x"}))
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1, "替换不存在的ID不会插入新文档")
}

func testDelete(t *testing.T, repo book.Repository) {
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, repo.Insert(ctx, sample(id)))
	}

	deleted, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted.ID)

	_, err = repo.FindByID(ctx, 2)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	_, err = repo.Delete(ctx, 2)
	assert.ErrorIs(t, err, book.ErrBookNotFound, "重复删除返回未找到")

	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(books))
}

// testConcurrentCreate 并发创建:每个成功的创建拿到不同的ID,失败的不落库
func testConcurrentCreate(t *testing.T, repo book.Repository) {
	ctx := context.Background()
	svc := book.NewService(repo)

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := svc.AddBook(ctx, book.Draft{Title: "Concurrent", Author: "Anon"})
			if err != nil {
				return
			}
			mu.Lock()
			created = append(created, b.ID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.NotEmpty(t, created, "至少有一个创建成功")
	assertUnique(t, created)

	books, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, len(created), "集合中的文档数等于成功创建数")
	assertUnique(t, ids(books))
}

func ids(books []*book.Book) []int64 {
	out := make([]int64, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func assertUnique(t *testing.T, values []int64) {
	t.Helper()
	seen := make(map[int64]bool, len(values))
	for _, v := range values {
		assert.False(t, seen[v], "ID重复: %d", v)
		seen[v] = true
	}
}
