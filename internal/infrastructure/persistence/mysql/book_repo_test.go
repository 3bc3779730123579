package mysql

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/persistence/repotest"
)

const testDSNEnv = "READINGTRACKER_TEST_MYSQL_DSN"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("未设置%s,跳过MySQL集成测试", testDSNEnv)
	}

	db, err := openDB(dsn, false)
	require.NoError(t, err)
	require.NoError(t, autoMigrate(db))
	require.NoError(t, db.Exec("DELETE FROM books").Error)

	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM books").Error
		_ = Close(db)
	})
	return db
}

func TestBookRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) book.Repository {
		return NewBookRepository(newTestDB(t))
	})
}

func TestTxManager_Rollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookRepository(db)
	txm := NewTxManager(db)
	ctx := context.Background()

	errAbort := errors.New("abort")
	err := txm.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Insert(ctx, &book.Book{ID: 1, Title: "t", Author: "a"}))
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound, "事务回滚后记录不存在")
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm翻译后的错误", err: gorm.ErrDuplicatedKey, want: true},
		{name: "驱动错误1062", err: fmt.Errorf("insert: %w", &driver.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}), want: true},
		{name: "其他驱动错误", err: &driver.MySQLError{Number: 1146, Message: "Table doesn't exist"}, want: false},
		{name: "普通错误", err: errors.New("connection refused"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateError(tt.err))
		})
	}
}

func TestModelMapping(t *testing.T) {
	b := &book.Book{ID: 3, Title: "Dune", Author: "Herbert", Genre: "SciFi", Rating: 9, Comments: "spice"}
	m := toBookModel(b)
	assert.Equal(t, "9/10 ⭐", m.Rating)
	assert.Equal(t, 9, m.RatingValue)
	assert.Equal(t, b, toBookEntity(m))
}
