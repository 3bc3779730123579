package book

import (
	"net/http"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

// 图书领域错误定义
// Message即响应体中的{error: ...}
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(http.StatusNotFound, "Book not found.")

	// ErrInvalidID 路径中的ID不是整数
	ErrInvalidID = apperrors.New(http.StatusBadRequest, "Invalid book ID.")

	// ErrInvalidRating 评分不在1-10之间
	ErrInvalidRating = apperrors.New(http.StatusBadRequest, "Invalid rating.")

	// ErrDuplicateID ID已被占用(并发创建时唯一索引冲突)
	ErrDuplicateID = apperrors.New(http.StatusConflict, "Duplicate book ID.")
)

// 各操作失败时返回给客户端的提示
const (
	MsgListFailed    = "Failed to retrieve books."
	MsgAddFailed     = "Failed to add book."
	MsgGetFailed     = "Failed to retrieve book."
	MsgReplaceFailed = "Failed to update book."
	MsgDeleteFailed  = "Failed to delete book listing."
)
