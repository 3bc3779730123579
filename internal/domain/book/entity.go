package book

import (
	"fmt"
	"strconv"
	"strings"
)

// Book 图书实体(唯一的聚合根)
// DDD设计说明:
// 1. ID由服务端分配(当前最大ID+1),客户端创建时不能指定
// 2. Genre在历史数据和替换后的文档上可能缺失
// 3. Rating零值表示未评分
type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Genre    string `json:"genre,omitempty"`
	Rating   Rating `json:"rating,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// Draft 创建/替换时客户端提交的内容(不含ID)
type Draft struct {
	Title    string
	Author   string
	Genre    string
	Rating   Rating
	Comments string
}

// NewBook 用草稿和分配好的ID创建图书
func NewBook(id int64, d Draft) *Book {
	return &Book{
		ID:       id,
		Title:    d.Title,
		Author:   d.Author,
		Genre:    d.Genre,
		Rating:   d.Rating,
		Comments: d.Comments,
	}
}

// Replacement 构造替换文档
// 业务规则:
// - ID始终取自路径,忽略请求体中的ID
// - 替换文档只包含 id/title/author/rating/comments,genre不会保留
func Replacement(id int64, d Draft) *Book {
	return &Book{
		ID:       id,
		Title:    d.Title,
		Author:   d.Author,
		Rating:   d.Rating,
		Comments: d.Comments,
	}
}

// NextID ID分配策略:当前最大ID+1,空集合从1开始
func NextID(maxID int64) int64 {
	if maxID < 1 {
		return 1
	}
	return maxID + 1
}

// ParseID 解析路径中的图书ID
// 只接受十进制整数(可带符号),其余一律视为ErrInvalidID
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// DeletedMessage 删除成功的提示
func DeletedMessage(id int64) string {
	return fmt.Sprintf("Book listing with ID %d deleted.", id)
}
