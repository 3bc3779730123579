package dto

import "github.com/xiebiao/reading-tracker/internal/domain/book"

// BookRequest 创建/替换图书的请求体
// 说明:
// - rating兼容 "9/10 ⭐"、"9" 和 9 三种写法,超出1-10返回400
// - 创建时title和author必填(HasRequiredFields);替换不校验,ID不存在时先得到404
// - 替换时请求体中的id被忽略,以路径为准;genre也不会保存
type BookRequest struct {
	ID       *int64      `json:"id,omitempty" swaggerignore:"true"`
	Title    string      `json:"title" example:"Dune"`
	Author   string      `json:"author" example:"Frank Herbert"`
	Genre    string      `json:"genre" example:"SciFi"`
	Rating   book.Rating `json:"rating" swaggertype:"string" example:"9/10 ⭐"`
	Comments string      `json:"comments" example:"The spice must flow."`
}

// HasRequiredFields 创建所需的title和author是否都已填写
func (r *BookRequest) HasRequiredFields() bool {
	return r.Title != "" && r.Author != ""
}

// BookResponse 图书响应
type BookResponse struct {
	ID       int64  `json:"id" example:"1"`
	Title    string `json:"title" example:"Dune"`
	Author   string `json:"author" example:"Frank Herbert"`
	Genre    string `json:"genre,omitempty" example:"SciFi"`
	Rating   string `json:"rating,omitempty" example:"9/10 ⭐"`
	Comments string `json:"comments,omitempty" example:"The spice must flow."`
}

// ToBookResponse 领域实体 → 响应
func ToBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		Genre:    b.Genre,
		Rating:   b.Rating.String(),
		Comments: b.Comments,
	}
}

// ToBookResponses 列表转换,空集合返回[]而不是null
func ToBookResponses(books []*book.Book) []*BookResponse {
	out := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, ToBookResponse(b))
	}
	return out
}
