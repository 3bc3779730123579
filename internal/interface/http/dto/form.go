package dto

import (
	"strings"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
)

// BookForm 添加/编辑页面提交的表单
// Rating为输入框中的裸数字(1-10),提交时转换为 "<n>/10 ⭐",留空表示未评分
type BookForm struct {
	Title    string `form:"title"`
	Author   string `form:"author"`
	Genre    string `form:"genre"`
	Rating   string `form:"rating"`
	Comments string `form:"comments"`
}

// FormFromBook 编辑页回显,评分去掉"/10 ⭐"后缀
func FormFromBook(b *book.Book) BookForm {
	return BookForm{
		Title:    b.Title,
		Author:   b.Author,
		Genre:    b.Genre,
		Rating:   b.Rating.InputValue(),
		Comments: b.Comments,
	}
}

// Draft 表单 → 草稿
// 评分不是1-10的整数时返回ErrInvalidRating
func (f BookForm) Draft() (book.Draft, error) {
	rating, err := book.ParseRating(f.Rating)
	if err != nil {
		return book.Draft{}, err
	}
	return book.Draft{
		Title:    strings.TrimSpace(f.Title),
		Author:   strings.TrimSpace(f.Author),
		Genre:    strings.TrimSpace(f.Genre),
		Rating:   rating,
		Comments: strings.TrimSpace(f.Comments),
	}, nil
}
