// Package view 服务端渲染页面的模板与页面数据
//
// 模板通过embed打包进二进制,由gin.Engine.SetHTMLTemplate加载,
// Handler使用 c.HTML(status, view.BooksTemplate, data) 渲染。
package view

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/internal/interface/http/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

// 模板名(即文件名)
const (
	HomeTemplate   = "home.html"
	BooksTemplate  = "books.html"
	BookTemplate   = "book.html"
	AddTemplate    = "add.html"
	EditTemplate   = "edit.html"
	SignInTemplate = "signin.html"
	ErrorTemplate  = "error.html"
)

// 页面提示文案
const (
	MsgEmptyList     = "No books available at the moment."
	MsgAddFailed     = "Failed to add book listing. Please try again."
	MsgUpdateFailed  = "Failed to update listing. Please try again."
	MsgLoadFailed    = "Failed to load book. Please try again."
	MsgDeleteFailed  = "Failed to delete book listing. Please try again."
	MsgInvalidToken  = "Sign in failed. The session token is invalid or expired."
	MsgSignInPrompt  = "Sign in to view your books"
	MsgUpstreamError = "Could not load books right now. Please try again later."
)

// Templates 解析全部页面模板
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}
	return tmpl, nil
}

// MustTemplates 解析失败直接panic(模板随二进制发布,失败属于编译期问题)
func MustTemplates() *template.Template {
	tmpl, err := Templates()
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Layout 所有页面共用的头部数据
type Layout struct {
	Title     string
	SignedIn  bool
	UserName  string
	SignInURL string
}

// HomePage 首页
type HomePage struct {
	Layout
}

// BooksPage 图书列表页
type BooksPage struct {
	Layout
	Books []*book.Book
}

// BookPage 图书详情页
type BookPage struct {
	Layout
	Book  *book.Book
	Error string
}

// FormState 表单页的状态
// 加载在服务端渲染前完成;提交中状态由页面脚本在提交时切换(禁用按钮并替换文案)
type FormState struct {
	SubmitLabel string
	BusyLabel   string
}

var (
	addFormState  = FormState{SubmitLabel: "Add Book", BusyLabel: "Adding book..."}
	editFormState = FormState{SubmitLabel: "Save Changes", BusyLabel: "Saving Changes..."}
)

// AddPage 添加页
type AddPage struct {
	Layout
	FormState
	Form  dto.BookForm
	Error string
}

// NewAddPage 创建添加页数据
func NewAddPage(layout Layout, form dto.BookForm, errMsg string) AddPage {
	layout.Title = "Add New Book"
	return AddPage{Layout: layout, FormState: addFormState, Form: form, Error: errMsg}
}

// EditPage 编辑页
// Loaded为false表示图书加载失败,只显示错误横幅
type EditPage struct {
	Layout
	FormState
	ID     int64
	Form   dto.BookForm
	Loaded bool
	Error  string
}

// NewEditPage 创建编辑页数据
func NewEditPage(layout Layout, id int64, form dto.BookForm, loaded bool, errMsg string) EditPage {
	layout.Title = "Edit Book"
	return EditPage{Layout: layout, FormState: editFormState, ID: id, Form: form, Loaded: loaded, Error: errMsg}
}

// SignInPage 登录页(未配置外部登录地址时使用)
type SignInPage struct {
	Layout
	Redirect string
	Error    string
}

// ErrorPage 错误页
type ErrorPage struct {
	Layout
	Status  int
	Message string
}
