package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/internal/infrastructure/apiclient"
	"github.com/xiebiao/reading-tracker/internal/interface/http/dto"
	"github.com/xiebiao/reading-tracker/internal/interface/http/middleware"
	"github.com/xiebiao/reading-tracker/internal/interface/http/view"
	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

// BookAPI 页面调用的图书API
// 实现:infrastructure/apiclient.Client
type BookAPI interface {
	ListBooks(ctx context.Context) ([]*book.Book, error)
	GetBook(ctx context.Context, id int64) (*book.Book, error)
	CreateBook(ctx context.Context, d book.Draft) (*book.Book, error)
	ReplaceBook(ctx context.Context, id int64, d book.Draft) error
	DeleteBook(ctx context.Context, id int64) error
}

// PageHandler 服务端渲染页面
// 设计说明:
// 1. 页面不直接访问存储,所有读写都经由图书API
// 2. 表单提交成功后303重定向(PRG),失败时带着已填写内容重新渲染并显示提示
// 3. 列表页上游失败时按degradeToEmpty决定显示空列表还是502错误页
type PageHandler struct {
	api            BookAPI
	degradeToEmpty bool
	log            *zap.Logger
}

// NewPageHandler 创建页面处理器
func NewPageHandler(api BookAPI, degradeToEmpty bool, log *zap.Logger) *PageHandler {
	return &PageHandler{
		api:            api,
		degradeToEmpty: degradeToEmpty,
		log:            log,
	}
}

// Home GET /
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, view.HomeTemplate, view.HomePage{Layout: layoutFor(c, "")})
}

// ListBooks GET /books
// 未登录时显示登录提示,不请求API
func (h *PageHandler) ListBooks(c *gin.Context) {
	layout := layoutFor(c, "All Books")
	if !layout.SignedIn {
		c.HTML(http.StatusOK, view.BooksTemplate, view.BooksPage{Layout: layout})
		return
	}

	books, err := h.api.ListBooks(h.apiContext(c))
	if err != nil {
		if !h.degradeToEmpty {
			h.log.Error("获取图书列表失败", zap.Error(err))
			h.renderError(c, http.StatusBadGateway, view.MsgUpstreamError)
			return
		}
		h.log.Warn("获取图书列表失败,显示空列表", zap.Error(err))
		books = []*book.Book{}
	}

	c.HTML(http.StatusOK, view.BooksTemplate, view.BooksPage{Layout: layout, Books: books})
}

// ShowBook GET /books/:id(需要登录)
func (h *PageHandler) ShowBook(c *gin.Context) {
	id, err := book.ParseID(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusBadRequest, book.ErrInvalidID.Message)
		return
	}

	b, err := h.api.GetBook(h.apiContext(c), id)
	if err != nil {
		status := pageStatus(err)
		if status == http.StatusNotFound {
			h.renderError(c, status, book.ErrBookNotFound.Message)
			return
		}
		h.log.Error("获取图书失败", zap.Int64("book_id", id), zap.Error(err))
		h.renderError(c, status, view.MsgLoadFailed)
		return
	}

	c.HTML(http.StatusOK, view.BookTemplate, view.BookPage{Layout: layoutFor(c, b.Title), Book: b})
}

// NewBookForm GET /books/add
func (h *PageHandler) NewBookForm(c *gin.Context) {
	c.HTML(http.StatusOK, view.AddTemplate, view.NewAddPage(layoutFor(c, ""), dto.BookForm{}, ""))
}

// CreateBook POST /books/add(需要登录)
func (h *PageHandler) CreateBook(c *gin.Context) {
	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderAddFailure(c, form, err)
		return
	}

	draft, err := form.Draft()
	if err != nil {
		h.renderAddFailure(c, form, err)
		return
	}

	if _, err := h.api.CreateBook(h.apiContext(c), draft); err != nil {
		h.renderAddFailure(c, form, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/books")
}

func (h *PageHandler) renderAddFailure(c *gin.Context, form dto.BookForm, err error) {
	h.log.Warn("添加图书失败", zap.Error(err))
	c.HTML(http.StatusUnprocessableEntity, view.AddTemplate, view.NewAddPage(layoutFor(c, ""), form, view.MsgAddFailed))
}

// EditBookForm GET /books/:id/edit(需要登录)
// 加载失败时显示错误横幅,不显示表单
func (h *PageHandler) EditBookForm(c *gin.Context) {
	layout := layoutFor(c, "")
	id, err := book.ParseID(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusBadRequest, view.EditTemplate, view.NewEditPage(layout, 0, dto.BookForm{}, false, view.MsgLoadFailed))
		return
	}

	b, err := h.api.GetBook(h.apiContext(c), id)
	if err != nil {
		h.log.Warn("加载待编辑图书失败", zap.Int64("book_id", id), zap.Error(err))
		c.HTML(pageStatus(err), view.EditTemplate, view.NewEditPage(layout, id, dto.BookForm{}, false, view.MsgLoadFailed))
		return
	}

	c.HTML(http.StatusOK, view.EditTemplate, view.NewEditPage(layout, id, dto.FormFromBook(b), true, ""))
}

// UpdateBook POST /books/:id/edit(需要登录)
// 成功后回到详情页;失败时停留在表单并显示错误横幅
func (h *PageHandler) UpdateBook(c *gin.Context) {
	layout := layoutFor(c, "")
	id, err := book.ParseID(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusBadRequest, book.ErrInvalidID.Message)
		return
	}

	var form dto.BookForm
	if err := c.ShouldBind(&form); err == nil {
		var draft book.Draft
		if draft, err = form.Draft(); err == nil {
			err = h.api.ReplaceBook(h.apiContext(c), id, draft)
		}
		if err == nil {
			c.Redirect(http.StatusSeeOther, bookURL(id))
			return
		}
		h.log.Warn("更新图书失败", zap.Int64("book_id", id), zap.Error(err))
	}

	c.HTML(http.StatusUnprocessableEntity, view.EditTemplate, view.NewEditPage(layout, id, form, true, view.MsgUpdateFailed))
}

// DeleteBook POST /books/:id/delete(需要登录)
// 成功后回到列表页;失败时在详情页显示错误
func (h *PageHandler) DeleteBook(c *gin.Context) {
	id, err := book.ParseID(c.Param("id"))
	if err != nil {
		h.renderError(c, http.StatusBadRequest, book.ErrInvalidID.Message)
		return
	}

	ctx := h.apiContext(c)
	err = h.api.DeleteBook(ctx, id)
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/books")
		return
	}
	h.log.Warn("删除图书失败", zap.Int64("book_id", id), zap.Error(err))

	page := view.BookPage{Layout: layoutFor(c, ""), Error: view.MsgDeleteFailed}
	if b, getErr := h.api.GetBook(ctx, id); getErr == nil {
		page.Book = b
		page.Title = b.Title
	}
	c.HTML(pageStatus(err), view.BookTemplate, page)
}

func (h *PageHandler) renderError(c *gin.Context, status int, msg string) {
	c.HTML(status, view.ErrorTemplate, view.ErrorPage{
		Layout:  layoutFor(c, http.StatusText(status)),
		Status:  status,
		Message: msg,
	})
}

// apiContext 把请求ID带到API请求上
// 页面对API的调用按发起页面请求的客户端计入限流
func (h *PageHandler) apiContext(c *gin.Context) context.Context {
	ctx := apiclient.WithRequestID(c.Request.Context(), c.GetString("request_id"))
	return apiclient.WithClientIP(ctx, c.ClientIP())
}

// layoutFor 当前请求的公共头部数据
func layoutFor(c *gin.Context, title string) view.Layout {
	return view.Layout{
		Title:     title,
		SignedIn:  middleware.IsSignedIn(c),
		UserName:  middleware.GetUserName(c),
		SignInURL: middleware.SignInURL(c.Request.URL.Path),
	}
}

// pageStatus API错误 → 页面状态码
// 404原样返回,其余客户端错误按422处理,服务端错误统一为502
func pageStatus(err error) int {
	status := apperrors.GetAppError(err).Status
	switch {
	case status == http.StatusNotFound:
		return http.StatusNotFound
	case status >= 400 && status < 500:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func bookURL(id int64) string {
	return "/books/" + strconv.FormatInt(id, 10)
}
