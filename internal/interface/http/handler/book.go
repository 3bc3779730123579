package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/reading-tracker/internal/application/book"
	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/internal/interface/http/dto"
	"github.com/xiebiao/reading-tracker/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
	"github.com/xiebiao/reading-tracker/pkg/response"
)

// BookHandler 图书资源API处理器
type BookHandler struct {
	addBookUseCase     *appbook.AddBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
	getBookUseCase     *appbook.GetBookUseCase
	replaceBookUseCase *appbook.ReplaceBookUseCase
	deleteBookUseCase  *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBookUseCase *appbook.AddBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	replaceBookUseCase *appbook.ReplaceBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		addBookUseCase:     addBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		getBookUseCase:     getBookUseCase,
		replaceBookUseCase: replaceBookUseCase,
		deleteBookUseCase:  deleteBookUseCase,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  返回集合中的全部图书(存储顺序)
// @Tags         图书
// @Produce      json
// @Success      200 {array}  dto.BookResponse
// @Failure      500 {object} response.ErrorBody "Failed to retrieve books."
// @Router       /api/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.listBooksUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponses(books))
}

// AddBook 添加图书
// @Summary      添加图书
// @Description  ID由服务端分配(当前最大ID+1,空集合为1),请求体中的id被忽略
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} dto.BookResponse
// @Failure      400 {object} response.ErrorBody "Invalid request body. / Invalid rating."
// @Failure      500 {object} response.ErrorBody "Failed to add book."
// @Router       /api/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	// 1. 参数绑定与验证
	req, ok := bindBookRequest(c)
	if !ok {
		return
	}
	if !req.HasRequiredFields() {
		response.Error(c, apperrors.ErrBadRequest)
		return
	}

	// 2. 调用应用层用例
	created, err := h.addBookUseCase.Execute(c.Request.Context(), appbook.AddBookRequest{
		BookInput: toBookInput(req),
		UserID:    middleware.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 返回插入后的文档
	response.Created(c, dto.ToBookResponse(created))
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} dto.BookResponse
// @Failure      400 {object} response.ErrorBody "Invalid book ID."
// @Failure      404 {object} response.ErrorBody "Book not found."
// @Failure      500 {object} response.ErrorBody "Failed to retrieve book."
// @Router       /api/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := book.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(b))
}

// ReplaceBook 整体替换图书
// @Summary      替换图书
// @Description  以 {id, title, author, rating, comments} 整体替换文档,genre不会保留;返回替换前的文档
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id      path int           true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} dto.BookResponse "替换前的文档"
// @Failure      400 {object} response.ErrorBody "Invalid book ID."
// @Failure      404 {object} response.ErrorBody "Book not found."
// @Failure      500 {object} response.ErrorBody "Failed to update book."
// @Router       /api/books/{id} [put]
func (h *BookHandler) ReplaceBook(c *gin.Context) {
	id, err := book.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	// 不校验必填字段:ID不存在时无论请求体如何都返回404
	req, ok := bindBookRequest(c)
	if !ok {
		return
	}

	prev, err := h.replaceBookUseCase.Execute(c.Request.Context(), appbook.ReplaceBookRequest{
		BookInput: toBookInput(req),
		ID:        id,
		UserID:    middleware.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(prev))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.MessageBody
// @Failure      400 {object} response.ErrorBody "Invalid book ID."
// @Failure      404 {object} response.ErrorBody "Book not found."
// @Failure      500 {object} response.ErrorBody "Failed to delete book listing."
// @Router       /api/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := book.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.deleteBookUseCase.Execute(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, resp.Message)
}

// bindBookRequest 绑定请求体
// 评分非法返回 Invalid rating.,其余绑定错误(包括不是JSON对象)返回 Invalid request body.
func bindBookRequest(c *gin.Context) (*dto.BookRequest, bool) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, book.ErrInvalidRating) {
			response.Error(c, book.ErrInvalidRating)
		} else {
			response.Error(c, apperrors.ErrBadRequest)
		}
		return nil, false
	}
	return &req, true
}

func toBookInput(req *dto.BookRequest) appbook.BookInput {
	return appbook.BookInput{
		Title:    req.Title,
		Author:   req.Author,
		Genre:    req.Genre,
		Rating:   req.Rating,
		Comments: req.Comments,
	}
}
