// Package apiclient 页面渲染调用图书API的HTTP客户端
//
// 页面不直接访问存储,而是经由配置的公开地址(view.base_url)调用/api/books,
// 与浏览器看到的是同一个API。每次调用都是新请求(Cache-Control: no-store),
// 并受熔断器保护:API持续不可用时快速失败,不再逐个等待超时。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/domain/book"
	"github.com/xiebiao/reading-tracker/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
	"github.com/xiebiao/reading-tracker/pkg/metrics"
)

const (
	breakerName = "book-api"
	booksPath   = "/api/books"

	// RequestIDHeader 透传请求ID,便于把页面请求和API请求的日志串起来
	RequestIDHeader = "X-Request-ID"

	// ForwardedForHeader 透传页面请求的客户端IP
	// API按客户端IP限流,只有来自server.trusted_proxies的请求才会采信该头
	ForwardedForHeader = "X-Forwarded-For"
)

// ErrUnavailable API不可达(网络错误、熔断、响应无法解析)
var ErrUnavailable = apperrors.New(http.StatusBadGateway, "Book service unavailable.")

type (
	requestIDKey struct{}
	clientIPKey  struct{}
)

// WithRequestID 把请求ID放入context,发出的请求会带上该ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithClientIP 把页面请求的客户端IP放入context,发出的请求以X-Forwarded-For携带
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// Client 图书API客户端(并发安全)
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	log     *zap.Logger
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层http.Client(测试时使用httptest.Server的客户端)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBreakerConfig 覆盖默认熔断配置
func WithBreakerConfig(cfg circuitbreaker.Config) Option {
	return func(c *Client) { c.breaker = newBreaker(cfg, c.log) }
}

// New 创建客户端
// timeout为单次请求超时;默认熔断策略:连续5次失败后熔断30秒
func New(baseURL string, timeout time.Duration, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	c.breaker = newBreaker(circuitbreaker.Config{Timeout: 30 * time.Second}, log)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(cfg circuitbreaker.Config, log *zap.Logger) *circuitbreaker.CircuitBreaker {
	// 4xx是调用方的问题,不计入熔断统计
	cfg.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		var appErr *apperrors.AppError
		return errors.As(err, &appErr) && appErr.IsClientError()
	}
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn("熔断器状态变化",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	}
	return circuitbreaker.New(breakerName, cfg)
}

// BreakerState 熔断器当前状态
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// bookPayload 创建/替换时发送的请求体
type bookPayload struct {
	ID       int64       `json:"id,omitempty"`
	Title    string      `json:"title"`
	Author   string      `json:"author"`
	Genre    string      `json:"genre,omitempty"`
	Rating   book.Rating `json:"rating,omitempty"`
	Comments string      `json:"comments"`
}

func payloadOf(id int64, d book.Draft) bookPayload {
	return bookPayload{
		ID:       id,
		Title:    d.Title,
		Author:   d.Author,
		Genre:    d.Genre,
		Rating:   d.Rating,
		Comments: d.Comments,
	}
}

// ListBooks GET /api/books
func (c *Client) ListBooks(ctx context.Context) ([]*book.Book, error) {
	var books []*book.Book
	if err := c.do(ctx, http.MethodGet, booksPath, nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []*book.Book{}
	}
	return books, nil
}

// GetBook GET /api/books/{id}
func (c *Client) GetBook(ctx context.Context, id int64) (*book.Book, error) {
	var b book.Book
	if err := c.do(ctx, http.MethodGet, bookPath(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook POST /api/books,返回创建后的图书
func (c *Client) CreateBook(ctx context.Context, d book.Draft) (*book.Book, error) {
	var b book.Book
	if err := c.do(ctx, http.MethodPost, booksPath, payloadOf(0, d), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ReplaceBook PUT /api/books/{id}
// API返回的是替换前的文档,页面不需要,这里丢弃
func (c *Client) ReplaceBook(ctx context.Context, id int64, d book.Draft) error {
	return c.do(ctx, http.MethodPut, bookPath(id), payloadOf(id, d), nil)
}

// DeleteBook DELETE /api/books/{id}
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, bookPath(id), nil, nil)
}

func bookPath(id int64) string {
	return booksPath + "/" + strconv.FormatInt(id, 10)
}

// do 在熔断保护下发送请求
// 非2xx响应转换为AppError(状态码和{error}消息),网络错误转换为ErrUnavailable
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.breaker.Execute(func() error {
		return c.roundTrip(ctx, method, path, body, out)
	})

	result := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = "rejected"
		err = &apperrors.AppError{Status: ErrUnavailable.Status, Message: ErrUnavailable.Message, Err: err}
	case err != nil:
		result = "failure"
	}
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{
		"name":   breakerName,
		"result": result,
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("请求体序列化失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok && ip != "" {
		req.Header.Set(ForwardedForHeader, ip)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return unavailable(fmt.Errorf("响应解析失败: %w", err))
	}
	return nil
}

// statusError 读取{error: "..."}作为错误消息
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &apperrors.AppError{
		Status:  resp.StatusCode,
		Message: body.Error,
		Err:     fmt.Errorf("图书API返回%d", resp.StatusCode),
	}
}

func unavailable(err error) error {
	return &apperrors.AppError{Status: ErrUnavailable.Status, Message: ErrUnavailable.Message, Err: err}
}
