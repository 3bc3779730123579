package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
	"github.com/xiebiao/reading-tracker/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const cookieName = "__session"

type memoryRevocations struct {
	revoked map[string]bool
	err     error
}

func (m *memoryRevocations) Revoke(_ context.Context, token string, _ time.Duration) error {
	m.revoked[token] = true
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	return m.revoked[token], m.err
}

func newAuth(t *testing.T) (*AuthMiddleware, *jwt.Manager, *memoryRevocations) {
	t.Helper()
	mgr := jwt.NewManager("test-secret", "reading-tracker", time.Hour)
	store := &memoryRevocations{revoked: map[string]bool{}}
	return NewAuthMiddleware(mgr, store, cookieName, zap.NewNop()), mgr, store
}

// whoami 返回当前识别到的用户
func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "name": GetUserName(c)})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func userOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["user_id"]
}

func TestAuthenticate(t *testing.T) {
	auth, mgr, store := newAuth(t)
	r := gin.New()
	r.Use(auth.Authenticate())
	r.GET("/whoami", whoami)

	token, err := mgr.GenerateToken("user_1", "a@example.com", "Ada")
	require.NoError(t, err)

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		assert.Equal(t, "user_1", userOf(t, serve(r, req)))
	})

	t.Run("Bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, "user_1", userOf(t, serve(r, req)))
	})

	t.Run("无Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		assert.Empty(t, userOf(t, serve(r, req)))
	})

	t.Run("签名错误", func(t *testing.T) {
		other := jwt.NewManager("other-secret", "reading-tracker", time.Hour)
		forged, err := other.GenerateToken("user_2", "", "")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: forged})
		assert.Empty(t, userOf(t, serve(r, req)))
	})

	t.Run("已登出", func(t *testing.T) {
		revokedToken, err := mgr.GenerateToken("user_3", "", "")
		require.NoError(t, err)
		require.NoError(t, store.Revoke(context.Background(), revokedToken, time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: revokedToken})
		assert.Empty(t, userOf(t, serve(r, req)))
	})

	t.Run("撤销列表不可用时按未登录处理", func(t *testing.T) {
		store.err = errors.New("redis down")
		defer func() { store.err = nil }()

		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		assert.Empty(t, userOf(t, serve(r, req)))
	})
}

func TestIdentify(t *testing.T) {
	auth, mgr, store := newAuth(t)
	ctx := context.Background()

	token, err := mgr.GenerateToken("user_1", "", "Ada")
	require.NoError(t, err)

	claims, err := auth.identify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.UserID())

	_, err = auth.identify(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	require.NoError(t, store.Revoke(ctx, token, time.Hour))
	_, err = auth.identify(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestRequireAuth(t *testing.T) {
	auth, mgr, _ := newAuth(t)
	r := gin.New()
	r.Use(auth.Authenticate())
	r.GET("/books/:id", auth.RequireAuth(), whoami)
	r.POST("/books/:id/delete", auth.RequireAuth(), whoami)

	t.Run("未登录重定向到登录页", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/books/7", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/sign-in?redirect=%2Fbooks%2F7", w.Header().Get("Location"))
	})

	t.Run("表单提交回到详情页", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/books/7/delete", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/sign-in?redirect=%2Fbooks%2F7", w.Header().Get("Location"))
	})

	t.Run("已登录放行", func(t *testing.T) {
		token, err := mgr.GenerateToken("user_1", "", "")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/books/7", nil)
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user_1", userOf(t, w))
	})
}

func TestSignInURL(t *testing.T) {
	assert.Equal(t, "/sign-in", SignInURL(""))
	assert.Equal(t, "/sign-in?redirect=%2Fbooks", SignInURL("/books"))
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36, "生成uuid作为请求ID")

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = serve(r, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader), "沿用上游请求ID")

	serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.FilterMessage("HTTP请求").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, generated, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "/missing", entries[1].ContextMap()["route"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"), "桶已空")
	assert.True(t, l.Allow("2.2.2.2"), "不同IP独立计数")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"), "一秒后补充一个令牌")

	now = now.Add(10 * time.Minute)
	l.Allow("3.3.3.3")
	assert.Len(t, l.visitors, 1, "长时间未出现的IP被清理")
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(0.001, 1)
	r := gin.New()
	r.Use(l.Middleware())
	r.GET("/api/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/api/books", nil)).Code)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests."}`, w.Body.String())
}
