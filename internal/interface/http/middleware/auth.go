package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
	"github.com/xiebiao/reading-tracker/pkg/jwt"
)

// Context中的键
const (
	ctxUserID   = "user_id"
	ctxUserName = "user_name"
	ctxToken    = "session_token"
	ctxClaims   = "session_claims"
)

// SignInPath 登录入口
const SignInPath = "/sign-in"

// RevocationStore 已登出会话的存储
// 实现:infrastructure/persistence/redis.SessionStore、NopRevocationStore
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// NopRevocationStore 未启用Redis时使用,登出只清除Cookie
type NopRevocationStore struct{}

// Revoke 什么也不做
func (NopRevocationStore) Revoke(context.Context, string, time.Duration) error { return nil }

// IsRevoked 总是返回false
func (NopRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// AuthMiddleware 会话认证中间件
// 设计说明:
// 1. 身份由外部身份提供方认证,这里只校验其签发的会话Token
// 2. Token来自Cookie(页面)或 Authorization: Bearer(脚本调用)
// 3. 已登出的Token记录在RevocationStore中
// 4. Authenticate只识别身份,不拦截;RequireAuth负责把未登录访问重定向到登录页
type AuthMiddleware struct {
	jwtManager  *jwt.Manager
	revocations RevocationStore
	cookieName  string
	log         *zap.Logger
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, revocations RevocationStore, cookieName string, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:  jwtManager,
		revocations: revocations,
		cookieName:  cookieName,
		log:         log,
	}
}

// Authenticate 识别当前用户
// Token无效、过期或已登出时按未登录处理;撤销列表查询失败同样按未登录处理
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.tokenFrom(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.identify(c.Request.Context(), token)
		if err != nil {
			m.log.Debug("会话未通过认证,按未登录处理", zap.Error(err))
			c.Next()
			return
		}

		c.Set(ctxUserID, claims.UserID())
		c.Set(ctxUserName, claims.Name)
		c.Set(ctxToken, token)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// identify 校验Token并确认会话未登出
func (m *AuthMiddleware) identify(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := m.jwtManager.ParseToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revocations.IsRevoked(ctx, token)
	if err != nil {
		m.log.Warn("查询会话撤销列表失败", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

// RequireAuth 要求登录,必须放在Authenticate之后
// 未登录时重定向到登录页,登录后回到当前页面
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsSignedIn(c) {
			c.Next()
			return
		}

		// POST表单提交后回到对应的GET页面
		back := c.Request.URL.Path
		if c.Request.Method != http.MethodGet {
			back = strings.TrimSuffix(back, "/delete")
		}
		c.Redirect(http.StatusSeeOther, SignInURL(back))
		c.Abort()
	}
}

// tokenFrom 优先读Cookie,其次读Authorization头
func (m *AuthMiddleware) tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SignInURL 带回跳地址的登录链接
func SignInURL(redirect string) string {
	if redirect == "" {
		return SignInPath
	}
	return SignInPath + "?" + url.Values{"redirect": {redirect}}.Encode()
}

// =========================================
// Context辅助函数(供Handler使用)
// =========================================

// GetUserID 当前登录用户ID,未登录返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserName 当前登录用户的显示名
func GetUserName(c *gin.Context) string {
	return c.GetString(ctxUserName)
}

// GetSessionToken 当前请求携带的有效会话Token
func GetSessionToken(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// GetClaims 当前会话的Claims,未登录返回nil
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// IsSignedIn 是否已登录
func IsSignedIn(c *gin.Context) bool {
	return GetUserID(c) != ""
}
