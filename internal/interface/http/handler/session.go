package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
	"github.com/xiebiao/reading-tracker/internal/interface/http/middleware"
	"github.com/xiebiao/reading-tracker/internal/interface/http/view"
	"github.com/xiebiao/reading-tracker/pkg/jwt"
)

const (
	callbackPath    = "/sign-in/callback"
	defaultRedirect = "/books"
)

// SessionHandler 登录/登出
// 设计说明:
// 1. 登录由外部身份提供方完成,配置了auth.sign_in_url时直接跳转过去
// 2. 身份提供方回调 /sign-in/callback?token=...,校验通过后写入HttpOnly Cookie
// 3. 登出时把Token加入撤销列表并清除Cookie
type SessionHandler struct {
	jwtManager  *jwt.Manager
	revocations middleware.RevocationStore
	cfg         config.AuthConfig
	baseURL     string
	log         *zap.Logger
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(jwtManager *jwt.Manager, revocations middleware.RevocationStore, cfg config.AuthConfig, baseURL string, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		jwtManager:  jwtManager,
		revocations: revocations,
		cfg:         cfg,
		baseURL:     strings.TrimRight(baseURL, "/"),
		log:         log,
	}
}

// SignIn GET /sign-in
func (h *SessionHandler) SignIn(c *gin.Context) {
	redirect := safeRedirect(c.Query("redirect"))
	if middleware.IsSignedIn(c) {
		c.Redirect(http.StatusSeeOther, redirect)
		return
	}

	if h.cfg.SignInURL != "" {
		c.Redirect(http.StatusSeeOther, h.externalSignInURL(redirect))
		return
	}

	c.HTML(http.StatusOK, view.SignInTemplate, view.SignInPage{
		Layout:   view.Layout{Title: "Sign In", SignInURL: middleware.SignInPath},
		Redirect: redirect,
	})
}

// Callback GET /sign-in/callback?token=...&redirect=...
func (h *SessionHandler) Callback(c *gin.Context) {
	redirect := safeRedirect(c.Query("redirect"))
	token := strings.TrimSpace(c.Query("token"))

	claims, err := h.jwtManager.ParseToken(token)
	if err != nil {
		h.log.Info("登录回调Token无效", zap.Error(err))
		c.HTML(http.StatusUnauthorized, view.SignInTemplate, view.SignInPage{
			Layout:   view.Layout{Title: "Sign In", SignInURL: middleware.SignInPath},
			Redirect: redirect,
			Error:    view.MsgInvalidToken,
		})
		return
	}

	maxAge := int(claims.RemainingTTL(time.Now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", "", h.cfg.SecureCookie, true)

	h.log.Info("用户已登录", zap.String("user_id", claims.UserID()))
	c.Redirect(http.StatusSeeOther, redirect)
}

// SignOut POST /sign-out
// 撤销失败只记录日志,Cookie仍会被清除
func (h *SessionHandler) SignOut(c *gin.Context) {
	if token := middleware.GetSessionToken(c); token != "" {
		var ttl time.Duration
		if claims := middleware.GetClaims(c); claims != nil {
			ttl = claims.RemainingTTL(time.Now())
		}
		if err := h.revocations.Revoke(c.Request.Context(), token, ttl); err != nil {
			h.log.Warn("撤销会话失败", zap.Error(err))
		}
		h.log.Info("用户已登出", zap.String("user_id", middleware.GetUserID(c)))
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.SecureCookie, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// externalSignInURL 外部登录地址,附带回调地址redirect_url
func (h *SessionHandler) externalSignInURL(redirect string) string {
	callback := h.baseURL + callbackPath + "?" + url.Values{"redirect": {redirect}}.Encode()

	u, err := url.Parse(h.cfg.SignInURL)
	if err != nil {
		return h.cfg.SignInURL
	}
	q := u.Query()
	q.Set("redirect_url", callback)
	u.RawQuery = q.Encode()
	return u.String()
}

// safeRedirect 只接受站内相对路径,防止开放重定向
func safeRedirect(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return defaultRedirect
	}
	return raw
}
