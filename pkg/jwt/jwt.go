package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

// Manager 会话Token管理器
// 设计说明：
// 1. 身份认证由外部身份提供方完成，回调时携带其签发的会话Token
// 2. 本服务只负责校验Token（签名、过期时间、签发方），不保存密码
// 3. GenerateToken仅供本地开发（CLI token子命令）和测试使用
type Manager struct {
	secret string
	issuer string
	expire time.Duration
}

// NewManager 创建Token管理器
func NewManager(secret, issuer string, expire time.Duration) *Manager {
	return &Manager{
		secret: secret,
		issuer: issuer,
		expire: expire,
	}
}

// Claims 会话Claims
// Subject(sub)即外部身份提供方的用户ID
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID 返回外部用户ID
func (c *Claims) UserID() string {
	return c.Subject
}

// GenerateToken 签发会话Token
func (m *Manager) GenerateToken(userID, email, name string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID不能为空")
	}

	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", apperrors.Wrap(err, "签发会话Token失败")
	}
	return signed, nil
}

// ParseToken 解析并验证Token
// 校验内容：签名算法、签名、exp/nbf、iss
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// Expire Token有效期（用于设置Cookie和黑名单TTL）
func (m *Manager) Expire() time.Duration {
	return m.expire
}

// RemainingTTL Token剩余有效时间
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if ttl := c.ExpiresAt.Sub(now); ttl > 0 {
		return ttl
	}
	return 0
}
