package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/reading-tracker/pkg/errors"
)

const revokedKeyPrefix = "revoked:"

// SessionStore 会话吊销列表
// 设计说明：
// 1. 会话Token由外部身份提供方签发，本身无状态，登出时写入吊销列表
// 2. Key为Token的SHA-256摘要，不在Redis中保存原始Token
// 3. TTL等于Token剩余有效期，过期后自动清理
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Revoke 吊销Token，ttl<=0时不记录(Token已过期)
func (s *SessionStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(token), "1", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "吊销会话失败")
	}
	return nil
}

// IsRevoked 检查Token是否已被吊销
func (s *SessionStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查会话状态失败")
	}
	return exists > 0, nil
}

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}
