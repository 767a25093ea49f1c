package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 登录会话存 redis，TTL 到期自动失效。
// 额外按 email 维护一个会话 id 集合，删用户档案时好把会话全部吊销。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Session 只存身份，不存角色 —— 角色每个请求都从档案重新解析，
// 档案被删时会话立刻降级成未知角色而不是拿着旧权限。
type Session struct {
	AccountID string `json:"aid"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(id string) string          { return fmt.Sprintf("mag:sess:%s", id) }
func emailSetKey(email string) string { return fmt.Sprintf("mag:email_sessions:%s", email) }

func (s *Store) Create(ctx context.Context, id, accountID, email string) error {
	now := time.Now()
	b, _ := json.Marshal(Session{
		AccountID: accountID,
		Email:     email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, emailSetKey(email), id)
	pipe.Expire(ctx, emailSetKey(email), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	sess, _ := s.Get(ctx, id) // 取不到也继续删
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if sess != nil {
		pipe.SRem(ctx, emailSetKey(sess.Email), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForEmail 删除该邮箱名下的全部会话。
func (s *Store) RevokeAllForEmail(ctx context.Context, email string) error {
	ids, err := s.rdb.SMembers(ctx, emailSetKey(email)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, emailSetKey(email))
	_, err = pipe.Exec(ctx)
	return err
}
