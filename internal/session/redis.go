package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON document per user under "session:<id>".
// Keys carry no TTL; sessions persist until explicitly deleted.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	val, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	sess.bind(s)
	return &sess, nil
}

func (s *RedisStore) Create(ctx context.Context, userID int64) (*Session, error) {
	sess := newSession(s, userID)
	val, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session %d: %w", userID, err)
	}
	ok, err := s.client.SetNX(ctx, sessionKey(userID), val, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyExists
	}
	return sess, nil
}

func (s *RedisStore) Upsert(ctx context.Context, sess *Session) error {
	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", sess.UserID, err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.UserID), val, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
