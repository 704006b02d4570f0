// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/circleblog/internal/platform/constants"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/sec"
)

// Hash fields of a session record.
const (
	fieldUserID        = "user_id"
	fieldUsername      = "username"
	fieldRole          = "role"
	fieldCSRF          = "csrf"
	fieldCreatedAt     = "created_at"
	fieldRegeneratedAt = "regenerated_at"
	fieldExpiresAt     = "expires_at"
)

// setCSRFIfAbsent only touches live sessions; a bare HSETNX would resurrect
// an expired key without a TTL. An empty field counts as absent.
var setCSRFIfAbsent = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return false
end
local current = redis.call("HGET", KEYS[1], ARGV[1])
if current and current ~= "" then
  return current
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return ARGV[2]
`)

// RedisStore implements [Store] with one hash per session and one string per user.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore constructs a [RedisStore].
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(key string) string {
	return constants.RedisPrefixSession + key
}

func userSessionKey(userID int64) string {
	return constants.RedisPrefixUserSession + strconv.FormatInt(userID, 10)
}

// Save writes the session hash and its expiry in one MULTI/EXEC.
func (store *RedisStore) Save(context context.Context, session *Session, ttl time.Duration) error {
	redisKey := sessionKey(session.Key)

	fields := map[string]any{
		fieldUserID:        strconv.FormatInt(session.UserID, 10),
		fieldUsername:      session.Username,
		fieldRole:          string(session.Role),
		fieldCreatedAt:     session.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldRegeneratedAt: session.LastRegeneratedAt.UTC().Format(time.RFC3339Nano),
		fieldExpiresAt:     session.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}

	// An empty token stays unset so SetCSRFIfAbsent can still fill it
	if session.CSRFToken != "" {
		fields[fieldCSRF] = session.CSRFToken
	}

	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, redisKey, fields)
		pipe.Expire(context, redisKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_save_failed: %w", err)
	}
	return nil
}

// Find loads a session hash. A missing key yields (nil, nil); so does a corrupt
// one, which is logged and removed.
func (store *RedisStore) Find(context context.Context, key string) (*Session, error) {
	values, err := store.client.HGetAll(context, sessionKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_session_find_failed: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	session, err := decodeSession(key, values)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "session_record_corrupt",
			slog.String("session_key", key[:min(len(key), 8)]),
			slog.Any("error", err),
		)
		if delErr := store.client.Del(context, sessionKey(key)).Err(); delErr != nil {
			return nil, fmt.Errorf("redis_session_purge_failed: %w", delErr)
		}
		return nil, nil
	}
	return session, nil
}

// Delete removes a session hash.
func (store *RedisStore) Delete(context context.Context, key string) error {
	if err := store.client.Del(context, sessionKey(key)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

// SwapUserSession uses SET ... GET so reading the old key and writing the new one is atomic.
func (store *RedisStore) SwapUserSession(context context.Context, userID int64, key string, ttl time.Duration) (string, error) {
	previous, err := store.client.SetArgs(context, userSessionKey(userID), key, redis.SetArgs{
		Get: true,
		TTL: ttl,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis_user_session_swap_failed: %w", err)
	}
	return previous, nil
}

// SetCSRFIfAbsent sets the csrf field with HSETNX semantics on a live session.
func (store *RedisStore) SetCSRFIfAbsent(context context.Context, key, token string) (string, error) {
	effective, err := setCSRFIfAbsent.Run(context, store.client, []string{sessionKey(key)}, fieldCSRF, token).Text()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis_session_csrf_failed: %w", err)
	}
	return effective, nil
}

func decodeSession(key string, values map[string]string) (*Session, error) {
	userID, err := strconv.ParseInt(values[fieldUserID], 10, 64)
	if err != nil {
		return nil, err
	}

	parse := func(field string) (time.Time, error) {
		return time.Parse(time.RFC3339Nano, values[field])
	}

	createdAt, err := parse(fieldCreatedAt)
	if err != nil {
		return nil, err
	}
	regeneratedAt, err := parse(fieldRegeneratedAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := parse(fieldExpiresAt)
	if err != nil {
		return nil, err
	}

	return &Session{
		Key:               key,
		UserID:            userID,
		Username:          values[fieldUsername],
		Role:              sec.UserRole(values[fieldRole]),
		CSRFToken:         values[fieldCSRF],
		CreatedAt:         createdAt,
		LastRegeneratedAt: regeneratedAt,
		ExpiresAt:         expiresAt,
	}, nil
}
