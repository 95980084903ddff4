package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/wricardo/mcp-training/game2048/game/service"
)

const (
	defaultRedisPrefix  = "game2048:session:"
	defaultRedisTimeout = 3 * time.Second
	// Index score for sessions without a TTL (2100-01-01)
	noExpiryScore = 4102444800
)

// RedisPersistence implements SessionPersistence on Redis.
// Each session is a JSON value; a sorted set indexes IDs by expiry time.
type RedisPersistence struct {
	client        *backend.Client
	configManager service.ConfigManager
	prefix        string
	ttl           time.Duration
	timeout       time.Duration
	now           func() time.Time
}

// RedisOption configures a RedisPersistence
type RedisOption func(*RedisPersistence)

// WithTTL sets the expiration for sessions. Every save extends it.
func WithTTL(ttl time.Duration) RedisOption {
	return func(rp *RedisPersistence) {
		rp.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions
func WithPrefix(prefix string) RedisOption {
	return func(rp *RedisPersistence) {
		rp.prefix = prefix
	}
}

// WithTimeout bounds each Redis round trip
func WithTimeout(timeout time.Duration) RedisOption {
	return func(rp *RedisPersistence) {
		rp.timeout = timeout
	}
}

// NewRedisPersistence connects to Redis and verifies the connection
func NewRedisPersistence(address, password string, db int, configManager service.ConfigManager, opts ...RedisOption) (*RedisPersistence, error) {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	rp := NewRedisPersistenceFromClient(client, configManager, opts...)

	ctx, cancel := rp.context()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", address, err)
	}

	return rp, nil
}

// NewRedisPersistenceFromClient wraps an existing client
func NewRedisPersistenceFromClient(client *backend.Client, configManager service.ConfigManager, opts ...RedisOption) *RedisPersistence {
	rp := &RedisPersistence{
		client:        client,
		configManager: configManager,
		prefix:        defaultRedisPrefix,
		timeout:       defaultRedisTimeout,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(rp)
	}

	return rp
}

func (rp *RedisPersistence) key(id string) string {
	return rp.prefix + id
}

func (rp *RedisPersistence) indexKey() string {
	return rp.prefix + "index"
}

func (rp *RedisPersistence) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rp.timeout)
}

// Save stores the session JSON and refreshes its index entry
func (rp *RedisPersistence) Save(session *service.Session) error {
	data, err := encodeSession(session, rp.configManager)
	if err != nil {
		return err
	}

	ctx, cancel := rp.context()
	defer cancel()

	score := float64(noExpiryScore)
	if rp.ttl > 0 {
		score = float64(rp.now().Add(rp.ttl).Unix())
	}

	pipe := rp.client.TxPipeline()
	pipe.Set(ctx, rp.key(session.ID), data, rp.ttl)
	pipe.ZAdd(ctx, rp.indexKey(), backend.Z{
		Score:  score,
		Member: session.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}

	return nil
}

// Load retrieves a session from Redis
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	if !validSessionID(id) {
		return nil, ErrInvalidSessionID
	}

	ctx, cancel := rp.context()
	defer cancel()

	val, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	return decodeSession(val, rp.configManager)
}

// Delete removes the session and its index entry
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := rp.context()
	defer cancel()

	pipe := rp.client.TxPipeline()
	del := pipe.Del(ctx, rp.key(id))
	pipe.ZRem(ctx, rp.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if del.Val() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// ListAll returns live session IDs, pruning expired index entries first
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := rp.context()
	defer cancel()

	now := fmt.Sprintf("%d", rp.now().Unix())
	if err := rp.client.ZRemRangeByScore(ctx, rp.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	ids, err := rp.client.ZRange(ctx, rp.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return ids, nil
}

// Exists checks if a session key is present
func (rp *RedisPersistence) Exists(id string) bool {
	if !validSessionID(id) {
		return false
	}

	ctx, cancel := rp.context()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}

// Close closes the Redis client
func (rp *RedisPersistence) Close() error {
	return rp.client.Close()
}
