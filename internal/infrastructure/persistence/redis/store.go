// Package redis implements the durable key-value store behind the bot:
// session records, the sliding-window rate limiter, the global leaderboard
// sorted set, daily analytics counters, and per-user update locks.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration

	// PoolTimeout is the timeout for getting a connection from the pool.
	PoolTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrKeyNotFound is returned when the requested key does not exist.
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrConnection is returned when the Redis connection fails.
	ErrConnection = errors.New("store: connection failed")

	// ErrSerialization is returned when JSON encoding or decoding fails.
	ErrSerialization = errors.New("store: serialization failed")

	// ErrKeyEmpty is returned when an empty key is provided.
	ErrKeyEmpty = errors.New("store: key cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// KEY PREFIXES
// ══════════════════════════════════════════════════════════════════════════════

// Key prefixes for namespacing Redis keys.
const (
	// PrefixSession is the prefix for per-user session records.
	PrefixSession = "session:"

	// PrefixRateLimit is the prefix for per-user rate limit windows.
	PrefixRateLimit = "ratelimit:"

	// PrefixAnalytics is the prefix for daily event counters.
	PrefixAnalytics = "analytics:"

	// PrefixLock is the prefix for per-user update locks.
	PrefixLock = "lock:"

	// KeyLeaderboard is the global points leaderboard sorted set.
	KeyLeaderboard = "leaderboard:global"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEFAULT TTLs
// ══════════════════════════════════════════════════════════════════════════════

const (
	// TTLSession expires session records after 30 days of inactivity. The
	// TTL is refreshed on every successful write.
	TTLSession = 30 * 24 * time.Hour

	// TTLAnalytics expires daily counters after 90 days.
	TTLAnalytics = 90 * 24 * time.Hour

	// TTLUpdateLock bounds how long a stuck per-user update can block
	// subsequent requests.
	TTLUpdateLock = 10 * time.Second
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Store wraps the Redis client with JSON serialization and TTL handling.
// The concrete repositories in this package share one Store.
type Store struct {
	client *redis.Client
	config Config
}

// NewStore connects to Redis and verifies the connection.
func NewStore(cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return &Store{client: client, config: cfg}, nil
}

// Client returns the underlying Redis client for advanced operations.
// Prefer the Store methods when possible.
func (s *Store) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// BASIC OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SetJSON stores a value serialized to JSON with the given TTL.
func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrKeyEmpty
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return s.client.Set(ctx, key, data, ttl).Err()
}

// GetJSON retrieves and deserializes a value by key.
// Returns ErrKeyNotFound if the key doesn't exist.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrKeyEmpty
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrKeyNotFound
		}
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return nil
}

// Delete removes keys from the store.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyEmpty
	}
	count, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Expire sets a new TTL on an existing key.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return ErrKeyEmpty
	}
	return s.client.Expire(ctx, key, ttl).Err()
}

// Incr atomically increments an integer key and returns the new value.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrKeyEmpty
	}
	return s.client.Incr(ctx, key).Result()
}

// SetNX sets a key only if it does not exist. Returns true when the key was
// set. Used for per-user update locks.
func (s *Store) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrKeyEmpty
	}
	return s.client.SetNX(ctx, key, value, ttl).Result()
}
