package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// RawCache stores raw upstream payloads by key. With a zero TTL entries
// never expire and a cached season is reused until someone clears it.
type RawCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Name() string
}

// FileCache keeps one file per key under a directory. Files older than
// maxAge read as misses; zero keeps them forever.
type FileCache struct {
	dir    string
	maxAge time.Duration
}

func NewFileCache(dir string, maxAge time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileCache{dir: dir, maxAge: maxAge}, nil
}

func (c *FileCache) Name() string { return "file" }

func (c *FileCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.maxAge > 0 {
		info, err := os.Stat(c.path(key))
		if err == nil && time.Since(info.ModTime()) > c.maxAge {
			return nil, ErrCacheMiss
		}
	}
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrCacheMiss
	}
	return data, nil
}

// Set replaces the whole file. A crash mid-write leaves the old entry, or
// no entry, never a torn one.
func (c *FileCache) Set(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("failed to replace cache entry: %w", err)
	}
	return nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key))
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, key)
}

// RedisCache stores payloads in Redis under a key prefix. A zero ttl keeps
// entries until evicted.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// DialRedis parses url and checks the server answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Name() string { return "redis" }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Cache keys, one per upstream payload.
func BattingCacheKey(year int) string  { return fmt.Sprintf("batting_stats_%d.json", year) }
func PitchingCacheKey(year int) string { return fmt.Sprintf("pitching_stats_%d.json", year) }
func ExpectedCacheKey(year int) string { return fmt.Sprintf("statcast_xwoba_%d.csv", year) }
func SpeedCacheKey(year int) string    { return fmt.Sprintf("sprint_speed_%d.csv", year) }
func RegisterCacheKey(part string) string {
	return fmt.Sprintf("chadwick_register_%s.csv", part)
}
func SteamerCacheKey(target int, stats string) string {
	return fmt.Sprintf("steamer_%s_%d.json", stats, target)
}
