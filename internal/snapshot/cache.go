package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hyperengineering/cdusync/internal/config"
	"github.com/hyperengineering/cdusync/internal/types"
)

// ErrNoSnapshot is returned by Cache.Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no cached snapshot")

// Cache holds the local cached snapshot: one serialized dataset under a
// well-known key.
type Cache interface {
	Load(ctx context.Context) (*types.Dataset, error)
	Save(ctx context.Context, d *types.Dataset) error
	Close() error
}

// NewCache creates the cache backend selected by cfg.
func NewCache(cfg config.SnapshotConfig) (Cache, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisCache(cfg.RedisURL, cfg.Key)
	case "file", "":
		return NewFileCache(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}

func decodeDataset(data []byte) (*types.Dataset, error) {
	d := types.NewDataset()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	d.Normalize()
	return d, nil
}

// FileCache stores the snapshot as a JSON file.
type FileCache struct {
	path string
}

// NewFileCache returns a cache writing to path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Load reads the snapshot file.
func (c *FileCache) Load(_ context.Context) (*types.Dataset, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decodeDataset(data)
}

// Save writes the snapshot through a temp file and rename so a reader never
// sees a partial document.
func (c *FileCache) Save(_ context.Context, d *types.Dataset) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Close is a no-op.
func (c *FileCache) Close() error { return nil }

// RedisCache stores the snapshot under a single Redis key.
type RedisCache struct {
	client *redis.Client
	key    string
}

// NewRedisCache connects to redisURL and verifies the connection.
func NewRedisCache(redisURL, key string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client, key), nil
}

// NewRedisCacheWithClient creates a cache from an existing Redis client.
func NewRedisCacheWithClient(client *redis.Client, key string) *RedisCache {
	if key == "" {
		key = "cdu_data"
	}
	return &RedisCache{client: client, key: key}
}

// Load reads the snapshot key.
func (c *RedisCache) Load(ctx context.Context) (*types.Dataset, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return decodeDataset(data)
}

// Save overwrites the snapshot key. The key never expires.
func (c *RedisCache) Save(ctx context.Context, d *types.Dataset) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
