package banstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/googuteam/scorepp/internal/cache"
	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
)

// defaultSetKey is the Redis set holding banned beatmap ids.
const defaultSetKey = "beatmaps:banned"

// redisStore keeps banned beatmap ids in a Redis set. SADD gives the
// idempotent insert the orchestrator relies on: concurrent duplicate
// inserts collapse into one member with no conflict to handle.
type redisStore struct {
	client *redis.Client
	setKey string
	logger observability.Logger
}

// newRedisStore creates a Redis-backed Store.
func newRedisStore(cfg *config.BanStoreConfig, logger observability.Logger) (Store, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return nil, fmt.Errorf("redis ban store requires a redis url")
	}

	client, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	setKey := defaultSetKey
	if cfg.Redis.KeyPrefix != "" {
		setKey = cfg.Redis.KeyPrefix + defaultSetKey
	}

	logger.Info("redis ban store initialized",
		observability.String("url", cfg.Redis.URL),
		observability.String("setKey", setKey))

	return &redisStore{client: client, setKey: setKey, logger: logger}, nil
}

func (s *redisStore) Exists(ctx context.Context, beatmapID int64) (bool, error) {
	return s.client.SIsMember(ctx, s.setKey, strconv.FormatInt(beatmapID, 10)).Result()
}

func (s *redisStore) Insert(ctx context.Context, beatmapID int64) error {
	return s.client.SAdd(ctx, s.setKey, strconv.FormatInt(beatmapID, 10)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
