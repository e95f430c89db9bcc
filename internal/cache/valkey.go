package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/models"

	"github.com/redis/go-redis/v9"
)

const popularKeysSet = "popular:keys"

type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

func (c Config) Enabled() bool {
	return c.Addr != ""
}

// ValkeyClient caches per-event sales stats and popularity rankings.
// Works against Valkey or Redis.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

func NewValkeyClient(ctx context.Context, cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return newValkeyClient(rdb, time.Duration(cfg.TTLSec)*time.Second), nil
}

func newValkeyClient(rdb *redis.Client, ttl time.Duration) *ValkeyClient {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ValkeyClient{client: rdb, ttl: ttl}
}

func statsKey(eventID int64) string {
	return fmt.Sprintf("stats:event:%d", eventID)
}

func popularKey(topN int) string {
	return fmt.Sprintf("popular:top:%d", topN)
}

func (v *ValkeyClient) GetEventStats(ctx context.Context, eventID int64) (*models.EventStats, bool, error) {
	var stats models.EventStats
	ok, err := v.getJSON(ctx, statsKey(eventID), &stats)
	if !ok || err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (v *ValkeyClient) SetEventStats(ctx context.Context, stats *models.EventStats) error {
	return v.setJSON(ctx, statsKey(stats.EventID), stats)
}

func (v *ValkeyClient) GetPopular(ctx context.Context, topN int) ([]models.PopularEvent, bool, error) {
	var events []models.PopularEvent
	ok, err := v.getJSON(ctx, popularKey(topN), &events)
	if !ok || err != nil {
		return nil, false, err
	}
	return events, true, nil
}

func (v *ValkeyClient) SetPopular(ctx context.Context, topN int, events []models.PopularEvent) error {
	key := popularKey(topN)
	if err := v.setJSON(ctx, key, events); err != nil {
		return err
	}
	return v.client.SAdd(ctx, popularKeysSet, key).Err()
}

// InvalidateEvent drops the event's stats and every cached ranking, since a
// single sale can reorder them.
func (v *ValkeyClient) InvalidateEvent(ctx context.Context, eventID int64) error {
	keys, err := v.client.SMembers(ctx, popularKeysSet).Result()
	if err != nil {
		return fmt.Errorf("list popular keys: %w", err)
	}
	keys = append(keys, statsKey(eventID), popularKeysSet)

	if err := v.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate event %d: %w", eventID, err)
	}
	return nil
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}

func (v *ValkeyClient) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := v.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache lookup error: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("invalid cache entry %s: %w", key, err)
	}
	return true, nil
}

func (v *ValkeyClient) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return v.client.Set(ctx, key, raw, v.ttl).Err()
}
