package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// KPICache 按工作人员和月份缓存 KPI 结果，Redis 不可用时全部降级为未命中
type KPICache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewKPICache(rdb *redis.Client, ttl time.Duration) *KPICache {
	return &KPICache{Redis: rdb, TTL: ttl}
}

func kpiCacheKey(workerID, month string) string {
	return fmt.Sprintf("kpi:worker:%s:%s", workerID, month)
}

// Get 命中时把缓存反序列化到 dest
func (c *KPICache) Get(ctx context.Context, workerID, month string, dest interface{}) (bool, error) {
	if c == nil || c.Redis == nil {
		return false, nil
	}
	data, err := c.Redis.Get(ctx, kpiCacheKey(workerID, month)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *KPICache) Set(ctx context.Context, workerID, month string, value interface{}) error {
	if c == nil || c.Redis == nil || c.TTL <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, kpiCacheKey(workerID, month), data, c.TTL).Err()
}

func (c *KPICache) Invalidate(ctx context.Context, workerID, month string) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Del(ctx, kpiCacheKey(workerID, month)).Err()
}
