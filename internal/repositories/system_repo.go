package repositories

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const uptimeKey = "system:uptime"

// SystemRepository 进程级引导标记
type SystemRepository struct {
	rdb *redis.Client
}

func NewSystemRepository(rdb *redis.Client) *SystemRepository {
	return &SystemRepository{rdb: rdb}
}

// EnsureUptimeMarker 冷启动时写入一次站点启动时间（epoch ms）
// SETNX 保证只有最早的一次启动会写入，重复调用安全
func (r *SystemRepository) EnsureUptimeMarker(ctx context.Context) (int64, error) {
	now := time.Now().UnixMilli()
	if err := r.rdb.SetNX(ctx, uptimeKey, now, 0).Err(); err != nil {
		return 0, err
	}
	return r.rdb.Get(ctx, uptimeKey).Int64()
}
