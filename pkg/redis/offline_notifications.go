package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 离线通知相关常量
const (
	OfflineKeyPrefix = "offline:"         // 离线通知key前缀
	OfflineTTL       = 7 * 24 * time.Hour // 7天过期
	OfflineMaxItems  = 100                // 每个用户最多保存条数
)

// OfflineQueue 用户不在线时暂存的推送载荷
type OfflineQueue struct {
	client *redis.Client
}

// NewOfflineQueue 创建离线队列
func NewOfflineQueue(c *redis.Client) *OfflineQueue {
	return &OfflineQueue{client: c}
}

// OfflineKey 用户离线队列的 key
func OfflineKey(userID uint) string {
	return userKey(OfflineKeyPrefix, userID)
}

// Add 追加一条离线载荷（按时间顺序，超出上限时丢弃最旧的）
func (q *OfflineQueue) Add(ctx context.Context, userID uint, payload []byte) error {
	if q.client == nil {
		return ErrNotInitialized
	}
	key := OfflineKey(userID)

	pipe := q.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, -OfflineMaxItems, -1)
	pipe.Expire(ctx, key, OfflineTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("添加离线通知失败: %w", err)
	}
	return nil
}

// Drain 取出并清空用户的全部离线载荷
func (q *OfflineQueue) Drain(ctx context.Context, userID uint) ([][]byte, error) {
	if q.client == nil {
		return nil, ErrNotInitialized
	}
	key := OfflineKey(userID)

	pipe := q.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("获取离线通知失败: %w", err)
	}

	items := rangeCmd.Val()
	payloads := make([][]byte, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, []byte(item))
	}
	return payloads, nil
}
