package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 未读通知计数相关常量
const (
	UnreadCountKeyPrefix = "unread:"      // 未读通知计数key前缀
	UnreadCountTTL       = 24 * time.Hour // 计数过期后从数据库回填
)

// ErrCountMissing 计数不存在，需要从数据库获取
var ErrCountMissing = errors.New("未读计数不存在")

// UnreadCounter 用户未读通知计数
type UnreadCounter struct {
	client *redis.Client
}

// NewUnreadCounter 创建未读计数器
func NewUnreadCounter(c *redis.Client) *UnreadCounter {
	return &UnreadCounter{client: c}
}

// UnreadCountKey 用户未读计数的 key
func UnreadCountKey(userID uint) string {
	return userKey(UnreadCountKeyPrefix, userID)
}

// incrIfExists key 存在时自增并续期，返回新值；不存在时返回 -1
var incrIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	local n = redis.call("INCR", KEYS[1])
	redis.call("EXPIRE", KEYS[1], ARGV[1])
	return n
end
return -1
`)

// Incr 增加用户未读计数
// key 不存在时不创建，避免与数据库计数不一致
func (u *UnreadCounter) Incr(ctx context.Context, userID uint) error {
	if u.client == nil {
		return ErrNotInitialized
	}
	ttl := int64(UnreadCountTTL / time.Second)
	if err := incrIfExists.Run(ctx, u.client, []string{UnreadCountKey(userID)}, ttl).Err(); err != nil {
		return fmt.Errorf("增加未读通知计数失败: %w", err)
	}
	return nil
}

// Get 获取用户未读计数，不存在时返回 ErrCountMissing
func (u *UnreadCounter) Get(ctx context.Context, userID uint) (int64, error) {
	if u.client == nil {
		return 0, ErrNotInitialized
	}
	count, err := u.client.Get(ctx, UnreadCountKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCountMissing
	}
	if err != nil {
		return 0, fmt.Errorf("获取未读通知计数失败: %w", err)
	}
	return count, nil
}

// Set 设置用户未读计数（用于从数据库回填）
func (u *UnreadCounter) Set(ctx context.Context, userID uint, count int64) error {
	if u.client == nil {
		return ErrNotInitialized
	}
	if err := u.client.Set(ctx, UnreadCountKey(userID), count, UnreadCountTTL).Err(); err != nil {
		return fmt.Errorf("设置未读通知计数失败: %w", err)
	}
	return nil
}

// Delete 删除用户未读计数，下次读取时从数据库回填
func (u *UnreadCounter) Delete(ctx context.Context, userID uint) error {
	if u.client == nil {
		return ErrNotInitialized
	}
	if err := u.client.Del(ctx, UnreadCountKey(userID)).Err(); err != nil {
		return fmt.Errorf("删除未读通知计数失败: %w", err)
	}
	return nil
}
