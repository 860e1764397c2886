package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 推荐缓存：每个用户一个 hash，field 为请求条数，整体设置 TTL
const SuggestionKeyPrefix = "suggest:"

// SuggestionCache 基于Redis的好友推荐缓存
type SuggestionCache struct {
	client *redis.Client
}

// NewSuggestionCache 创建推荐缓存，client 为 nil 时所有操作返回 ErrNotInitialized
func NewSuggestionCache(c *redis.Client) *SuggestionCache {
	return &SuggestionCache{client: c}
}

// SuggestionKey 用户推荐缓存的 key
func SuggestionKey(userID uint) string {
	return userKey(SuggestionKeyPrefix, userID)
}

// GetSuggestions 读取缓存，未命中返回 nil, nil
func (c *SuggestionCache) GetSuggestions(ctx context.Context, userID uint, limit int) ([]byte, error) {
	if c.client == nil {
		return nil, ErrNotInitialized
	}
	data, err := c.client.HGet(ctx, SuggestionKey(userID), strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取推荐缓存失败: %w", err)
	}
	return data, nil
}

// SetSuggestions 写入缓存
func (c *SuggestionCache) SetSuggestions(ctx context.Context, userID uint, limit int, data []byte, ttl time.Duration) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	key := SuggestionKey(userID)

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(limit), data)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入推荐缓存失败: %w", err)
	}
	return nil
}

// InvalidateSuggestions 删除用户的全部推荐缓存
func (c *SuggestionCache) InvalidateSuggestions(ctx context.Context, userIDs ...uint) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, SuggestionKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("清除推荐缓存失败: %w", err)
	}
	return nil
}
