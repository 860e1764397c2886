package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"campus-social/internal/model"
	"campus-social/internal/repository"
)

var errStoreDown = errors.New("connection refused")

type sentNotification struct {
	UserID    uint
	Kind      string
	RelatedID uint
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, kind, _ string, relatedID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Kind: kind, RelatedID: relatedID})
}

type recordingInvalidator struct {
	ids []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userIDs ...uint) {
	r.ids = append(r.ids, userIDs...)
}

type memCache struct {
	data map[string][]byte
	gets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func cacheKey(userID uint, limit int) string { return fmt.Sprintf("%d/%d", userID, limit) }

func (c *memCache) GetSuggestions(_ context.Context, userID uint, limit int) ([]byte, error) {
	c.gets++
	return c.data[cacheKey(userID, limit)], nil
}

func (c *memCache) SetSuggestions(_ context.Context, userID uint, limit int, data []byte, _ time.Duration) error {
	c.data[cacheKey(userID, limit)] = data
	return nil
}

func (c *memCache) InvalidateSuggestions(_ context.Context, userIDs ...uint) error {
	for _, id := range userIDs {
		for k := range c.data {
			var uid uint
			var limit int
			if _, err := fmt.Sscanf(k, "%d/%d", &uid, &limit); err == nil && uid == id {
				delete(c.data, k)
			}
		}
	}
	return nil
}

// brokenFriendships 所有操作都失败的好友关系存储
type brokenFriendships struct{}

func (brokenFriendships) Create(context.Context, *model.Friendship) error { return errStoreDown }
func (brokenFriendships) Update(context.Context, *model.Friendship) error { return errStoreDown }
func (brokenFriendships) Delete(context.Context, *model.Friendship) error { return errStoreDown }
func (brokenFriendships) GetPair(context.Context, uint, uint) (*model.Friendship, error) {
	return nil, errStoreDown
}
func (brokenFriendships) RelationsOf(context.Context, uint) ([]model.Friendship, error) {
	return nil, errStoreDown
}
func (brokenFriendships) AcceptedOf(context.Context, uint) ([]model.Friendship, error) {
	return nil, errStoreDown
}
func (brokenFriendships) AcceptedTouching(context.Context, []uint) ([]model.Friendship, error) {
	return nil, errStoreDown
}
func (brokenFriendships) IncomingPending(context.Context, uint) ([]model.Friendship, error) {
	return nil, errStoreDown
}
func (brokenFriendships) OutgoingPendingTargets(context.Context, uint) ([]uint, error) {
	return nil, errStoreDown
}

type memNotifications struct {
	rows    []*model.Notification
	failing bool
}

func (m *memNotifications) Create(_ context.Context, n *model.Notification) error {
	if m.failing {
		return errStoreDown
	}
	n.ID = uint(len(m.rows) + 1)
	n.CreatedAt = time.Now()
	m.rows = append(m.rows, n)
	return nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID uint, limit int) ([]*model.Notification, error) {
	if m.failing {
		return nil, errStoreDown
	}
	var out []*model.Notification
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memNotifications) CountUnread(_ context.Context, userID uint) (int64, error) {
	if m.failing {
		return 0, errStoreDown
	}
	var n int64
	for _, r := range m.rows {
		if r.UserID == userID && !r.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) MarkAllAsRead(_ context.Context, userID uint) (int64, error) {
	if m.failing {
		return 0, errStoreDown
	}
	var n int64
	for _, r := range m.rows {
		if r.UserID == userID && !r.IsRead {
			r.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) MarkAsRead(_ context.Context, userID, notificationID uint) (bool, error) {
	if m.failing {
		return false, errStoreDown
	}
	for _, r := range m.rows {
		if r.ID == notificationID && r.UserID == userID {
			changed := !r.IsRead
			r.IsRead = true
			return changed, nil
		}
	}
	return false, repository.ErrNotFound
}

// lateWriteNotifications 第一次计数之后立即插入一条新通知，模拟回填期间的并发写入
type lateWriteNotifications struct {
	*memNotifications
	counted bool
}

func (m *lateWriteNotifications) CountUnread(ctx context.Context, userID uint) (int64, error) {
	n, err := m.memNotifications.CountUnread(ctx, userID)
	if err == nil && !m.counted {
		m.counted = true
		_ = m.memNotifications.Create(ctx, &model.Notification{UserID: userID, Type: model.NotificationFriendRequest})
	}
	return n, err
}

type memCounter struct {
	counts map[uint]int64
}

func newMemCounter() *memCounter { return &memCounter{counts: make(map[uint]int64)} }

func (c *memCounter) Incr(_ context.Context, userID uint) error {
	if _, ok := c.counts[userID]; ok {
		c.counts[userID]++
	}
	return nil
}

func (c *memCounter) Get(_ context.Context, userID uint) (int64, error) {
	n, ok := c.counts[userID]
	if !ok {
		return 0, errors.New("missing")
	}
	return n, nil
}

func (c *memCounter) Set(_ context.Context, userID uint, count int64) error {
	c.counts[userID] = count
	return nil
}

func (c *memCounter) Delete(_ context.Context, userID uint) error {
	delete(c.counts, userID)
	return nil
}

type pushed struct {
	UserID  uint
	Payload []byte
}

type recordingPusher struct {
	items []pushed
}

func (p *recordingPusher) Push(userID uint, payload []byte) {
	p.items = append(p.items, pushed{UserID: userID, Payload: payload})
}
