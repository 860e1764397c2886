package websocket

import (
	"context"
	"sync"
	"time"

	"campus-social/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 代表一个WebSocket连接的用户
// UserID: 用户ID
// Conn: WebSocket连接
// Send: 发送消息的通道

type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient 创建客户端，Send 缓冲 256 条
func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn, Send: make(chan []byte, 256)}
}

// OfflineStore 离线推送暂存
type OfflineStore interface {
	Add(ctx context.Context, userID uint, payload []byte) error
	Drain(ctx context.Context, userID uint) ([][]byte, error)
}

// Manager 管理所有在线用户的WebSocket连接
// 支持并发安全；用户不在线时写入离线存储，上线后补推

type Manager struct {
	clients map[uint]*Client // 在线用户，每个用户保留最新的一个连接
	lock    sync.RWMutex
	offline OfflineStore
}

// NewManager 创建连接管理器，offline 可为 nil（不在线时直接丢弃）
func NewManager(offline OfflineStore) *Manager {
	return &Manager{
		clients: make(map[uint]*Client),
		offline: offline,
	}
}

// AddClient 添加新连接，同一用户的旧连接被替换并关闭
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	if old, ok := m.clients[client.UserID]; ok && old != client {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	m.lock.Unlock()

	// 推送离线期间的通知
	go m.pushOffline(client)
}

// RemoveClient 移除连接；只有仍是当前连接时才移除
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if c, ok := m.clients[client.UserID]; ok && c == client {
		close(c.Send)
		delete(m.clients, client.UserID)
	}
}

// Push 推送给指定用户
// 若用户不在线则存储到离线队列
func (m *Manager) Push(userID uint, payload []byte) {
	m.lock.RLock()
	client, ok := m.clients[userID]
	if ok {
		// 持有读锁发送，避免与 RemoveClient 的 close 竞争
		select {
		case client.Send <- payload:
		default:
			logger.Warn("推送通道已满，丢弃通知", zap.Uint("user_id", userID))
		}
	}
	m.lock.RUnlock()

	if !ok {
		m.storeOffline(userID, payload)
	}
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// OnlineCount 在线连接数
func (m *Manager) OnlineCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

// CloseAll 关闭全部连接（服务停止时调用）
func (m *Manager) CloseAll() {
	m.lock.Lock()
	defer m.lock.Unlock()
	for id, c := range m.clients {
		close(c.Send)
		delete(m.clients, id)
	}
}

// pushOffline 推送离线通知给刚上线的用户
func (m *Manager) pushOffline(client *Client) {
	if m.offline == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payloads, err := m.offline.Drain(ctx, client.UserID)
	if err != nil {
		logger.Debug("获取离线通知失败", zap.Uint("user_id", client.UserID), zap.Error(err))
		return
	}
	for _, p := range payloads {
		m.Push(client.UserID, p)
	}
}

// storeOffline 存储离线通知
func (m *Manager) storeOffline(userID uint, payload []byte) {
	if m.offline == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.offline.Add(ctx, userID, payload); err != nil {
		logger.Debug("存储离线通知失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}
