package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"campus-social/config"
	"campus-social/pkg/jwt"
	"campus-social/pkg/logger"
	"campus-social/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// ReadAllFunc 客户端通过长连接标记全部通知已读
type ReadAllFunc func(ctx context.Context, userID uint)

// Handler 通知推送长连接
type Handler struct {
	jwt       *jwt.JWTService
	cfg       config.WebSocketConfig
	manager   *Manager
	onReadAll ReadAllFunc
}

// NewHandler 创建长连接处理器，onReadAll 可为 nil
func NewHandler(jwtService *jwt.JWTService, cfg config.WebSocketConfig, manager *Manager, onReadAll ReadAllFunc) *Handler {
	return &Handler{jwt: jwtService, cfg: cfg, manager: manager, onReadAll: onReadAll}
}

// clientMessage 客户端上行消息
type clientMessage struct {
	Type string `json:"type"`
}

// Serve Gin路由处理函数
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Unauthorized(c, "token无效")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	defer conn.Close()

	client := NewClient(userID, conn)
	h.manager.AddClient(client)
	defer h.manager.RemoveClient(client)

	logger.Debug("WebSocket连接建立", zap.Uint("user_id", userID))

	go h.writeLoop(client)
	h.readLoop(client)
}

// writeLoop 写协程 + 定时发送ping心跳；Send 关闭时退出
func (h *Handler) writeLoop(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readLoop 读协程（接收心跳/客户端消息）。若超时未收到任何读事件则断开
func (h *Handler) readLoop(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "heartbeat":
			h.manager.Push(client.UserID, []byte(`{"type":"pong"}`))
		case "read_all":
			if h.onReadAll != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				h.onReadAll(ctx, client.UserID)
				cancel()
			}
		}
	}
}
