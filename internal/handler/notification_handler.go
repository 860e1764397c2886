package handler

import (
	"strconv"

	"campus-social/internal/service"
	"campus-social/pkg/response"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 站内通知
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler 创建NotificationHandler实例
func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// List 最近的通知
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rows, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "获取通知失败")
		return
	}
	list := make([]*response.NotificationInfo, 0, len(rows))
	for _, n := range rows {
		list = append(list, response.FilterNotificationInfo(n))
	}
	response.Success(c, gin.H{"notifications": list})
}

// UnreadCount 未读通知数量
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "获取未读数量失败")
		return
	}
	response.Success(c, gin.H{"unread_count": count})
}

// MarkAllRead 标记全部通知为已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	updated, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "标记已读失败")
		return
	}
	response.SuccessWithMessage(c, "已全部标记为已读", gin.H{"updated": updated})
}

// MarkRead 标记单条通知为已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid notification id")
		return
	}
	if err := h.service.MarkAsRead(c.Request.Context(), userID, uint(id)); err != nil {
		respondError(c, err, "标记已读失败")
		return
	}
	response.SuccessWithMessage(c, "已标记为已读", gin.H{"id": id})
}
