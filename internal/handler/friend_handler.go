package handler

import (
	"strconv"

	"campus-social/internal/service"
	"campus-social/pkg/logger"
	"campus-social/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FriendHandler 好友关系与推荐
type FriendHandler struct {
	friendships *service.FriendshipService
	suggestions *service.SuggestionService
}

// NewFriendHandler 创建FriendHandler实例
func NewFriendHandler(friendships *service.FriendshipService, suggestions *service.SuggestionService) *FriendHandler {
	return &FriendHandler{friendships: friendships, suggestions: suggestions}
}

// ListFriends 好友列表
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friends, err := h.friendships.GetFriends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "获取好友列表失败")
		return
	}
	response.Success(c, gin.H{
		"friends": friends,
		"count":   len(friends),
	})
}

// ListRequests 收到的待处理好友请求
func (h *FriendHandler) ListRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := h.friendships.GetPendingRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "获取好友请求失败")
		return
	}
	response.Success(c, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// Suggestions 好友推荐
// 存储层失败时返回空列表并标记 degraded，与真正没有推荐区分
func (h *FriendHandler) Suggestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	suggestions, err := h.suggestions.GetSuggestions(c.Request.Context(), userID, limit)
	if err != nil {
		if service.KindOf(err) != service.KindTransientStoreFailure {
			respondError(c, err, "获取好友推荐失败")
			return
		}
		logger.Warn("好友推荐降级为空列表",
			zap.String("request_id", logger.GetRequestID(c)),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		response.Success(c, gin.H{
			"suggestions": []service.SuggestionRecord{},
			"degraded":    true,
		})
		return
	}
	response.Success(c, gin.H{
		"suggestions": suggestions,
		"degraded":    false,
	})
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	type req struct {
		FriendID uint `json:"friend_id" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	friendship, err := h.friendships.SendRequest(c.Request.Context(), userID, r.FriendID)
	if err != nil {
		respondError(c, err, "发送好友请求失败")
		return
	}
	response.SuccessWithMessage(c, "好友请求已发送", gin.H{
		"friendship_id": friendship.ID,
		"status":        friendship.Status,
	})
}

// AcceptRequest 接受 user_id 发来的好友请求
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requesterID, ok := userIDParam(c)
	if !ok {
		return
	}
	friendship, err := h.friendships.AcceptRequest(c.Request.Context(), userID, requesterID)
	if err != nil {
		respondError(c, err, "接受好友请求失败")
		return
	}
	response.SuccessWithMessage(c, "已添加为好友", gin.H{
		"friendship_id": friendship.ID,
		"status":        friendship.Status,
	})
}

// DeclineRequest 拒绝 user_id 发来的好友请求
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requesterID, ok := userIDParam(c)
	if !ok {
		return
	}
	if err := h.friendships.DeclineRequest(c.Request.Context(), userID, requesterID); err != nil {
		respondError(c, err, "拒绝好友请求失败")
		return
	}
	response.SuccessWithMessage(c, "已拒绝好友请求", nil)
}
