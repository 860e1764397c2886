package handler

import (
	"campus-social/internal/service"
	"campus-social/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service     *service.UserService
	friendships *service.FriendshipService
}

func NewUserHandler(s *service.UserService, friendships *service.FriendshipService) *UserHandler {
	return &UserHandler{service: s, friendships: friendships}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username  string `json:"username" binding:"required"`
		Email     string `json:"email" binding:"required"`
		Password  string `json:"password" binding:"required"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), r.Username, r.Email, r.Password, r.FirstName, r.LastName)
	if err != nil {
		respondError(c, err, "注册失败")
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.RegisterResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), r.UsernameOrEmail, r.Password)
	if err != nil {
		respondError(c, err, "登录失败")
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// GetProfile 获取当前用户资料（需要JWT认证）
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "获取用户资料失败")
		return
	}
	response.SuccessWithMessage(c, "获取用户资料成功", response.FilterUserInfo(user))
}

// UpdateProfile 更新个人资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	type req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Bio       string `json:"bio"`
		Location  string `json:"location"`
		Interests string `json:"interests"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Location:  r.Location,
		Interests: r.Interests,
	})
	if err != nil {
		respondError(c, err, "更新个人资料失败")
		return
	}
	response.SuccessWithMessage(c, "个人资料已更新", response.FilterUserInfo(user))
}

// GetUserProfile 查看指定用户的资料页
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}
	view, err := h.friendships.Profile(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err, "获取用户资料失败")
		return
	}
	response.Success(c, gin.H{
		"user":           response.FilterUserInfo(view.User),
		"friends":        view.Friends,
		"friend_count":   view.FriendCount,
		"relation":       view.Relation,
		"is_own_profile": view.IsOwnProfile,
	})
}

// Search 搜索用户
func (h *UserHandler) Search(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	users, err := h.service.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "搜索用户失败")
		return
	}
	response.Success(c, gin.H{
		"users": response.FilterUserList(users),
		"count": len(users),
	})
}

// UpdateAcademic 设置学籍信息
func (h *UserHandler) UpdateAcademic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	type req struct {
		StudentCode string `json:"student_code"`
		Class       string `json:"class"`
		Faculty     string `json:"faculty"`
		Course      string `json:"course"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateAcademicProfile(c.Request.Context(), userID, service.AcademicProfile{
		StudentCode: r.StudentCode,
		Class:       r.Class,
		Faculty:     r.Faculty,
		Course:      r.Course,
	})
	if err != nil {
		respondError(c, err, "更新学籍信息失败")
		return
	}
	response.SuccessWithMessage(c, "学籍信息已更新", response.FilterUserInfo(user))
}

// Relation 当前用户与目标用户的关系
func (h *UserHandler) Relation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}
	status, err := h.friendships.RelationStatus(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err, "获取关系状态失败")
		return
	}
	response.Success(c, gin.H{"user_id": targetID, "status": status})
}

// Mutual 与目标用户的共同好友数
func (h *UserHandler) Mutual(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := userIDParam(c)
	if !ok {
		return
	}
	count, err := h.friendships.MutualFriendCount(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err, "获取共同好友失败")
		return
	}
	response.Success(c, gin.H{"user_id": targetID, "mutual_friends_count": count})
}
