package handler

import (
	"github.com/gin-gonic/gin"
)

// Routes /api/v1 下的业务路由
type Routes struct {
	Auth          gin.HandlerFunc
	Users         *UserHandler
	Friends       *FriendHandler
	Notifications *NotificationHandler
}

// Register 绑定路由
func (r *Routes) Register(v1 *gin.RouterGroup) {
	users := v1.Group("/users")
	{
		// 公开接口（无需认证）
		users.POST("/register", r.Users.Register)
		users.POST("/login", r.Users.Login)

		// 需要认证的接口
		authUsers := users.Group("")
		authUsers.Use(r.Auth)
		{
			authUsers.GET("/profile", r.Users.GetProfile)
			authUsers.PUT("/profile", r.Users.UpdateProfile)
			authUsers.GET("/search", r.Users.Search)
			authUsers.PUT("/academic", r.Users.UpdateAcademic)
			authUsers.GET("/:user_id", r.Users.GetUserProfile)
			authUsers.GET("/:user_id/relation", r.Users.Relation)
			authUsers.GET("/:user_id/mutual", r.Users.Mutual)
		}
	}

	// 好友路由（需要认证）
	friends := v1.Group("/friends")
	friends.Use(r.Auth)
	{
		friends.GET("", r.Friends.ListFriends)                               // 好友列表
		friends.GET("/requests", r.Friends.ListRequests)                     // 收到的请求
		friends.GET("/suggestions", r.Friends.Suggestions)                   // 好友推荐
		friends.POST("/requests", r.Friends.SendRequest)                     // 发送请求
		friends.POST("/requests/:user_id/accept", r.Friends.AcceptRequest)   // 接受请求
		friends.POST("/requests/:user_id/decline", r.Friends.DeclineRequest) // 拒绝请求
	}

	// 通知路由（需要认证）
	notifications := v1.Group("/notifications")
	notifications.Use(r.Auth)
	{
		notifications.GET("", r.Notifications.List)
		notifications.GET("/unread/count", r.Notifications.UnreadCount)
		notifications.PUT("/read", r.Notifications.MarkAllRead)
		notifications.PUT("/:id/read", r.Notifications.MarkRead)
	}
}
