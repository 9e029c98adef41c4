package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/audit"
	"github.com/weiawesome/wes-io-live/pkg/response"
)

// Follow handles POST /api/v1/users/:user_id/follow.
// The authenticated user follows the target user.
func (h *Handler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)
	targetID := c.Param("user_id")

	if err := h.svc.Followers.Follow(ctx, a, targetID); err != nil {
		fail(c, err, "follow")
		return
	}
	audit.LogTarget(ctx, audit.ActionFollow, a.UserID, targetID, "user followed")
	response.Created(c, gin.H{"message": "followed successfully"})
}

// Unfollow handles DELETE /api/v1/users/:user_id/follow.
func (h *Handler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)
	targetID := c.Param("user_id")

	if err := h.svc.Followers.Unfollow(ctx, a, targetID); err != nil {
		fail(c, err, "unfollow")
		return
	}
	audit.LogTarget(ctx, audit.ActionUnfollow, a.UserID, targetID, "user unfollowed")
	c.Status(http.StatusNoContent)
}

// ListFollowing handles GET /api/v1/users/:user_id/following.
func (h *Handler) ListFollowing(c *gin.Context) {
	users, err := h.svc.Followers.Following(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err, "list following")
		return
	}
	response.Success(c, gin.H{"following": users})
}

// ListFollowers handles GET /api/v1/users/:user_id/followers.
func (h *Handler) ListFollowers(c *gin.Context) {
	users, err := h.svc.Followers.Followers(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err, "list followers")
		return
	}
	response.Success(c, gin.H{"followers": users})
}

// Block handles POST /api/v1/users/:user_id/block.
func (h *Handler) Block(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)
	targetID := c.Param("user_id")

	if err := h.svc.Followers.Block(ctx, a, targetID); err != nil {
		fail(c, err, "block")
		return
	}
	audit.LogTarget(ctx, audit.ActionBlock, a.UserID, targetID, "user blocked")
	response.Message(c, "user blocked", nil)
}

// Unblock handles DELETE /api/v1/users/:user_id/block.
func (h *Handler) Unblock(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)
	targetID := c.Param("user_id")

	if err := h.svc.Followers.Unblock(ctx, a, targetID); err != nil {
		fail(c, err, "unblock")
		return
	}
	audit.LogTarget(ctx, audit.ActionUnblock, a.UserID, targetID, "user unblocked")
	c.Status(http.StatusNoContent)
}

// ListNotifications handles GET /api/v1/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	list, err := h.svc.Notifications.List(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err, "list notifications")
		return
	}
	response.Success(c, gin.H{"notifications": list})
}

// MarkNotificationRead handles PUT /api/v1/notifications/:notification_id.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), actor(c), c.Param("notification_id")); err != nil {
		fail(c, err, "mark notification read")
		return
	}
	response.Message(c, "notification marked as read", nil)
}

// DeleteNotification handles DELETE /api/v1/notifications/:notification_id.
func (h *Handler) DeleteNotification(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)
	id := c.Param("notification_id")
	if err := h.svc.Notifications.Delete(ctx, a, id); err != nil {
		fail(c, err, "delete notification")
		return
	}
	audit.LogTarget(ctx, audit.ActionDeleteNotice, a.UserID, id, "notification deleted")
	c.Status(http.StatusNoContent)
}
