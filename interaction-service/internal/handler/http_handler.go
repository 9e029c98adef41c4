package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/service"
	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/middleware"
	"github.com/weiawesome/wes-io-live/pkg/response"
)

// Services are the orchestrators behind the HTTP routes.
type Services struct {
	Posts         service.PostService
	Comments      service.CommentService
	Reactions     service.ReactionService
	Followers     service.FollowerService
	Notifications service.NotificationService
}

// Handler handles HTTP requests for the interaction service.
type Handler struct {
	svc            Services
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		svc:            svc,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	auth := h.authMiddleware.RequireAuth()

	api := r.Group("/api/v1")
	{
		posts := api.Group("/posts")
		{
			posts.GET("", h.ListPosts)
			posts.POST("", auth, h.CreatePost)
			posts.GET("/media/:kind", h.ListPostsWithMedia)
			posts.GET("/:post_id", h.GetPost)
			posts.PUT("/:post_id", auth, h.UpdatePost)
			posts.DELETE("/:post_id", auth, h.DeletePost)

			posts.GET("/:post_id/comments", h.ListComments)
			posts.GET("/:post_id/comments/names", h.CommentNames)
			posts.GET("/:post_id/comments/:comment_id", h.GetComment)

			posts.GET("/:post_id/reactions", h.ListReactions)
			posts.GET("/:post_id/reactions/:username", h.GetReaction)
			posts.DELETE("/:post_id/reactions", auth, h.RemoveReaction)
		}

		api.POST("/comments", auth, h.AddComment)
		api.POST("/reactions", auth, h.AddReaction)
		api.GET("/reactions/user/:username", h.ListReactionsByUsername)

		users := api.Group("/users")
		{
			users.GET("/:user_id/posts", h.ListUserPosts)
			users.GET("/:user_id/following", h.ListFollowing)
			users.GET("/:user_id/followers", h.ListFollowers)
			users.POST("/:user_id/follow", auth, h.Follow)
			users.DELETE("/:user_id/follow", auth, h.Unfollow)
			users.POST("/:user_id/block", auth, h.Block)
			users.DELETE("/:user_id/block", auth, h.Unblock)
		}

		notifications := api.Group("/notifications", auth)
		{
			notifications.GET("", h.ListNotifications)
			notifications.PUT("/:notification_id", h.MarkNotificationRead)
			notifications.DELETE("/:notification_id", h.DeleteNotification)
		}
	}
}

// actor builds the caller identity from the verified token claims.
func actor(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID:         middleware.GetUserID(c),
		UID:            middleware.GetUID(c),
		Username:       middleware.GetUsername(c),
		Email:          middleware.GetEmail(c),
		AvatarColor:    middleware.GetAvatarColor(c),
		ProfilePicture: middleware.GetProfilePicture(c),
	}
}

// page reads the page query parameter, defaulting to the first page.
func page(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		response.BadRequest(c, "page must be a positive integer")
		return 0, false
	}
	return n, true
}

// fail maps a domain error kind to a response. Anything that is not a
// caller mistake is logged and answered with 500.
func fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Str(pkglog.FieldUserID, middleware.GetUserID(c)).Msg(op + " failed")
		response.InternalError(c, op+" failed")
	}
}
