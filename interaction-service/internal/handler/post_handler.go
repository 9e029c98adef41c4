package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/audit"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/service"
	"github.com/weiawesome/wes-io-live/pkg/response"
)

// CreatePost handles POST /api/v1/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	var req service.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	post, err := h.svc.Posts.Create(ctx, actor(c), &req)
	if err != nil {
		fail(c, err, "create post")
		return
	}
	audit.LogTarget(ctx, audit.ActionCreatePost, post.UserID, post.ID, "post created")
	response.Created(c, post)
}

// UpdatePost handles PUT /api/v1/posts/:post_id.
func (h *Handler) UpdatePost(c *gin.Context) {
	var update domain.PostUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	a := actor(c)
	post, err := h.svc.Posts.Update(ctx, a, c.Param("post_id"), &update)
	if err != nil {
		fail(c, err, "update post")
		return
	}
	audit.LogTarget(ctx, audit.ActionUpdatePost, a.UserID, post.ID, "post updated")
	response.Message(c, "post updated", post)
}

// DeletePost handles DELETE /api/v1/posts/:post_id.
func (h *Handler) DeletePost(c *gin.Context) {
	ctx := c.Request.Context()
	a := actor(c)
	postID := c.Param("post_id")
	if err := h.svc.Posts.Delete(ctx, a, postID); err != nil {
		fail(c, err, "delete post")
		return
	}
	audit.LogTarget(ctx, audit.ActionDeletePost, a.UserID, postID, "post deleted")
	c.Status(http.StatusNoContent)
}

// GetPost handles GET /api/v1/posts/:post_id.
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.svc.Posts.Get(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		fail(c, err, "get post")
		return
	}
	response.Success(c, post)
}

// ListPosts handles GET /api/v1/posts?page=N.
func (h *Handler) ListPosts(c *gin.Context) {
	n, ok := page(c)
	if !ok {
		return
	}
	result, err := h.svc.Posts.List(c.Request.Context(), n)
	if err != nil {
		fail(c, err, "list posts")
		return
	}
	response.Success(c, result)
}

// ListPostsWithMedia handles GET /api/v1/posts/media/:kind?page=N.
func (h *Handler) ListPostsWithMedia(c *gin.Context) {
	kind := domain.MediaKind(c.Param("kind"))
	if kind != domain.MediaImage && kind != domain.MediaVideo {
		response.BadRequest(c, "kind must be image or video")
		return
	}
	n, ok := page(c)
	if !ok {
		return
	}
	posts, err := h.svc.Posts.ListWithMedia(c.Request.Context(), kind, n)
	if err != nil {
		fail(c, err, "list posts")
		return
	}
	response.Success(c, gin.H{"posts": posts})
}

// ListUserPosts handles GET /api/v1/users/:user_id/posts?uid=N. uid is the
// numeric id the cache indexes posts by.
func (h *Handler) ListUserPosts(c *gin.Context) {
	uID, err := strconv.ParseInt(c.Query("uid"), 10, 64)
	if err != nil {
		response.BadRequest(c, "uid must be an integer")
		return
	}
	posts, err := h.svc.Posts.ListByUser(c.Request.Context(), c.Param("user_id"), uID)
	if err != nil {
		fail(c, err, "list user posts")
		return
	}
	response.Success(c, gin.H{"posts": posts})
}
