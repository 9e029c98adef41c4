package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/service"
	"github.com/weiawesome/wes-io-live/pkg/response"
)

// AddComment handles POST /api/v1/comments.
func (h *Handler) AddComment(c *gin.Context) {
	var req service.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	comment, err := h.svc.Comments.Add(c.Request.Context(), actor(c), &req)
	if err != nil {
		fail(c, err, "add comment")
		return
	}
	response.Created(c, comment)
}

// ListComments handles GET /api/v1/posts/:post_id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.svc.Comments.List(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		fail(c, err, "list comments")
		return
	}
	response.Success(c, gin.H{"comments": comments})
}

// CommentNames handles GET /api/v1/posts/:post_id/comments/names.
func (h *Handler) CommentNames(c *gin.Context) {
	names, err := h.svc.Comments.Names(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		fail(c, err, "list commenter names")
		return
	}
	response.Success(c, names)
}

// GetComment handles GET /api/v1/posts/:post_id/comments/:comment_id.
func (h *Handler) GetComment(c *gin.Context) {
	comment, err := h.svc.Comments.Single(c.Request.Context(), c.Param("post_id"), c.Param("comment_id"))
	if err != nil {
		fail(c, err, "get comment")
		return
	}
	response.Success(c, comment)
}

// AddReaction handles POST /api/v1/reactions.
func (h *Handler) AddReaction(c *gin.Context) {
	var req service.AddReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	reaction, err := h.svc.Reactions.Add(c.Request.Context(), actor(c), &req)
	if err != nil {
		fail(c, err, "add reaction")
		return
	}
	response.Created(c, reaction)
}

// RemoveReaction handles DELETE /api/v1/posts/:post_id/reactions.
func (h *Handler) RemoveReaction(c *gin.Context) {
	var req service.RemoveReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	req.PostID = c.Param("post_id")
	if err := h.svc.Reactions.Remove(c.Request.Context(), actor(c), &req); err != nil {
		fail(c, err, "remove reaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReactions handles GET /api/v1/posts/:post_id/reactions.
func (h *Handler) ListReactions(c *gin.Context) {
	list, err := h.svc.Reactions.List(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		fail(c, err, "list reactions")
		return
	}
	response.Success(c, list)
}

// GetReaction handles GET /api/v1/posts/:post_id/reactions/:username.
func (h *Handler) GetReaction(c *gin.Context) {
	reaction, err := h.svc.Reactions.ByUsername(c.Request.Context(), c.Param("post_id"), c.Param("username"))
	if err != nil {
		fail(c, err, "get reaction")
		return
	}
	response.Success(c, reaction)
}

// ListReactionsByUsername handles GET /api/v1/reactions/user/:username.
func (h *Handler) ListReactionsByUsername(c *gin.Context) {
	reactions, err := h.svc.Reactions.AllByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err, "list reactions")
		return
	}
	response.Success(c, gin.H{"reactions": reactions})
}
