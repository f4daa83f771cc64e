package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/middleware"
	"github.com/noah-isme/blog-platform-api/internal/models"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

// CommentHandler serves single comments.
type CommentHandler struct {
	service commentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(svc commentService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// Get godoc
// @Summary Get comment
// @Tags Comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Envelope{data=models.CommentView}
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [get]
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.service.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comment, nil)
}

// Update godoc
// @Summary Edit own comment
// @Tags Comments
// @Accept json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param payload body models.CommentInput true "Comment payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	var in models.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), in); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete own comment
// @Tags Comments
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetLikeStatus godoc
// @Summary Like or dislike a comment
// @Tags Comments
// @Accept json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param payload body models.LikeStatusInput true "Like status"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id}/like-status [put]
func (h *CommentHandler) SetLikeStatus(c *gin.Context) {
	var in models.LikeStatusInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.service.SetLikeStatus(c.Request.Context(), c.Param("id"), middleware.UserID(c), in); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
