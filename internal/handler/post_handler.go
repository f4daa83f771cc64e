package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/middleware"
	"github.com/noah-isme/blog-platform-api/internal/models"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

type commentService interface {
	ListByPost(ctx context.Context, filter models.CommentFilter, userID string) (*models.Page[models.CommentView], error)
	Get(ctx context.Context, id, userID string) (*models.CommentView, error)
	Create(ctx context.Context, postID, userID string, in models.CommentInput) (*models.CommentView, error)
	Update(ctx context.Context, id, userID string, in models.CommentInput) error
	Delete(ctx context.Context, id, userID string) error
	SetLikeStatus(ctx context.Context, commentID, userID string, in models.LikeStatusInput) error
}

// PostHandler serves posts, their reactions and comments.
type PostHandler struct {
	posts    postService
	comments commentService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(posts postService, comments commentService) *PostHandler {
	return &PostHandler{posts: posts, comments: comments}
}

// List godoc
// @Summary List posts
// @Tags Posts
// @Produce json
// @Param pageNumber query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "asc or desc"
// @Success 200 {object} response.Envelope{data=[]models.PostView}
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
	page, err := h.posts.List(c.Request.Context(), models.PostFilter{ListQuery: listQuery(c)}, middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, page)
}

// Get godoc
// @Summary Get post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope{data=models.PostView}
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// Create godoc
// @Summary Create post
// @Tags Posts
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param payload body models.PostWithBlogInput true "Post payload"
// @Success 201 {object} response.Envelope{data=models.PostView}
// @Failure 400 {object} response.Envelope
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var in models.PostWithBlogInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Update godoc
// @Summary Update post
// @Tags Posts
// @Accept json
// @Security BasicAuth
// @Param id path string true "Post ID"
// @Param payload body models.PostWithBlogInput true "Post payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	var in models.PostWithBlogInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.posts.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete post
// @Tags Posts
// @Security BasicAuth
// @Param id path string true "Post ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetLikeStatus godoc
// @Summary Like or dislike a post
// @Tags Posts
// @Accept json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param payload body models.LikeStatusInput true "Like status"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id}/like-status [put]
func (h *PostHandler) SetLikeStatus(c *gin.Context) {
	var in models.LikeStatusInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.posts.SetLikeStatus(c.Request.Context(), c.Param("id"), middleware.UserID(c), in); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListComments godoc
// @Summary List comments of a post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Param pageNumber query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.CommentView}
// @Failure 404 {object} response.Envelope
// @Router /posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *gin.Context) {
	filter := models.CommentFilter{ListQuery: listQuery(c), PostID: c.Param("id")}
	page, err := h.comments.ListByPost(c.Request.Context(), filter, middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, page)
}

// CreateComment godoc
// @Summary Comment on a post
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param payload body models.CommentInput true "Comment payload"
// @Success 201 {object} response.Envelope{data=models.CommentView}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id}/comments [post]
func (h *PostHandler) CreateComment(c *gin.Context) {
	var in models.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), c.Param("id"), middleware.UserID(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}
