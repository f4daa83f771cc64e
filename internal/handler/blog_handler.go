package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/middleware"
	"github.com/noah-isme/blog-platform-api/internal/models"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

type blogService interface {
	List(ctx context.Context, filter models.BlogFilter) (*models.Page[models.Blog], error)
	Get(ctx context.Context, id string) (*models.Blog, error)
	Create(ctx context.Context, in models.BlogInput) (*models.Blog, error)
	Update(ctx context.Context, id string, in models.BlogInput) error
	Delete(ctx context.Context, id string) error
}

type postService interface {
	List(ctx context.Context, filter models.PostFilter, userID string) (*models.Page[models.PostView], error)
	Get(ctx context.Context, id, userID string) (*models.PostView, error)
	Create(ctx context.Context, in models.PostWithBlogInput) (*models.PostView, error)
	CreateForBlog(ctx context.Context, blogID string, in models.PostInput) (*models.PostView, error)
	Update(ctx context.Context, id string, in models.PostWithBlogInput) error
	Delete(ctx context.Context, id string) error
	SetLikeStatus(ctx context.Context, postID, userID string, in models.LikeStatusInput) error
}

// BlogHandler serves blogs and the posts nested under them.
type BlogHandler struct {
	blogs blogService
	posts postService
}

// NewBlogHandler creates a new blog handler.
func NewBlogHandler(blogs blogService, posts postService) *BlogHandler {
	return &BlogHandler{blogs: blogs, posts: posts}
}

// List godoc
// @Summary List blogs
// @Tags Blogs
// @Produce json
// @Param searchNameTerm query string false "Name contains"
// @Param pageNumber query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "asc or desc"
// @Success 200 {object} response.Envelope{data=[]models.Blog}
// @Router /blogs [get]
func (h *BlogHandler) List(c *gin.Context) {
	page, err := h.blogs.List(c.Request.Context(), models.BlogFilter{
		ListQuery:      listQuery(c),
		SearchNameTerm: c.Query("searchNameTerm"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, page)
}

// Get godoc
// @Summary Get blog
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} response.Envelope{data=models.Blog}
// @Failure 404 {object} response.Envelope
// @Router /blogs/{id} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	blog, err := h.blogs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// Create godoc
// @Summary Create blog
// @Tags Blogs
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param payload body models.BlogInput true "Blog payload"
// @Success 201 {object} response.Envelope{data=models.Blog}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /blogs [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var in models.BlogInput
	if !bindJSON(c, &in) {
		return
	}
	blog, err := h.blogs.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, blog)
}

// Update godoc
// @Summary Update blog
// @Tags Blogs
// @Accept json
// @Security BasicAuth
// @Param id path string true "Blog ID"
// @Param payload body models.BlogInput true "Blog payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blogs/{id} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	var in models.BlogInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.blogs.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete blog
// @Tags Blogs
// @Security BasicAuth
// @Param id path string true "Blog ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /blogs/{id} [delete]
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.blogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListPosts godoc
// @Summary List posts of a blog
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Param pageNumber query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.PostView}
// @Failure 404 {object} response.Envelope
// @Router /blogs/{id}/posts [get]
func (h *BlogHandler) ListPosts(c *gin.Context) {
	filter := models.PostFilter{ListQuery: listQuery(c), BlogID: c.Param("id")}
	page, err := h.posts.List(c.Request.Context(), filter, middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, page)
}

// CreatePost godoc
// @Summary Create post in a blog
// @Tags Blogs
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param id path string true "Blog ID"
// @Param payload body models.PostInput true "Post payload"
// @Success 201 {object} response.Envelope{data=models.PostView}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blogs/{id}/posts [post]
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var in models.PostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.posts.CreateForBlog(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}
