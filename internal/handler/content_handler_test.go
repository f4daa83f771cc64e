package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/blog-platform-api/internal/middleware"
	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
)

type blogServiceMock struct {
	filter models.BlogFilter
	err    error
}

func (m *blogServiceMock) List(_ context.Context, filter models.BlogFilter) (*models.Page[models.Blog], error) {
	m.filter = filter
	return models.NewPage([]models.Blog{{ID: "b1", Name: "Go"}}, filter.ListQuery, 21), nil
}

func (m *blogServiceMock) Get(_ context.Context, id string) (*models.Blog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Blog{ID: id, Name: "Go"}, nil
}

func (m *blogServiceMock) Create(_ context.Context, in models.BlogInput) (*models.Blog, error) {
	return &models.Blog{ID: "b1", Name: in.Name}, m.err
}

func (m *blogServiceMock) Update(context.Context, string, models.BlogInput) error { return m.err }

func (m *blogServiceMock) Delete(context.Context, string) error { return m.err }

type postServiceMock struct {
	filter models.PostFilter
	userID string
	blogID string
	likeIn models.LikeStatusInput
	err    error
}

func (m *postServiceMock) List(_ context.Context, filter models.PostFilter, userID string) (*models.Page[models.PostView], error) {
	m.filter, m.userID = filter, userID
	if m.err != nil {
		return nil, m.err
	}
	return models.NewPage([]models.PostView{}, filter.ListQuery, 0), nil
}

func (m *postServiceMock) Get(_ context.Context, id, userID string) (*models.PostView, error) {
	m.userID = userID
	return &models.PostView{ID: id}, m.err
}

func (m *postServiceMock) Create(_ context.Context, in models.PostWithBlogInput) (*models.PostView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.PostView{ID: "p1", BlogID: in.BlogID}, nil
}

func (m *postServiceMock) CreateForBlog(_ context.Context, blogID string, _ models.PostInput) (*models.PostView, error) {
	m.blogID = blogID
	if m.err != nil {
		return nil, m.err
	}
	return &models.PostView{ID: "p1", BlogID: blogID}, nil
}

func (m *postServiceMock) Update(context.Context, string, models.PostWithBlogInput) error { return m.err }

func (m *postServiceMock) Delete(context.Context, string) error { return m.err }

func (m *postServiceMock) SetLikeStatus(_ context.Context, _, userID string, in models.LikeStatusInput) error {
	m.userID, m.likeIn = userID, in
	return m.err
}

type commentServiceMock struct {
	postID string
	userID string
	err    error
}

func (m *commentServiceMock) ListByPost(_ context.Context, filter models.CommentFilter, userID string) (*models.Page[models.CommentView], error) {
	m.postID, m.userID = filter.PostID, userID
	return models.NewPage([]models.CommentView{}, filter.ListQuery, 0), m.err
}

func (m *commentServiceMock) Get(_ context.Context, id, userID string) (*models.CommentView, error) {
	m.userID = userID
	return &models.CommentView{ID: id}, m.err
}

func (m *commentServiceMock) Create(_ context.Context, postID, userID string, in models.CommentInput) (*models.CommentView, error) {
	m.postID, m.userID = postID, userID
	if m.err != nil {
		return nil, m.err
	}
	return &models.CommentView{ID: "c1", Content: in.Content}, nil
}

func (m *commentServiceMock) Update(_ context.Context, _, userID string, _ models.CommentInput) error {
	m.userID = userID
	return m.err
}

func (m *commentServiceMock) Delete(_ context.Context, _, userID string) error {
	m.userID = userID
	return m.err
}

func (m *commentServiceMock) SetLikeStatus(_ context.Context, _, userID string, _ models.LikeStatusInput) error {
	m.userID = userID
	return m.err
}

func TestBlogHandlerListParsesQuery(t *testing.T) {
	svc := &blogServiceMock{}
	h := NewBlogHandler(svc, &postServiceMock{})

	c, w := newContext(http.MethodGet, "/blogs?searchNameTerm=go&pageNumber=2&pageSize=5&sortBy=name&sortDirection=asc", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "go", svc.filter.SearchNameTerm)
	assert.Equal(t, models.ListQuery{PageNumber: 2, PageSize: 5, SortBy: "name", SortDirection: "ASC"}, svc.filter.ListQuery)
	assert.Contains(t, w.Body.String(), `"pagination":{"pagesCount":5,"page":2,"pageSize":5,"totalCount":21}`)
}

func TestBlogHandlerListDefaults(t *testing.T) {
	svc := &blogServiceMock{}
	h := NewBlogHandler(svc, &postServiceMock{})

	c, _ := newContext(http.MethodGet, "/blogs?pageNumber=abc&pageSize=-1", nil)
	h.List(c)

	assert.Equal(t, models.ListQuery{PageNumber: 1, PageSize: 10, SortBy: "createdAt", SortDirection: "DESC"}, svc.filter.ListQuery)
}

func TestBlogHandlerGetNotFound(t *testing.T) {
	h := NewBlogHandler(&blogServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "blog not found")}, &postServiceMock{})
	c, w := newContext(http.MethodGet, "/blogs/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlogHandlerPostsUseOptionalUser(t *testing.T) {
	posts := &postServiceMock{}
	h := NewBlogHandler(&blogServiceMock{}, posts)

	c, w := newContext(http.MethodGet, "/blogs/b1/posts", nil)
	c.Params = gin.Params{{Key: "id", Value: "b1"}}
	c.Set(middleware.ContextUserKey, "user-1")
	h.ListPosts(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b1", posts.filter.BlogID)
	assert.Equal(t, "user-1", posts.userID)

	c, w = newContext(http.MethodPost, "/blogs/b1/posts", models.PostInput{Title: "t", ShortDescription: "s", Content: "c"})
	c.Params = gin.Params{{Key: "id", Value: "b1"}}
	h.CreatePost(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "b1", posts.blogID)
}

func TestPostHandlerLikeStatus(t *testing.T) {
	posts := &postServiceMock{}
	h := NewPostHandler(posts, &commentServiceMock{})

	c, w := newContext(http.MethodPut, "/posts/p1/like-status", models.LikeStatusInput{LikeStatus: models.LikeStatusDislike})
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, "user-1")
	h.SetLikeStatus(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "user-1", posts.userID)
	assert.Equal(t, models.LikeStatusDislike, posts.likeIn.LikeStatus)
}

func TestPostHandlerCreateComment(t *testing.T) {
	comments := &commentServiceMock{}
	h := NewPostHandler(&postServiceMock{}, comments)

	c, w := newContext(http.MethodPost, "/posts/p1/comments", models.CommentInput{Content: "a comment that is long enough"})
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, "user-1")
	h.CreateComment(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "p1", comments.postID)
	assert.Equal(t, "user-1", comments.userID)
}

func TestPostHandlerCreateBadBlog(t *testing.T) {
	h := NewPostHandler(&postServiceMock{err: appErrors.BadRequest("blogId", "blog does not exist")}, &commentServiceMock{})

	c, w := newContext(http.MethodPost, "/posts", models.PostWithBlogInput{BlogID: "missing"})
	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"blogId"`)
}

func TestCommentHandlerForbidden(t *testing.T) {
	comments := &commentServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "comment belongs to another user")}
	h := NewCommentHandler(comments)

	c, w := newContext(http.MethodDelete, "/comments/c1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, "intruder")
	h.Delete(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "intruder", comments.userID)
}
