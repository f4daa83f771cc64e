package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/models"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) (*models.Page[models.UserView], error)
	Create(ctx context.Context, req models.CreateUserRequest) (*models.UserView, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler handles the admin user endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Security BasicAuth
// @Param pageNumber query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "asc or desc"
// @Param searchLoginTerm query string false "Login contains"
// @Param searchEmailTerm query string false "Email contains"
// @Success 200 {object} response.Envelope{data=[]models.UserView}
// @Failure 401 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		ListQuery:       listQuery(c),
		SearchLoginTerm: c.Query("searchLoginTerm"),
		SearchEmailTerm: c.Query("searchEmailTerm"),
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, page)
}

// Create godoc
// @Summary Create confirmed user
// @Tags Users
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope{data=models.UserView}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Security BasicAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
