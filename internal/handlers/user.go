package handlers

import (
	"net/http"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/dto"
	"github.com/kriskris-27/the-dev-ops-mern/internal/response"
	"github.com/kriskris-27/the-dev-ops-mern/internal/service"
	"github.com/kriskris-27/the-dev-ops-mern/internal/validate"

	"github.com/gin-gonic/gin"
)

// UserHandler serves admin-facing user CRUD. Responses never include the password hash.
type UserHandler struct {
	svc  *service.UserService
	resp *response.Responder
}

func NewUserHandler(svc *service.UserService, resp *response.Responder) *UserHandler {
	return &UserHandler{svc: svc, resp: resp}
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]dto.UserResponse}
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	out := make([]dto.UserResponse, len(list))
	for i := range list {
		out[i] = userToResponse(list[i])
	}
	h.resp.List(c, "Users retrieved successfully", out, len(out))
}

// Get godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID (UUID)"
// @Success      200  {object}  response.Envelope{data=dto.UserResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, h.resp, "id")
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "User retrieved successfully", userToResponse(u))
}

// Create godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateUserRequest  true  "User"
// @Success      201   {object}  response.Envelope{data=dto.UserResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, validate.FromBindError(err))
		return
	}
	draft, err := validate.NewUser(req)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	u, err := h.svc.Create(c.Request.Context(), draft)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, "User created successfully", userToResponse(u))
}

// Update godoc
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "User ID (UUID)"
// @Param        body  body      dto.UpdateUserRequest  true  "Partial update"
// @Success      200   {object}  response.Envelope{data=dto.UserResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, h.resp, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, validate.FromBindError(err))
		return
	}
	changes, err := validate.UserChanges(req)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	u, err := h.svc.Update(c.Request.Context(), id, changes)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "User updated successfully", userToResponse(u))
}

// Delete godoc
// @Summary      Delete a user (tasks referencing it are kept)
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID (UUID)"
// @Success      200  {object}  response.Envelope{data=dto.DeletedUserResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, h.resp, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "User deleted successfully", dto.DeletedUserResponse{DeletedID: id})
}

func userToResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
