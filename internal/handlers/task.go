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

type TaskHandler struct {
	svc  *service.TaskService
	resp *response.Responder
}

func NewTaskHandler(svc *service.TaskService, resp *response.Responder) *TaskHandler {
	return &TaskHandler{svc: svc, resp: resp}
}

// List godoc
// @Summary      List tasks with their users
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]dto.TaskResponse}
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.List(c, "Tasks retrieved successfully", tasksToResponses(list), len(list))
}

// ListByUser godoc
// @Summary      List the tasks of one user
// @Tags         tasks
// @Produce      json
// @Param        userId  path      string  true  "User ID (UUID)"
// @Success      200     {object}  response.Envelope{data=[]dto.TaskResponse}
// @Failure      400     {object}  response.Envelope
// @Router       /tasks/user/{userId} [get]
func (h *TaskHandler) ListByUser(c *gin.Context) {
	userID, ok := parseID(c, h.resp, "userId")
	if !ok {
		return
	}
	list, err := h.svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.List(c, "Tasks retrieved successfully", tasksToResponses(list), len(list))
}

// Get godoc
// @Summary      Get a task with its user
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID (UUID)"
// @Success      200  {object}  response.Envelope{data=dto.TaskResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := parseID(c, h.resp, "id")
	if !ok {
		return
	}
	v, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "Task retrieved successfully", taskToResponse(v))
}

// Create godoc
// @Summary      Create a task for an existing user
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task"
// @Success      201   {object}  response.Envelope{data=dto.TaskResponse}
// @Failure      400   {object}  response.Envelope
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, validate.FromBindError(err))
		return
	}
	draft, err := validate.NewTask(req)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	v, err := h.svc.Create(c.Request.Context(), draft)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, "Task created successfully", taskToResponse(v))
}

// Update godoc
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID (UUID)"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  response.Envelope{data=dto.TaskResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, h.resp, "id")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, validate.FromBindError(err))
		return
	}
	patch, err := validate.TaskChanges(req)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	v, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "Task updated successfully", taskToResponse(v))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID (UUID)"
// @Success      200  {object}  response.Envelope{data=dto.DeletedTaskResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, h.resp, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "Task deleted successfully", dto.DeletedTaskResponse{DeletedID: id})
}

func taskToResponse(v dom.TaskView) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Status:      string(v.Status),
		Priority:    string(v.Priority),
		User: dto.TaskUser{
			ID:         v.User.ID,
			Name:       v.User.Name,
			Email:      v.User.Email,
			Unresolved: !v.User.Resolved,
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func tasksToResponses(list []dom.TaskView) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}
