package handlers

import (
	"errors"
	"net/http"

	"github.com/kriskris-27/the-dev-ops-mern/internal/auth"
	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/dto"
	"github.com/kriskris-27/the-dev-ops-mern/internal/response"
	"github.com/kriskris-27/the-dev-ops-mern/internal/service"
	"github.com/kriskris-27/the-dev-ops-mern/internal/validate"

	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	svc  *service.TodoService
	resp *response.Responder
}

func NewTodoHandler(svc *service.TodoService, resp *response.Responder) *TodoHandler {
	return &TodoHandler{svc: svc, resp: resp}
}

// session returns the identity assigned by auth.EnsureSession. A route mounted
// without that middleware fails closed with a 500 instead of running unscoped.
func (h *TodoHandler) session(c *gin.Context) (auth.Session, bool) {
	s, ok := auth.SessionFromContext(c)
	if !ok {
		h.resp.Error(c, errors.New("todo route reached without session middleware"))
		return auth.Session{}, false
	}
	return s, true
}

// List godoc
// @Summary      List the session's todos
// @Tags         todo
// @Produce      json
// @Success      200  {object}  response.Envelope{data=dto.ListTodosResponse}
// @Failure      500  {object}  response.Envelope
// @Router       /todo [get]
func (h *TodoHandler) List(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), sess)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "Todos retrieved successfully", dto.ListTodosResponse{
		Todos:     todosToResponses(list.Todos),
		Count:     list.Count,
		Completed: list.Completed,
		Pending:   list.Pending,
	})
}

// Get godoc
// @Summary      Get one of the session's todos
// @Tags         todo
// @Produce      json
// @Param        id   path      string  true  "Todo ID (UUID)"
// @Success      200  {object}  response.Envelope{data=dto.TodoResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /todo/{id} [get]
func (h *TodoHandler) Get(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), sess, id)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "Todo retrieved successfully", todoToResponse(t))
}

// Add godoc
// @Summary      Add a todo
// @Tags         todo
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AddTodoRequest  true  "Todo body"
// @Success      201   {object}  response.Envelope{data=dto.TodoResponse}
// @Failure      400   {object}  response.Envelope
// @Router       /todo [post]
func (h *TodoHandler) Add(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.AddTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, validate.FromBindError(err))
		return
	}
	task, err := validate.TodoTask(req.Task)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	t, err := h.svc.Add(c.Request.Context(), sess, task)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, "Todo created successfully", todoToResponse(t))
}

// Toggle godoc
// @Summary      Toggle a todo's completed flag
// @Tags         todo
// @Produce      json
// @Param        id   path      string  true  "Todo ID (UUID)"
// @Success      200  {object}  response.Envelope{data=dto.TodoResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /todo/{id} [patch]
func (h *TodoHandler) Toggle(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Toggle(c.Request.Context(), sess, id)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	state := "pending"
	if t.Completed {
		state = "completed"
	}
	h.resp.OK(c, http.StatusOK, "Todo marked as "+state, todoToResponse(t))
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todo
// @Produce      json
// @Param        id   path      string  true  "Todo ID (UUID)"
// @Success      200  {object}  response.Envelope{data=dto.DeletedTodoResponse}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /todo/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), sess, id); err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "Todo deleted successfully", dto.DeletedTodoResponse{DeletedID: id})
}

// ClearCompleted godoc
// @Summary      Delete all completed todos of the session
// @Tags         todo
// @Produce      json
// @Success      200  {object}  response.Envelope{data=dto.ClearCompletedResponse}
// @Failure      500  {object}  response.Envelope
// @Router       /todo/clear/completed [delete]
func (h *TodoHandler) ClearCompleted(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	n, err := h.svc.ClearCompleted(c.Request.Context(), sess)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, "Completed todos cleared successfully", dto.ClearCompletedResponse{DeletedCount: n})
}

func (h *TodoHandler) parseID(c *gin.Context, name string) (string, bool) {
	return parseID(c, h.resp, name)
}

// parseID validates a path id before any store lookup; a malformed id is a 400, never a 404.
func parseID(c *gin.Context, resp *response.Responder, name string) (string, bool) {
	id, err := validate.ID(name, c.Param(name))
	if err != nil {
		resp.Error(c, err)
		return "", false
	}
	return id, true
}

func todoToResponse(t dom.Todo) dto.TodoResponse {
	return dto.TodoResponse{
		ID:        t.ID,
		Task:      t.Task,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func todosToResponses(list []dom.Todo) []dto.TodoResponse {
	out := make([]dto.TodoResponse, len(list))
	for i := range list {
		out[i] = todoToResponse(list[i])
	}
	return out
}
