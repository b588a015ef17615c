package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kriskris-27/the-dev-ops-mern/internal/auth"
	"github.com/kriskris-27/the-dev-ops-mern/internal/repo/repotest"
	"github.com/kriskris-27/the-dev-ops-mern/internal/response"
	"github.com/kriskris-27/the-dev-ops-mern/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	router *gin.Engine
	todos  *repotest.TodoRepo
	tasks  *repotest.TaskRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	todos := repotest.NewTodoRepo()
	users := repotest.NewUserRepo()
	tasks := repotest.NewTaskRepo()

	resp := response.New(false, nil)
	todoH := NewTodoHandler(service.NewTodoService(todos, repotest.NewTodoCache(), nil), resp)
	userH := NewUserHandler(service.NewUserService(users, bcrypt.MinCost), resp)
	taskH := NewTaskHandler(service.NewTaskService(tasks, users), resp)

	r := gin.New()
	r.Use(resp.Recovery())
	r.NoRoute(resp.NotFoundRoute)

	api := r.Group("/api")
	api.Use(auth.EnsureSession(auth.CookieOptions{Name: "sessionId", TTL: 7 * 24 * time.Hour}, auth.NewToken, resp))
	api.GET("/todo", todoH.List)
	api.POST("/todo", todoH.Add)
	api.DELETE("/todo/clear/completed", todoH.ClearCompleted)
	api.GET("/todo/:id", todoH.Get)
	api.PATCH("/todo/:id", todoH.Toggle)
	api.DELETE("/todo/:id", todoH.Delete)

	api.GET("/users", userH.List)
	api.POST("/users", userH.Create)
	api.GET("/users/:id", userH.Get)
	api.PUT("/users/:id", userH.Update)
	api.DELETE("/users/:id", userH.Delete)

	api.GET("/tasks", taskH.List)
	api.POST("/tasks", taskH.Create)
	api.GET("/tasks/user/:userId", taskH.ListByUser)
	api.GET("/tasks/:id", taskH.Get)
	api.PUT("/tasks/:id", taskH.Update)
	api.DELETE("/tasks/:id", taskH.Delete)

	return &env{router: r, todos: todos, tasks: tasks}
}

type reply struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Field   string          `json:"field"`
}

// client carries the session cookie between requests the way a browser would.
type client struct {
	t      *testing.T
	e      *env
	cookie *http.Cookie
}

func (e *env) client(t *testing.T) *client {
	return &client{t: t, e: e}
}

func (cl *client) do(method, path string, body any) (int, reply) {
	cl.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(cl.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.e.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "sessionId" {
			cl.cookie = c
		}
	}
	var out reply
	require.NoError(cl.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type todoJSON struct {
	ID        string `json:"id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

type todoListJSON struct {
	Todos     []todoJSON `json:"todos"`
	Count     int        `json:"count"`
	Completed int        `json:"completed"`
	Pending   int        `json:"pending"`
}

const missingID = "6f9619ff-8b86-4011-b42d-00c04fc964ff"
