package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kriskris-27/the-dev-ops-mern/internal/auth"
	"github.com/kriskris-27/the-dev-ops-mern/internal/cache"
	"github.com/kriskris-27/the-dev-ops-mern/internal/config"
	"github.com/kriskris-27/the-dev-ops-mern/internal/handlers"
	"github.com/kriskris-27/the-dev-ops-mern/internal/metrics"
	"github.com/kriskris-27/the-dev-ops-mern/internal/repo"
	"github.com/kriskris-27/the-dev-ops-mern/internal/response"
	"github.com/kriskris-27/the-dev-ops-mern/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"golang.org/x/crypto/bcrypt"
)

// Deps is everything Setup needs. When DB/Redis are set, the Postgres repos
// and the Redis cache are built from them; tests set the repo fields instead.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Resp     *response.Responder
	Metrics  *metrics.HTTP
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Checkers []Checker

	Todos     repo.TodoRepo
	Users     repo.UserRepo
	Tasks     repo.TaskRepo
	TodoCache service.TodoListCache
	NewToken  auth.TokenSource
	HashCost  int
}

func (d *Deps) fill() {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Resp == nil {
		d.Resp = response.New(!d.Config.App.IsProduction(), d.Log)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Todos == nil {
		d.Todos = repo.NewPGTodoRepo(d.DB)
	}
	if d.Users == nil {
		d.Users = repo.NewPGUserRepo(d.DB)
	}
	if d.Tasks == nil {
		d.Tasks = repo.NewPGTaskRepo(d.DB)
	}
	if d.TodoCache == nil && d.Redis != nil {
		d.TodoCache = cache.NewTodoCache(d.Redis, d.Config.Redis.DefaultTTL.Duration())
	}
	if d.NewToken == nil {
		d.NewToken = auth.NewToken
	}
	if d.HashCost == 0 {
		d.HashCost = bcrypt.DefaultCost
	}
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, d Deps) {
	d.fill()
	cfg := d.Config

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg, d.Checkers))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	issued := d.Metrics.SessionsIssued
	newToken := d.NewToken
	cookie := auth.CookieOptions{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL.Duration(),
		Secure: cfg.App.IsProduction(),
	}
	api := r.Group("/api", auth.EnsureSession(cookie, func() (string, error) {
		tok, err := newToken()
		if err == nil {
			issued.Inc()
		}
		return tok, err
	}, d.Resp))

	todoSvc := service.NewTodoService(d.Todos, d.TodoCache, d.Log)
	registerTodoRoutes(api, handlers.NewTodoHandler(todoSvc, d.Resp))

	userSvc := service.NewUserService(d.Users, d.HashCost)
	registerUserRoutes(api, handlers.NewUserHandler(userSvc, d.Resp))

	taskSvc := service.NewTaskService(d.Tasks, d.Users)
	registerTaskRoutes(api, handlers.NewTaskHandler(taskSvc, d.Resp))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Todo API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api",
		})
	}
}

func healthHandler(cfg config.Config, checkers []Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ok := true
		checks := gin.H{}
		for _, ch := range checkers {
			if err := ch.Ping(ctx); err != nil {
				ok = false
				checks[ch.Name()] = err.Error()
				continue
			}
			checks[ch.Name()] = "ok"
		}
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ok": ok, "env": cfg.App.Env, "checks": checks})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.GET("/todo", h.List)
	api.POST("/todo", h.Add)
	api.DELETE("/todo/clear/completed", h.ClearCompleted)
	api.GET("/todo/:id", h.Get)
	api.PATCH("/todo/:id", h.Toggle)
	api.DELETE("/todo/:id", h.Delete)
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler) {
	api.GET("/users", h.List)
	api.POST("/users", h.Create)
	api.GET("/users/:id", h.Get)
	api.PUT("/users/:id", h.Update)
	api.DELETE("/users/:id", h.Delete)
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/tasks", h.List)
	api.POST("/tasks", h.Create)
	api.GET("/tasks/user/:userId", h.ListByUser)
	api.GET("/tasks/:id", h.Get)
	api.PUT("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
}
