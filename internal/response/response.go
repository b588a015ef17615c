// Package response renders every handler outcome as the same JSON envelope
// and maps errors to HTTP statuses.
package response

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/validate"
)

// Envelope is the wire shape of every response.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Count     *int      `json:"count,omitempty"`
	Field     string    `json:"field,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Responder writes envelopes. Internal error text is exposed only when exposeErrors is set.
type Responder struct {
	exposeErrors bool
	log          *slog.Logger
	now          func() time.Time
}

func New(exposeErrors bool, log *slog.Logger) *Responder {
	if log == nil {
		log = slog.Default()
	}
	return &Responder{exposeErrors: exposeErrors, log: log, now: time.Now}
}

// OK writes a success envelope with the given status (200 or 201).
func (r *Responder) OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, r.envelope(true, message, data))
}

// List writes a success envelope carrying a count of items.
func (r *Responder) List(c *gin.Context, message string, data any, count int) {
	env := r.envelope(true, message, data)
	env.Count = &count
	c.JSON(http.StatusOK, env)
}

// Error maps err to a status and writes the failure envelope.
func (r *Responder) Error(c *gin.Context, err error) {
	status, env := r.failure(c, err)
	c.JSON(status, env)
}

// Abort is Error for middleware: it stops the handler chain.
func (r *Responder) Abort(c *gin.Context, err error) {
	status, env := r.failure(c, err)
	c.AbortWithStatusJSON(status, env)
}

// NotFoundRoute answers requests that match no route.
func (r *Responder) NotFoundRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, r.envelope(false, "route not found", nil))
}

// Recovery replaces gin's default recovery so panics still produce an envelope.
func (r *Responder) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(gin.DefaultErrorWriter, func(c *gin.Context, rec any) {
		r.log.Error("panic recovered", "panic", rec, "method", c.Request.Method, "path", c.FullPath())
		env := r.envelope(false, "internal server error", nil)
		c.AbortWithStatusJSON(http.StatusInternalServerError, env)
	})
}

func (r *Responder) failure(c *gin.Context, err error) (int, Envelope) {
	var ve *validate.Error
	switch {
	case errors.As(err, &ve):
		env := r.envelope(false, ve.Message, nil)
		env.Field = ve.Field
		return http.StatusBadRequest, env
	case errors.Is(err, dom.ErrUnknownUser):
		env := r.envelope(false, "referenced user does not exist", nil)
		env.Field = "user"
		return http.StatusBadRequest, env
	case errors.Is(err, dom.ErrNotFound):
		return http.StatusNotFound, r.envelope(false, notFoundMessage(err), nil)
	case errors.Is(err, dom.ErrEmailTaken):
		env := r.envelope(false, "email already in use", nil)
		env.Field = "email"
		return http.StatusConflict, env
	}

	r.log.Error("request failed", "error", err, "method", c.Request.Method, "path", c.FullPath())
	_ = c.Error(err)
	env := r.envelope(false, "internal server error", nil)
	if r.exposeErrors {
		env.Error = err.Error()
	}
	return http.StatusInternalServerError, env
}

func (r *Responder) envelope(success bool, message string, data any) Envelope {
	if message == "" {
		if success {
			message = "Success"
		} else {
			message = "Error"
		}
	}
	return Envelope{
		Success:   success,
		Message:   message,
		Data:      data,
		Timestamp: r.now().UTC(),
	}
}

func notFoundMessage(err error) string {
	var nf *dom.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "not found"
}
