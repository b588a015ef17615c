package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kriskris-27/the-dev-ops-mern/internal/response"
)

const contextKeySession = "session"

// CookieOptions controls the identity cookie.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool // production: Secure + SameSite=Lax
}

// SessionFromContext returns the session set by EnsureSession. ok is false if the middleware did not run.
func SessionFromContext(c *gin.Context) (Session, bool) {
	v, ok := c.Get(contextKeySession)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	if !ok || !s.Valid() {
		return Session{}, false
	}
	return s, true
}

// EnsureSession makes sure every request carries an identity. A client without a
// valid cookie gets a fresh token, both as a Set-Cookie on the response and in the
// context of this same request. If no token can be generated the request is aborted.
func EnsureSession(opts CookieOptions, newToken TokenSource, resp *response.Responder) gin.HandlerFunc {
	if newToken == nil {
		newToken = NewToken
	}
	return func(c *gin.Context) {
		if raw, err := c.Cookie(opts.Name); err == nil {
			if s, err := SessionFromToken(raw); err == nil {
				c.Set(contextKeySession, s)
				c.Next()
				return
			}
		}

		token, err := newToken()
		if err != nil {
			resp.Abort(c, fmt.Errorf("assign session: %w", err))
			return
		}
		s := Session{id: token}
		setCookie(c, opts, token)
		c.Set(contextKeySession, s)
		c.Next()
	}
}

func setCookie(c *gin.Context, opts CookieOptions, token string) {
	cookie := &http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.TTL.Seconds()),
		Expires:  time.Now().Add(opts.TTL),
		HttpOnly: true,
	}
	if opts.Secure {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteLaxMode
	}
	http.SetCookie(c.Writer, cookie)
}
