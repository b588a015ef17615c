package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a todo operation is attempted without a session.
var ErrNoSession = errors.New("session identity is missing")

// Session is the opaque identity of an anonymous client.
// Every todo operation takes one; the zero value is not a valid session.
type Session struct {
	id string
}

// SessionFromToken wraps a cookie value. It fails if the token is not one we could have issued.
func SessionFromToken(token string) (Session, error) {
	if !validToken(token) {
		return Session{}, fmt.Errorf("malformed session token")
	}
	return Session{id: token}, nil
}

// ID returns the token used to scope stored records.
func (s Session) ID() string { return s.id }

// Valid reports whether s carries an identity.
func (s Session) Valid() bool { return s.id != "" }

func (s Session) String() string {
	if len(s.id) < 8 {
		return "session(none)"
	}
	return "session(" + s.id[:8] + "…)"
}

// TokenSource generates new session tokens.
type TokenSource func() (string, error)

// NewToken returns a random UUID v4 string.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return id.String(), nil
}

func validToken(token string) bool {
	if len(token) != 36 {
		return false
	}
	id, err := uuid.Parse(token)
	return err == nil && id.Version() == 4
}
