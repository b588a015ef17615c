// Package validate checks request payloads before they reach a store.
// Every function here is pure: no I/O, same input gives the same result.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/dto"
)

const (
	MaxTodoTaskLen    = 500
	MaxTaskTitleLen   = 100
	MaxTaskDescLen    = 500
	MaxUserNameLen    = 100
	MinPasswordLen    = 6
	MaxPasswordBytes  = 72
	canonicalUUIDSize = 36
)

// Error is a rejected input field. It is never produced by a store.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func fieldErr(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a validation Error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

var v = validator.New()

// TodoTask validates the text of a new todo and returns it trimmed.
func TodoTask(raw *string) (string, error) {
	if raw == nil {
		return "", fieldErr("task", "task is required and must be a string")
	}
	task := strings.TrimSpace(*raw)
	if task == "" {
		return "", fieldErr("task", "task cannot be empty")
	}
	if utf8.RuneCountInString(task) > MaxTodoTaskLen {
		return "", fieldErr("task", "task cannot exceed %d characters", MaxTodoTaskLen)
	}
	return task, nil
}

// ID checks that raw has the storage identifier shape (canonical UUID text)
// and returns it lower-cased.
func ID(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != canonicalUUIDSize {
		return "", fieldErr(field, "invalid %s format", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fieldErr(field, "invalid %s format", field)
	}
	return id.String(), nil
}

// NewUser validates a create request. Unknown or omitted roles fall back to "user".
func NewUser(req dto.CreateUserRequest) (dom.UserDraft, error) {
	name, err := userName(req.Name)
	if err != nil {
		return dom.UserDraft{}, err
	}
	email, err := userEmail(req.Email)
	if err != nil {
		return dom.UserDraft{}, err
	}
	if err := password(req.Password); err != nil {
		return dom.UserDraft{}, err
	}
	role := dom.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		role = dom.RoleUser
	}
	return dom.UserDraft{Name: name, Email: email, Password: req.Password, Role: role}, nil
}

// UserChanges validates a partial update. An unknown role is ignored rather than rejected.
func UserChanges(req dto.UpdateUserRequest) (dom.UserChanges, error) {
	var out dom.UserChanges
	if req.Name != nil {
		name, err := userName(*req.Name)
		if err != nil {
			return dom.UserChanges{}, err
		}
		out.Name = &name
	}
	if req.Email != nil {
		email, err := userEmail(*req.Email)
		if err != nil {
			return dom.UserChanges{}, err
		}
		out.Email = &email
	}
	if req.Password != nil {
		if err := password(*req.Password); err != nil {
			return dom.UserChanges{}, err
		}
		pw := *req.Password
		out.Password = &pw
	}
	if req.Role != nil {
		role := dom.Role(strings.ToLower(strings.TrimSpace(*req.Role)))
		if role.Valid() {
			out.Role = &role
		}
	}
	return out, nil
}

// NewTask validates a create request. Status and priority default to pending/medium.
func NewTask(req dto.CreateTaskRequest) (dom.TaskDraft, error) {
	title, err := taskTitle(req.Title)
	if err != nil {
		return dom.TaskDraft{}, err
	}
	desc, err := taskDescription(req.Description)
	if err != nil {
		return dom.TaskDraft{}, err
	}
	if strings.TrimSpace(req.User) == "" {
		return dom.TaskDraft{}, fieldErr("user", "user is required")
	}
	userID, err := ID("user", req.User)
	if err != nil {
		return dom.TaskDraft{}, err
	}
	return dom.TaskDraft{
		Title:       title,
		Description: desc,
		Status:      statusOr(req.Status, dom.StatusPending),
		Priority:    priorityOr(req.Priority, dom.PriorityMedium),
		UserID:      userID,
	}, nil
}

// TaskChanges validates a partial update. Unknown status/priority values leave the field unchanged.
func TaskChanges(req dto.UpdateTaskRequest) (dom.TaskPatch, error) {
	var out dom.TaskPatch
	if req.Title != nil {
		title, err := taskTitle(*req.Title)
		if err != nil {
			return dom.TaskPatch{}, err
		}
		out.Title = &title
	}
	if req.Description != nil {
		desc, err := taskDescription(*req.Description)
		if err != nil {
			return dom.TaskPatch{}, err
		}
		out.Description = &desc
	}
	if req.Status != nil {
		if s := dom.TaskStatus(normalizeEnum(*req.Status)); s.Valid() {
			out.Status = &s
		}
	}
	if req.Priority != nil {
		if p := dom.TaskPriority(normalizeEnum(*req.Priority)); p.Valid() {
			out.Priority = &p
		}
	}
	if req.User != nil {
		userID, err := ID("user", *req.User)
		if err != nil {
			return dom.TaskPatch{}, err
		}
		out.UserID = &userID
	}
	return out, nil
}

// FromBindError turns a JSON decoding failure into a field-level Error.
func FromBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return fieldErr(field, "%s must be a %s", field, typeErr.Type.String())
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fieldErr("body", "malformed JSON body")
	}
	if errors.Is(err, io.EOF) {
		return fieldErr("body", "request body is required")
	}
	return fieldErr("body", "invalid request body")
}

func userName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fieldErr("name", "name is required")
	}
	if utf8.RuneCountInString(name) > MaxUserNameLen {
		return "", fieldErr("name", "name cannot exceed %d characters", MaxUserNameLen)
	}
	return name, nil
}

func userEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fieldErr("email", "email is required")
	}
	if err := v.Var(email, "email,max=254"); err != nil {
		return "", fieldErr("email", "email must be a valid address")
	}
	return email, nil
}

// password counts characters for the minimum but bytes for the maximum:
// bcrypt rejects input longer than 72 bytes.
func password(raw string) error {
	if raw == "" {
		return fieldErr("password", "password is required")
	}
	if err := v.Var(raw, fmt.Sprintf("min=%d", MinPasswordLen)); err != nil || len(raw) > MaxPasswordBytes {
		return fieldErr("password", "password must be at least %d characters and at most %d bytes", MinPasswordLen, MaxPasswordBytes)
	}
	return nil
}

func taskTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", fieldErr("title", "please add a title")
	}
	if utf8.RuneCountInString(title) > MaxTaskTitleLen {
		return "", fieldErr("title", "title cannot be more than %d characters", MaxTaskTitleLen)
	}
	return title, nil
}

func taskDescription(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fieldErr("description", "please add a description")
	}
	if utf8.RuneCountInString(raw) > MaxTaskDescLen {
		return "", fieldErr("description", "description cannot be more than %d characters", MaxTaskDescLen)
	}
	return raw, nil
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func statusOr(raw string, def dom.TaskStatus) dom.TaskStatus {
	if s := dom.TaskStatus(normalizeEnum(raw)); s.Valid() {
		return s
	}
	return def
}

func priorityOr(raw string, def dom.TaskPriority) dom.TaskPriority {
	if p := dom.TaskPriority(normalizeEnum(raw)); p.Valid() {
		return p
	}
	return def
}
