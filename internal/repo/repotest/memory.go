// Package repotest provides in-memory implementations of the repo interfaces
// for tests. They follow the SQL semantics of the Postgres repositories,
// including pgx.ErrNoRows for missing rows and 23505 for duplicate emails.
package repotest

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/repo"
)

var (
	_ repo.TodoRepo = (*TodoRepo)(nil)
	_ repo.UserRepo = (*UserRepo)(nil)
	_ repo.TaskRepo = (*TaskRepo)(nil)
)

// Clock returns strictly increasing times so ordering and updatedAt checks are deterministic.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// TodoRepo mirrors the SQL of PGTodoRepo: every predicate includes session_id.
type TodoRepo struct {
	mu    sync.Mutex
	clock *Clock
	rows  map[string]dom.Todo
	Err   error
}

func NewTodoRepo() *TodoRepo {
	return &TodoRepo{clock: NewClock(), rows: map[string]dom.Todo{}}
}

func (r *TodoRepo) Create(_ context.Context, sessionID, task string) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.Todo{}, r.Err
	}
	now := r.clock.Now()
	t := dom.Todo{ID: uuid.NewString(), Task: task, SessionID: sessionID, CreatedAt: now, UpdatedAt: now}
	r.rows[t.ID] = t
	return t, nil
}

func (r *TodoRepo) GetByID(_ context.Context, sessionID, id string) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok || t.SessionID != sessionID {
		return dom.Todo{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *TodoRepo) List(_ context.Context, sessionID string) ([]dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	list := make([]dom.Todo, 0)
	for _, t := range r.rows {
		if t.SessionID == sessionID {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *TodoRepo) Toggle(_ context.Context, sessionID, id string) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok || t.SessionID != sessionID {
		return dom.Todo{}, pgx.ErrNoRows
	}
	t.Completed = !t.Completed
	t.UpdatedAt = r.clock.Now()
	r.rows[id] = t
	return t, nil
}

func (r *TodoRepo) Delete(_ context.Context, sessionID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok || t.SessionID != sessionID {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// Len counts todos across all sessions.
func (r *TodoRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *TodoRepo) DeleteCompleted(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.rows {
		if t.SessionID == sessionID && t.Completed {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// TodoCache records calls so tests can assert hit/miss/invalidate behaviour.
// Like the Redis cache, lists are kept per generation.
type TodoCache struct {
	mu          sync.Mutex
	gens        map[string]int64
	lists       map[string][]dom.Todo
	Invalidated []string
	GetErr      error
	GenErr      error
}

func NewTodoCache() *TodoCache {
	return &TodoCache{gens: map[string]int64{}, lists: map[string][]dom.Todo{}}
}

func cacheKey(sessionID string, gen int64) string {
	return sessionID + ":" + strconv.FormatInt(gen, 10)
}

func (c *TodoCache) Generation(_ context.Context, sessionID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GenErr != nil {
		return 0, c.GenErr
	}
	return c.gens[sessionID], nil
}

func (c *TodoCache) GetList(_ context.Context, sessionID string, gen int64) ([]dom.Todo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	return c.lists[cacheKey(sessionID, gen)], nil
}

func (c *TodoCache) SetList(_ context.Context, sessionID string, gen int64, list []dom.Todo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[cacheKey(sessionID, gen)] = list
	return nil
}

func (c *TodoCache) Invalidate(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[sessionID]++
	c.Invalidated = append(c.Invalidated, sessionID)
	return nil
}

// Current returns what a reader would be served for the session right now.
func (c *TodoCache) Current(sessionID string) []dom.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists[cacheKey(sessionID, c.gens[sessionID])]
}

// UserRepo enforces the unique email index.
type UserRepo struct {
	mu    sync.Mutex
	clock *Clock
	rows  map[string]dom.User
	Err   error
}

func NewUserRepo() *UserRepo {
	return &UserRepo{clock: NewClock(), rows: map[string]dom.User{}}
}

func (r *UserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Email == u.Email {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	now := r.clock.Now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.rows[u.ID] = u
	return u, nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	u, ok := r.rows[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *UserRepo) GetByIDs(_ context.Context, ids []string) ([]dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []dom.User
	for _, id := range ids {
		if u, ok := r.rows[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepo) List(_ context.Context) ([]dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]dom.User, 0, len(r.rows))
	for _, u := range r.rows {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *UserRepo) Update(_ context.Context, id string, p dom.UserPatch) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	if p.Email != nil {
		for otherID, other := range r.rows {
			if otherID != id && other.Email == *p.Email {
				return dom.User{}, &pgconn.PgError{Code: "23505"}
			}
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	u.UpdatedAt = r.clock.Now()
	r.rows[id] = u
	return u, nil
}

func (r *UserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// TaskRepo has no foreign key on user_id, like the tasks table.
type TaskRepo struct {
	mu    sync.Mutex
	clock *Clock
	rows  map[string]dom.Task
}

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{clock: NewClock(), rows: map[string]dom.Task{}}
}

func (r *TaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = now, now
	r.rows[t.ID] = t
	return t, nil
}

func (r *TaskRepo) GetByID(_ context.Context, id string) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (r *TaskRepo) List(_ context.Context) ([]dom.Task, error) {
	return r.filter(func(dom.Task) bool { return true }), nil
}

func (r *TaskRepo) ListByUser(_ context.Context, userID string) ([]dom.Task, error) {
	return r.filter(func(t dom.Task) bool { return t.UserID == userID }), nil
}

func (r *TaskRepo) filter(keep func(dom.Task) bool) []dom.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]dom.Task, 0)
	for _, t := range r.rows {
		if keep(t) {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (r *TaskRepo) Update(_ context.Context, id string, p dom.TaskPatch) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return dom.Task{}, pgx.ErrNoRows
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
	t.UpdatedAt = r.clock.Now()
	r.rows[id] = t
	return t, nil
}

// Len counts stored tasks.
func (r *TaskRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *TaskRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

// ErrStoreDown simulates a lost database connection.
var ErrStoreDown = errors.New("connection refused")
