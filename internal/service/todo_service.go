package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/kriskris-27/the-dev-ops-mern/internal/auth"
	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/repo"
	"github.com/kriskris-27/the-dev-ops-mern/internal/utils"

	"golang.org/x/sync/singleflight"
)

// TodoListCache is the per-session list cache. *cache.TodoCache implements it.
// Lists are stored per generation; Invalidate moves the session to a new
// generation, so a fill that read the store before a write is never served.
type TodoListCache interface {
	Generation(ctx context.Context, sessionID string) (int64, error)
	GetList(ctx context.Context, sessionID string, gen int64) ([]dom.Todo, error)
	SetList(ctx context.Context, sessionID string, gen int64, list []dom.Todo) error
	Invalidate(ctx context.Context, sessionID string) error
}

// TodoService is the session-scoped todo store. Every method requires an
// auth.Session, and every repository call passes its id.
type TodoService struct {
	repo  repo.TodoRepo
	cache TodoListCache
	log   *slog.Logger
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c TodoListCache, log *slog.Logger) *TodoService {
	if log == nil {
		log = slog.Default()
	}
	return &TodoService{repo: r, cache: c, log: log}
}

// List returns the session's todos newest first, with derived counters.
func (s *TodoService) List(ctx context.Context, sess auth.Session) (dom.TodoList, error) {
	if !sess.Valid() {
		return dom.TodoList{}, auth.ErrNoSession
	}
	sid := sess.ID()
	if s.cache == nil {
		return s.listFromStore(ctx, sid)
	}
	gen, err := s.cache.Generation(ctx, sid)
	if err != nil {
		s.log.Warn("todo cache generation read failed", "error", err)
		return s.listFromStore(ctx, sid)
	}

	// The fill outlives the request that started it; waiters stop on their own ctx.
	fillCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan("list:"+sid+":"+strconv.FormatInt(gen, 10), func() (interface{}, error) {
		return s.fillList(fillCtx, sid, gen)
	})
	select {
	case <-ctx.Done():
		return dom.TodoList{}, fmt.Errorf("list todos: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return dom.TodoList{}, fmt.Errorf("list todos: %w", res.Err)
		}
		return dom.NewTodoList(res.Val.([]dom.Todo)), nil
	}
}

func (s *TodoService) listFromStore(ctx context.Context, sid string) (dom.TodoList, error) {
	list, err := s.repo.List(ctx, sid)
	if err != nil {
		return dom.TodoList{}, fmt.Errorf("list todos: %w", err)
	}
	return dom.NewTodoList(list), nil
}

func (s *TodoService) fillList(ctx context.Context, sid string, gen int64) ([]dom.Todo, error) {
	list, err := s.cache.GetList(ctx, sid, gen)
	if err != nil {
		s.log.Warn("todo cache read failed", "error", err)
	} else if list != nil {
		return list, nil
	}
	list, err = s.repo.List(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetList(ctx, sid, gen, list); err != nil {
		s.log.Warn("todo cache write failed", "error", err)
	}
	return list, nil
}

// Get returns one todo owned by the session.
func (s *TodoService) Get(ctx context.Context, sess auth.Session, id string) (dom.Todo, error) {
	if !sess.Valid() {
		return dom.Todo{}, auth.ErrNoSession
	}
	t, err := s.repo.GetByID(ctx, sess.ID(), id)
	if err != nil {
		return dom.Todo{}, todoErr("get todo", err)
	}
	return t, nil
}

// Add stores a new todo for the session. task must already be validated.
func (s *TodoService) Add(ctx context.Context, sess auth.Session, task string) (dom.Todo, error) {
	if !sess.Valid() {
		return dom.Todo{}, auth.ErrNoSession
	}
	t, err := s.repo.Create(ctx, sess.ID(), task)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	s.invalidateCache(ctx, sess.ID())
	return t, nil
}

// Toggle flips completed. A todo of another session is reported as not found.
func (s *TodoService) Toggle(ctx context.Context, sess auth.Session, id string) (dom.Todo, error) {
	if !sess.Valid() {
		return dom.Todo{}, auth.ErrNoSession
	}
	t, err := s.repo.Toggle(ctx, sess.ID(), id)
	if err != nil {
		return dom.Todo{}, todoErr("toggle todo", err)
	}
	s.invalidateCache(ctx, sess.ID())
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, sess auth.Session, id string) error {
	if !sess.Valid() {
		return auth.ErrNoSession
	}
	ok, err := s.repo.Delete(ctx, sess.ID(), id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if !ok {
		return dom.NotFound("Todo")
	}
	s.invalidateCache(ctx, sess.ID())
	return nil
}

// ClearCompleted removes the session's completed todos and returns how many were removed.
func (s *TodoService) ClearCompleted(ctx context.Context, sess auth.Session) (int64, error) {
	if !sess.Valid() {
		return 0, auth.ErrNoSession
	}
	n, err := s.repo.DeleteCompleted(ctx, sess.ID())
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	if n > 0 {
		s.invalidateCache(ctx, sess.ID())
	}
	return n, nil
}

func (s *TodoService) invalidateCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, sessionID); err != nil {
		s.log.Warn("todo cache invalidation failed", "error", err)
	}
}

func todoErr(op string, err error) error {
	if utils.IsNoRows(err) {
		return dom.NotFound("Todo")
	}
	return fmt.Errorf("%s: %w", op, err)
}
