package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kriskris-27/the-dev-ops-mern/internal/auth"
	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/repo/repotest"
)

func newSession(t *testing.T) auth.Session {
	t.Helper()
	token, err := auth.NewToken()
	require.NoError(t, err)
	s, err := auth.SessionFromToken(token)
	require.NoError(t, err)
	return s
}

func newTodoService() (*TodoService, *repotest.TodoRepo) {
	r := repotest.NewTodoRepo()
	return NewTodoService(r, nil, nil), r
}

func TestTodoService_AddThenList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTodoService()
	sess := newSession(t)

	created, err := svc.Add(ctx, sess, "buy milk")
	require.NoError(t, err)
	assert.False(t, created.Completed)
	assert.Equal(t, sess.ID(), created.SessionID)

	list, err := svc.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list.Todos, 1)
	assert.Equal(t, created.ID, list.Todos[0].ID)
	assert.False(t, list.Todos[0].Completed)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 0, list.Completed)
	assert.Equal(t, 1, list.Pending)
}

func TestTodoService_ListNewestFirstWithCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTodoService()
	sess := newSession(t)

	first, err := svc.Add(ctx, sess, "first")
	require.NoError(t, err)
	second, err := svc.Add(ctx, sess, "second")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, sess, first.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list.Todos, 2)
	assert.Equal(t, second.ID, list.Todos[0].ID)
	assert.Equal(t, first.ID, list.Todos[1].ID)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, 1, list.Completed)
	assert.Equal(t, 1, list.Pending)
}

func TestTodoService_SessionIsolation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTodoService()
	a, b := newSession(t), newSession(t)

	todo, err := svc.Add(ctx, a, "private")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, a, todo.ID)
	require.NoError(t, err)

	list, err := svc.List(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, list.Todos)

	_, err = svc.Get(ctx, b, todo.ID)
	assert.ErrorIs(t, err, dom.ErrNotFound)
	_, err = svc.Toggle(ctx, b, todo.ID)
	assert.ErrorIs(t, err, dom.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, b, todo.ID), dom.ErrNotFound)

	n, err := svc.ClearCompleted(ctx, b)
	require.NoError(t, err)
	assert.Zero(t, n)

	still, err := svc.Get(ctx, a, todo.ID)
	require.NoError(t, err)
	assert.True(t, still.Completed, "b's toggle must not have changed a's todo")
	assert.Equal(t, 1, repo.Len())
}

func TestTodoService_ForeignIDLooksLikeMissingID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTodoService()
	a, b := newSession(t), newSession(t)

	todo, err := svc.Add(ctx, a, "x")
	require.NoError(t, err)

	_, foreignErr := svc.Toggle(ctx, b, todo.ID)
	_, missingErr := svc.Toggle(ctx, b, "00000000-0000-4000-8000-000000000000")
	assert.Equal(t, missingErr.Error(), foreignErr.Error())
}

func TestTodoService_ToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTodoService()
	sess := newSession(t)

	orig, err := svc.Add(ctx, sess, "walk dog")
	require.NoError(t, err)

	once, err := svc.Toggle(ctx, sess, orig.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)
	assert.True(t, once.UpdatedAt.After(orig.UpdatedAt))

	twice, err := svc.Toggle(ctx, sess, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig.Completed, twice.Completed)
	assert.True(t, twice.UpdatedAt.After(once.UpdatedAt))
	assert.Equal(t, orig.CreatedAt, twice.CreatedAt)
}

func TestTodoService_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTodoService()
	sess := newSession(t)

	var done []string
	for i, task := range []string{"a", "b", "c", "d"} {
		td, err := svc.Add(ctx, sess, task)
		require.NoError(t, err)
		if i%2 == 0 {
			_, err := svc.Toggle(ctx, sess, td.ID)
			require.NoError(t, err)
			done = append(done, td.ID)
		}
	}

	n, err := svc.ClearCompleted(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, int64(len(done)), n)

	list, err := svc.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list.Todos, 2)
	for _, td := range list.Todos {
		assert.False(t, td.Completed)
		assert.NotContains(t, done, td.ID)
	}

	n, err = svc.ClearCompleted(ctx, sess)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTodoService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTodoService()
	sess := newSession(t)

	td, err := svc.Add(ctx, sess, "x")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, sess, td.ID))
	assert.ErrorIs(t, svc.Delete(ctx, sess, td.ID), dom.ErrNotFound)
}

func TestTodoService_RequiresSession(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTodoService()

	_, err := svc.Add(ctx, auth.Session{}, "x")
	assert.ErrorIs(t, err, auth.ErrNoSession)
	_, err = svc.List(ctx, auth.Session{})
	assert.ErrorIs(t, err, auth.ErrNoSession)
	_, err = svc.Toggle(ctx, auth.Session{}, "id")
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.ErrorIs(t, svc.Delete(ctx, auth.Session{}, "id"), auth.ErrNoSession)
	_, err = svc.ClearCompleted(ctx, auth.Session{})
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Zero(t, repo.Len())
}

func TestTodoService_StoreFailureIsInternal(t *testing.T) {
	svc, repo := newTodoService()
	repo.Err = repotest.ErrStoreDown

	_, err := svc.Add(context.Background(), newSession(t), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, repotest.ErrStoreDown)
	assert.NotErrorIs(t, err, dom.ErrNotFound)
}

func TestTodoService_CacheFillAndInvalidate(t *testing.T) {
	ctx := context.Background()
	repo := repotest.NewTodoRepo()
	cache := repotest.NewTodoCache()
	svc := NewTodoService(repo, cache, nil)
	a, b := newSession(t), newSession(t)

	_, err := svc.Add(ctx, a, "cached")
	require.NoError(t, err)

	list, err := svc.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, list.Todos, 1)

	assert.Len(t, cache.Current(a.ID()), 1)

	other, err := svc.List(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, other.Todos, "cache is keyed per session")

	_, err = svc.Add(ctx, a, "second")
	require.NoError(t, err)
	assert.Nil(t, cache.Current(a.ID()), "write must invalidate the session's list")

	list, err = svc.List(ctx, a)
	require.NoError(t, err)
	assert.Len(t, list.Todos, 2)
}

func TestTodoService_CacheErrorFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	repo := repotest.NewTodoRepo()
	cache := repotest.NewTodoCache()
	cache.GetErr = repotest.ErrStoreDown
	svc := NewTodoService(repo, cache, nil)
	sess := newSession(t)

	_, err := svc.Add(ctx, sess, "x")
	require.NoError(t, err)
	list, err := svc.List(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, list.Todos, 1)
}

func TestTodoService_CacheGenerationErrorFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	cache := repotest.NewTodoCache()
	cache.GenErr = repotest.ErrStoreDown
	svc := NewTodoService(repotest.NewTodoRepo(), cache, nil)
	sess := newSession(t)

	_, err := svc.Add(ctx, sess, "x")
	require.NoError(t, err)
	list, err := svc.List(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, list.Todos, 1)
}

// listHookRepo runs afterList once, between the store read and the cache fill.
type listHookRepo struct {
	*repotest.TodoRepo
	afterList func()
}

func (r *listHookRepo) List(ctx context.Context, sessionID string) ([]dom.Todo, error) {
	list, err := r.TodoRepo.List(ctx, sessionID)
	if f := r.afterList; f != nil {
		r.afterList = nil
		f()
	}
	return list, err
}

func TestTodoService_WriteDuringCacheFillIsNotHidden(t *testing.T) {
	ctx := context.Background()
	store := &listHookRepo{TodoRepo: repotest.NewTodoRepo()}
	svc := NewTodoService(store, repotest.NewTodoCache(), nil)
	sess := newSession(t)

	store.afterList = func() {
		_, err := svc.Add(ctx, sess, "concurrent add")
		assert.NoError(t, err)
	}

	before, err := svc.List(ctx, sess)
	require.NoError(t, err)
	assert.Zero(t, before.Count)

	after, err := svc.List(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, 1, after.Count, "list read before the add must not be served after it")
	assert.Equal(t, "concurrent add", after.Todos[0].Task)
	assert.Equal(t, 1, store.Len())
}

// gatedRepo blocks List until release is closed and then honours ctx.
type gatedRepo struct {
	*repotest.TodoRepo
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedRepo) List(ctx context.Context, sessionID string) ([]dom.Todo, error) {
	r.once.Do(func() { close(r.started) })
	<-r.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.TodoRepo.List(ctx, sessionID)
}

func TestTodoService_CancelledCallerDoesNotFailSharedFill(t *testing.T) {
	store := &gatedRepo{
		TodoRepo: repotest.NewTodoRepo(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	svc := NewTodoService(store, repotest.NewTodoCache(), nil)
	sess := newSession(t)
	_, err := store.Create(context.Background(), sess.ID(), "x")
	require.NoError(t, err)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.List(first, sess)
		firstErr <- err
	}()
	<-store.started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		list dom.TodoList
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := svc.List(context.Background(), sess)
		second <- result{list, err}
	}()
	close(store.release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.list.Count)
}
