//go:build integration

package repo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/utils"
)

// Run with: PG_TEST_DSN=postgres://... go test -tags integration ./internal/repo/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	require.NoError(t, err)
	require.NoError(t, goose.Up(db, "../../migrations"))
	require.NoError(t, db.Close())

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPGTodoRepo_SessionPredicate(t *testing.T) {
	ctx := context.Background()
	r := NewPGTodoRepo(testPool(t))
	owner, other := uuid.NewString(), uuid.NewString()

	td, err := r.Create(ctx, owner, "owned")
	require.NoError(t, err)

	_, err = r.GetByID(ctx, other, td.ID)
	assert.True(t, utils.IsNoRows(err))
	_, err = r.Toggle(ctx, other, td.ID)
	assert.True(t, utils.IsNoRows(err))
	ok, err := r.Delete(ctx, other, td.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	toggled, err := r.Toggle(ctx, owner, td.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.True(t, toggled.UpdatedAt.After(td.UpdatedAt))

	n, err := r.DeleteCompleted(ctx, other)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := r.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err = r.DeleteCompleted(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err = r.Delete(ctx, owner, td.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPGUserAndTaskRepo(t *testing.T) {
	ctx := context.Background()
	pool := testPool(t)
	users, tasks := NewPGUserRepo(pool), NewPGTaskRepo(pool)
	email := uuid.NewString() + "@example.com"

	u, err := users.Create(ctx, dom.User{Name: "Ada", Email: email, Role: dom.RoleUser, PasswordHash: "x"})
	require.NoError(t, err)
	_, err = users.Create(ctx, dom.User{Name: "Dup", Email: email, Role: dom.RoleUser, PasswordHash: "x"})
	assert.True(t, utils.IsPGUniqueViolation(err))

	name := "Ada L."
	updated, err := users.Update(ctx, u.ID, dom.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, email, updated.Email, "unset fields keep their value")

	found, err := users.GetByIDs(ctx, []string{u.ID, uuid.NewString()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, u.ID, found[0].ID)

	task, err := tasks.Create(ctx, dom.Task{Title: "t", Description: "d", Status: dom.StatusPending, Priority: dom.PriorityLow, UserID: u.ID})
	require.NoError(t, err)
	status := dom.StatusCompleted
	task, err = tasks.Update(ctx, task.ID, dom.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, dom.StatusCompleted, task.Status)
	assert.Equal(t, dom.PriorityLow, task.Priority)

	ok, err := users.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	orphans, err := tasks.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, orphans, 1, "tasks survive their user")

	ok, err = tasks.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
