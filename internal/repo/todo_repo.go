package repo

import (
	"context"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TodoRepo persists todos. Every method takes the owning session id and
// filters on it; there is no unscoped accessor.
type TodoRepo interface {
	Create(ctx context.Context, sessionID, task string) (dom.Todo, error)
	GetByID(ctx context.Context, sessionID, id string) (dom.Todo, error)
	List(ctx context.Context, sessionID string) ([]dom.Todo, error)
	Toggle(ctx context.Context, sessionID, id string) (dom.Todo, error)
	Delete(ctx context.Context, sessionID, id string) (bool, error)
	DeleteCompleted(ctx context.Context, sessionID string) (int64, error)
}

const todoColumns = `id::text, task, completed, session_id, created_at, updated_at`

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func scanTodo(row pgx.Row) (dom.Todo, error) {
	var t dom.Todo
	err := row.Scan(&t.ID, &t.Task, &t.Completed, &t.SessionID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGTodoRepo) Create(ctx context.Context, sessionID, task string) (dom.Todo, error) {
	query := `
		INSERT INTO todos (task, session_id)
		VALUES ($1, $2)
		RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query, task, sessionID))
}

func (r *PGTodoRepo) GetByID(ctx context.Context, sessionID, id string) (dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND session_id = $2`
	return scanTodo(r.db.QueryRow(ctx, query, id, sessionID))
}

func (r *PGTodoRepo) List(ctx context.Context, sessionID string) ([]dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE session_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]dom.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Toggle flips completed in a single statement, so the ownership check and the write cannot diverge.
func (r *PGTodoRepo) Toggle(ctx context.Context, sessionID, id string) (dom.Todo, error) {
	query := `
		UPDATE todos SET completed = NOT completed, updated_at = clock_timestamp()
		WHERE id = $1 AND session_id = $2
		RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query, id, sessionID))
}

func (r *PGTodoRepo) Delete(ctx context.Context, sessionID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND session_id = $2`, id, sessionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGTodoRepo) DeleteCompleted(ctx context.Context, sessionID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE session_id = $1 AND completed = TRUE`, sessionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
