package repo

import (
	"context"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo stores tasks with a bare user reference. Joining the user is the service's job.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context) ([]dom.Task, error)
	ListByUser(ctx context.Context, userID string) ([]dom.Task, error)
	Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
}

const taskColumns = `id::text, title, description, status, priority, user_id::text, created_at, updated_at`

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	var status, priority string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	t.Status = dom.TaskStatus(status)
	t.Priority = dom.TaskPriority(priority)
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (title, description, status, priority, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.UserID))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	return scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *PGTaskRepo) ListByUser(ctx context.Context, userID string) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *PGTaskRepo) Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	var status, priority *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}
	query := `
		UPDATE tasks SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4, status),
			priority = COALESCE($5, priority),
			user_id = COALESCE($6::uuid, user_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		id, patch.Title, patch.Description, status, priority, patch.UserID))
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func collectTasks(rows pgx.Rows) ([]dom.Task, error) {
	defer rows.Close()
	list := make([]dom.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
