package repo

import (
	"context"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	Create(ctx context.Context, u dom.User) (dom.User, error)
	GetByID(ctx context.Context, id string) (dom.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]dom.User, error)
	List(ctx context.Context) ([]dom.User, error)
	Update(ctx context.Context, id string, patch dom.UserPatch) (dom.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

const userColumns = `id::text, name, email, role, password_hash, created_at, updated_at`

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

func scanUser(row pgx.Row) (dom.User, error) {
	var u dom.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	u.Role = dom.Role(role)
	return u, err
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, u.Name, u.Email, string(u.Role), u.PasswordHash))
}

func (r *PGUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByIDs returns the users that exist among ids, in no particular order.
func (r *PGUserRepo) GetByIDs(ctx context.Context, ids []string) ([]dom.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

func (r *PGUserRepo) List(ctx context.Context) ([]dom.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// Update applies the non-nil fields of patch. COALESCE keeps the stored value for NULL parameters.
func (r *PGUserRepo) Update(ctx context.Context, id string, patch dom.UserPatch) (dom.User, error) {
	var role *string
	if patch.Role != nil {
		s := string(*patch.Role)
		role = &s
	}
	query := `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			role = COALESCE($4, role),
			password_hash = COALESCE($5, password_hash),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, patch.Name, patch.Email, role, patch.PasswordHash))
}

// Delete removes the user only. Tasks that reference it are left in place.
func (r *PGUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func collectUsers(rows pgx.Rows) ([]dom.User, error) {
	defer rows.Close()
	list := make([]dom.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
