package repository

import (
	"context"
	"errors"
	"strings"

	"attendance.service/internal/core/model"
	"attendance.service/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password_hash, role, employee_id, department, created_at`

// UserStore is the PostgreSQL implementation of UserRepository.
type UserStore struct {
	db database.Queryer
}

func NewUserRepository(db database.Queryer) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user. A taken email maps to model.ErrEmailAlreadyExists.
func (r *UserStore) Create(ctx context.Context, u *model.User) (*model.User, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO users (id, name, email, password_hash, role, employee_id, department, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+userColumns,
		u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), u.EmployeeID, u.Department, u.CreatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

func (r *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, translatePgError(err)
	}
	return u, nil
}

func (r *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, translatePgError(err)
	}
	return u, nil
}

// Count returns the roster size.
func (r *UserStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, translatePgError(err)
	}
	return int(n), nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.EmployeeID, &u.Department, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
