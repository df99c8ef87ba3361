package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/uniresto/meal-reservation/internal/model"
	"github.com/uniresto/meal-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,matricule,first_name,last_name,email,password_hash,role,is_active,quota_remaining,created_at,updated_at"

// NewUserParams carries the fields needed to insert an account.
type NewUserParams struct {
	Matricule string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      model.Role
	Quota     int
}

// Create inserts a user and returns its ID.  Duplicate email or
// matricule rows are reported through the corresponding sentinel.
func (r *UserRepo) Create(ctx context.Context, p NewUserParams, cost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	hash, err := utils.HashPassword(p.Password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (matricule, first_name, last_name, email, password_hash, role, quota_remaining) VALUES (?,?,?,?,?,?,?)",
		strings.TrimSpace(p.Matricule), p.FirstName, p.LastName, email, hash, p.Role.String(), p.Quota)
	if err != nil {
		// 1062 = duplicate key; the error text names the violated index
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "matricule") {
				return 0, ErrMatriculeExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Matricule, &u.FirstName, &u.LastName, &u.Email,
		&u.PasswordHash, &role, &u.IsActive, &u.QuotaRemaining, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if parsed, ok := model.ParseRole(role); ok {
		u.Role = parsed
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ListByRole returns all users holding the given role, newest first.
func (r *UserRepo) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? ORDER BY created_at DESC", role.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var roleStr string
		if err := rows.Scan(&u.ID, &u.Matricule, &u.FirstName, &u.LastName, &u.Email,
			&u.PasswordHash, &roleStr, &u.IsActive, &u.QuotaRemaining, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if parsed, ok := model.ParseRole(roleStr); ok {
			u.Role = parsed
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteStaff removes a staff account.  The role predicate keeps the
// admin endpoint from deleting admins or students; when the row exists
// but holds another role, ErrForbidden is returned so the handler can
// distinguish it from a plain miss.
func (r *UserRepo) DeleteStaff(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=? AND role=?", id, model.RoleStaff.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id=?)", id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrForbidden
		}
		return sql.ErrNoRows
	}
	return nil
}
