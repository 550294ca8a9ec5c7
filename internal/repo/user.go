package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/timetable/internal/models"
)

// profileColumns whitelists the columns a sparse profile patch may touch.
var profileColumns = map[string]string{
	"display_name": "display_name",
	"department":   "department",
	"phone":        "phone",
}

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================

// Create inserts the user and an empty profile row in one transaction.
// A taken username yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := &models.User{PasswordHash: passwordHash}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING username, created_at
	`, username, passwordHash).Scan(&user.Username, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_profile (username) VALUES ($1)`, username,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT username, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Delete User
// ==========================

// Delete removes the user; profile and schedule rows go with it via ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ==========================
// Profile
// ==========================
func (r *UserRepo) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	query := `
		SELECT username, COALESCE(display_name, username), COALESCE(department, ''),
		       COALESCE(phone, ''), created_at
		FROM user_profile
		WHERE username = $1
	`

	p := &models.Profile{}

	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&p.Username, &p.DisplayName, &p.Department, &p.Phone, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// DisplayName returns the name stamped on new schedule entries as instructor.
// A user without a profile row or with a NULL display_name gets the username.
func (r *UserRepo) DisplayName(ctx context.Context, username string) (string, error) {
	query := `
		SELECT COALESCE(p.display_name, u.username)
		FROM users u
		LEFT JOIN user_profile p ON p.username = u.username
		WHERE u.username = $1
	`

	var name string
	err := r.DB.QueryRowContext(ctx, query, username).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// UpdateProfileField sets one whitelisted profile column and returns the number of rows touched.
func (r *UserRepo) UpdateProfileField(ctx context.Context, username, field, value string) (int64, error) {
	col, ok := profileColumns[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, field)
	}

	result, err := r.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE user_profile SET %s = $1 WHERE username = $2`, col),
		value, username,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
