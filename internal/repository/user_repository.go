package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"

	"github.com/jmoiron/sqlx"
)

const accountColumns = `id, email, username, password_hash, roles, is_active, otp_code, otp_expires_at,
		approved_by, approved_at, created_at, updated_at`

const (
	queryCreateAccount = `
		INSERT INTO users (email, username, password_hash, roles, is_active, created_at, updated_at)
		VALUES (:email, :username, :password_hash, :roles, :is_active, :created_at, :updated_at)
		RETURNING id`
	queryAccountByID       = `SELECT ` + accountColumns + ` FROM users WHERE id = $1`
	queryAccountByUsername = `SELECT ` + accountColumns + ` FROM users WHERE username = $1`
	queryEmailExists       = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	queryUsernameExists    = `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`
	queryActiveAdmins      = `SELECT ` + accountColumns + ` FROM users WHERE 'admin' = ANY(roles) AND is_active = true ORDER BY id`
	queryListAccounts      = `SELECT ` + accountColumns + ` FROM users ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`
	queryListActive        = `SELECT ` + accountColumns + ` FROM users WHERE is_active = true ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`
	queryListPending       = `SELECT ` + accountColumns + ` FROM users WHERE is_active = false ORDER BY created_at DESC, id DESC`
	querySetOTP            = `UPDATE users SET otp_code = $1, otp_expires_at = $2, updated_at = $3 WHERE id = $4`
	queryConsumeOTP        = `
		UPDATE users SET otp_code = NULL, otp_expires_at = NULL, updated_at = $1
		WHERE id = $2 AND otp_code = $3 AND otp_expires_at > $1`
	queryActivate = `
		UPDATE users SET is_active = true, approved_by = $1, approved_at = $2, updated_at = $2
		WHERE id = $3 AND is_active = false`
	queryDeactivate    = `UPDATE users SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active = true`
	queryDeletePending = `DELETE FROM users WHERE id = $1 AND is_active = false`
	queryGrantRole     = `
		UPDATE users SET roles = array_append(roles, $1), updated_at = $2
		WHERE id = $3 AND is_active = true AND NOT ($1 = ANY(roles))`
	queryUpdatePassword = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, account *models.Account) error {
	rows, err := r.db.NamedQueryContext(ctx, queryCreateAccount, account)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users_email_key"):
			return apperrors.ErrEmailTaken
		case isUniqueViolation(err, "users_username_key"):
			return apperrors.ErrUsernameTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&account.ID); err != nil {
			return fmt.Errorf("scan account id: %w", err)
		}
	}

	return rows.Err()
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account

	err := r.db.GetContext(ctx, &account, queryAccountByID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}

	return &account, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account

	err := r.db.GetContext(ctx, &account, queryAccountByUsername, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account by username: %w", err)
	}

	return &account, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, queryEmailExists, email); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, queryUsernameExists, username); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (r *userRepository) ListActiveAdmins(ctx context.Context) ([]models.Account, error) {
	admins := []models.Account{}
	if err := r.db.SelectContext(ctx, &admins, queryActiveAdmins); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

func (r *userRepository) List(ctx context.Context, includeInactive bool, skip, limit int) ([]models.Account, error) {
	query := queryListActive
	if includeInactive {
		query = queryListAccounts
	}

	accounts := []models.Account{}
	if err := r.db.SelectContext(ctx, &accounts, query, skip, limit); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *userRepository) ListPending(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := r.db.SelectContext(ctx, &accounts, queryListPending); err != nil {
		return nil, fmt.Errorf("list pending accounts: %w", err)
	}
	return accounts, nil
}

func (r *userRepository) SetOTP(ctx context.Context, id int64, code string, expiresAt, now time.Time) error {
	result, err := r.db.ExecContext(ctx, querySetOTP, code, expiresAt, now, id)
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return requireRow(result, apperrors.ErrAccountNotFound)
}

func (r *userRepository) ConsumeOTP(ctx context.Context, id int64, code string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, queryConsumeOTP, now, id, code)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return affected(result)
}

func (r *userRepository) Activate(ctx context.Context, id, approverID int64, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, queryActivate, approverID, now, id)
	if err != nil {
		return false, fmt.Errorf("activate account %d: %w", id, err)
	}
	return affected(result)
}

func (r *userRepository) Deactivate(ctx context.Context, id int64, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, queryDeactivate, now, id)
	if err != nil {
		return false, fmt.Errorf("deactivate account %d: %w", id, err)
	}
	return affected(result)
}

func (r *userRepository) DeletePending(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, queryDeletePending, id)
	if err != nil {
		return false, fmt.Errorf("delete account %d: %w", id, err)
	}
	return affected(result)
}

func (r *userRepository) GrantRole(ctx context.Context, id int64, role models.Role, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, queryGrantRole, string(role), now, id)
	if err != nil {
		return false, fmt.Errorf("grant role to account %d: %w", id, err)
	}
	return affected(result)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, now time.Time) error {
	result, err := r.db.ExecContext(ctx, queryUpdatePassword, passwordHash, now, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(result, apperrors.ErrAccountNotFound)
}
