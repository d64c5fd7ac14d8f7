package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

var accountColumnNames = []string{
	"id", "email", "username", "password_hash", "roles", "is_active", "otp_code", "otp_expires_at",
	"approved_by", "approved_at", "created_at", "updated_at",
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	insert := `
		INSERT INTO users (email, username, password_hash, roles, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	newAccount := func() *models.Account {
		return &models.Account{
			Email:        "a@x.com",
			Username:     "alice",
			PasswordHash: "hash",
			Roles:        models.Roles{models.RoleUser},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	t.Run("assigns the sequential id", func(t *testing.T) {
		account := newAccount()
		mock.ExpectQuery(insert).
			WithArgs("a@x.com", "alice", "hash", models.Roles{models.RoleUser}, false, now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		require.NoError(t, repo.Create(ctx, account))
		assert.Equal(t, int64(7), account.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email unique violation", func(t *testing.T) {
		mock.ExpectQuery(insert).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := repo.Create(ctx, newAccount())
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})

	t.Run("username unique violation", func(t *testing.T) {
		mock.ExpectQuery(insert).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

		err := repo.Create(ctx, newAccount())
		assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
	})

	t.Run("driver failure", func(t *testing.T) {
		mock.ExpectQuery(insert).WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, newAccount())
		assert.ErrorContains(t, err, "create account")
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		code := "123456"
		expires := created.Add(5 * time.Minute)
		rows := sqlmock.NewRows(accountColumnNames).
			AddRow(3, "a@x.com", "alice", "hash", "{user,admin}", true, code, expires, 1, created, created, created)
		mock.ExpectQuery(queryAccountByUsername).WithArgs("alice").WillReturnRows(rows)

		account, err := repo.GetByUsername(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, int64(3), account.ID)
		assert.Equal(t, models.Roles{models.RoleUser, models.RoleAdmin}, account.Roles)
		assert.True(t, account.IsAdmin())
		require.NotNil(t, account.OTPCode)
		assert.Equal(t, code, *account.OTPCode)
		require.NotNil(t, account.ApprovedBy)
		assert.Equal(t, int64(1), *account.ApprovedBy)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(queryAccountByUsername).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(accountColumnNames).
		AddRow(4, "b@x.com", "bob", "hash", "{user}", false, nil, nil, nil, nil, created, created)
	mock.ExpectQuery(queryAccountByID).WithArgs(4).WillReturnRows(rows)

	account, err := repo.GetByID(context.Background(), 4)

	require.NoError(t, err)
	assert.False(t, account.IsActive)
	assert.Nil(t, account.OTPCode)
	assert.Nil(t, account.OTPExpiresAt)
	assert.Nil(t, account.ApprovedAt)

	mock.ExpectQuery(queryAccountByID).WithArgs(5).WillReturnError(errors.New("timeout"))
	_, err = repo.GetByID(context.Background(), 5)
	assert.ErrorContains(t, err, "get account 5")
	assert.NotErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestUserRepository_Exists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(queryEmailExists).WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(queryUsernameExists).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	emailTaken, err := repo.EmailExists(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, emailTaken)

	usernameTaken, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, usernameTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	created := time.Now()

	mock.ExpectQuery(queryListActive).WithArgs(0, 50).
		WillReturnRows(sqlmock.NewRows(accountColumnNames).
			AddRow(1, "a@x.com", "alice", "h", "{user}", true, nil, nil, nil, nil, created, created))
	mock.ExpectQuery(queryListAccounts).WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(accountColumnNames))

	active, err := repo.List(ctx, false, 0, 50)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := repo.List(ctx, true, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ConsumeOTP(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("clears matching code", func(t *testing.T) {
		mock.ExpectExec(queryConsumeOTP).WithArgs(now, 3, "123456").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.ConsumeOTP(ctx, 3, "123456", now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("already consumed", func(t *testing.T) {
		mock.ExpectExec(queryConsumeOTP).WithArgs(now, 3, "123456").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.ConsumeOTP(ctx, 3, "123456", now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetOTP(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	expires := now.Add(5 * time.Minute)

	mock.ExpectExec(querySetOTP).WithArgs("654321", expires, now, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SetOTP(context.Background(), 3, "654321", expires, now))

	mock.ExpectExec(querySetOTP).WithArgs("654321", expires, now, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetOTP(context.Background(), 9, "654321", expires, now), apperrors.ErrAccountNotFound)
}

func TestUserRepository_ConditionalTransitions(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expect func()
		run    func() (bool, error)
		want   bool
	}{
		{
			name: "activate pending account",
			expect: func() {
				mock.ExpectExec(queryActivate).WithArgs(1, now, 2).WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run:  func() (bool, error) { return repo.Activate(ctx, 2, 1, now) },
			want: true,
		},
		{
			name: "activate already active account",
			expect: func() {
				mock.ExpectExec(queryActivate).WithArgs(1, now, 2).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			run:  func() (bool, error) { return repo.Activate(ctx, 2, 1, now) },
			want: false,
		},
		{
			name: "deactivate",
			expect: func() {
				mock.ExpectExec(queryDeactivate).WithArgs(now, 2).WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run:  func() (bool, error) { return repo.Deactivate(ctx, 2, now) },
			want: true,
		},
		{
			name: "delete pending",
			expect: func() {
				mock.ExpectExec(queryDeletePending).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run:  func() (bool, error) { return repo.DeletePending(ctx, 2) },
			want: true,
		},
		{
			name: "grant admin twice",
			expect: func() {
				mock.ExpectExec(queryGrantRole).WithArgs("admin", now, 2).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			run:  func() (bool, error) { return repo.GrantRole(ctx, 2, models.RoleAdmin, now) },
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.expect()

			got, err := tt.run()

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec(queryUpdatePassword).WithArgs("new-hash", now, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdatePassword(context.Background(), 3, "new-hash", now))

	mock.ExpectExec(queryUpdatePassword).WithArgs("new-hash", now, 4).
		WillReturnError(errors.New("disk full"))
	assert.ErrorContains(t, repo.UpdatePassword(context.Background(), 4, "new-hash", now), "update password")
}
