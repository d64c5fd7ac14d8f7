package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_Author(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(queryAuthorStatusCounts).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "approved", "rejected"}).AddRow(5, 1, 3, 1))
	mock.ExpectQuery(queryAuthorTotalViews).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(40))
	mock.ExpectQuery(queryAuthorMostPopular).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "views"}).AddRow(11, "Claims Triage", 25))

	counts, err := repo.AuthorStatusCounts(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, counts.Total)
	assert.Equal(t, 3, counts.Approved)

	views, err := repo.AuthorTotalViews(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 40, views)

	popular, err := repo.AuthorMostPopular(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, popular)
	assert.Equal(t, "Claims Triage", popular.Name)
	assert.Equal(t, 25, popular.Views)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepository_AuthorMostPopular_NoViews(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStatsRepository(db)

	mock.ExpectQuery(queryAuthorMostPopular).WithArgs(9).WillReturnError(sql.ErrNoRows)

	popular, err := repo.AuthorMostPopular(context.Background(), 9)

	require.NoError(t, err)
	assert.Nil(t, popular)
}

func TestStatsRepository_Totals(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(queryListingTotals).WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "approved", "rejected", "recent"}).
			AddRow(10, 2, 7, 1, 3))
	mock.ExpectQuery(queryAccountTotals).WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"total", "active", "pending", "admins", "recent"}).
			AddRow(6, 5, 1, 2, 1))
	mock.ExpectQuery(queryViewTotals).WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"total_views", "recent_views"}).AddRow(300, 42))

	listings, err := repo.ListingTotals(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, 7, listings.Approved)
	assert.Equal(t, 3, listings.Recent)

	accounts, err := repo.AccountTotals(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, 2, accounts.Admins)
	assert.Equal(t, 1, accounts.Pending)

	views, err := repo.ViewTotals(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, 300, views.Total)
	assert.Equal(t, 42, views.Recent)

	assert.NoError(t, mock.ExpectationsWereMet())
}
