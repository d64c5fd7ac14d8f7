package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agenthub/internal/models"

	"github.com/jmoiron/sqlx"
)

const (
	queryAuthorStatusCounts = `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM listings WHERE author_id = $1`
	queryAuthorTotalViews = `
		SELECT COUNT(*) FROM listing_views v JOIN listings l ON l.id = v.listing_id WHERE l.author_id = $1`
	queryAuthorMostPopular = `
		SELECT l.id, l.name, COUNT(v.id) AS views
		FROM listings l JOIN listing_views v ON v.listing_id = l.id
		WHERE l.author_id = $1
		GROUP BY l.id, l.name
		ORDER BY views DESC, l.id
		LIMIT 1`
	queryListingTotals = `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE created_at >= $1) AS recent
		FROM listings`
	queryAccountTotals = `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE NOT is_active) AS pending,
			COUNT(*) FILTER (WHERE 'admin' = ANY(roles)) AS admins,
			COUNT(*) FILTER (WHERE created_at >= $1) AS recent
		FROM users`
	queryViewTotals = `
		SELECT COUNT(*) AS total_views, COUNT(*) FILTER (WHERE viewed_at >= $1) AS recent_views FROM listing_views`
)

type StatsRepositoryImpl struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepositoryImpl {
	return &StatsRepositoryImpl{db: db}
}

func (r *StatsRepositoryImpl) AuthorStatusCounts(ctx context.Context, authorID int64) (*models.StatusCounts, error) {
	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, queryAuthorStatusCounts, authorID); err != nil {
		return nil, fmt.Errorf("count author listings: %w", err)
	}
	return &counts, nil
}

func (r *StatsRepositoryImpl) AuthorTotalViews(ctx context.Context, authorID int64) (int, error) {
	var views int
	if err := r.db.GetContext(ctx, &views, queryAuthorTotalViews, authorID); err != nil {
		return 0, fmt.Errorf("count author views: %w", err)
	}
	return views, nil
}

// AuthorMostPopular returns nil when none of the author's listings has been viewed.
func (r *StatsRepositoryImpl) AuthorMostPopular(ctx context.Context, authorID int64) (*models.PopularListing, error) {
	var popular models.PopularListing
	if err := r.db.GetContext(ctx, &popular, queryAuthorMostPopular, authorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("most popular listing: %w", err)
	}
	return &popular, nil
}

func (r *StatsRepositoryImpl) ListingTotals(ctx context.Context, since time.Time) (*models.ListingTotals, error) {
	var totals models.ListingTotals
	if err := r.db.GetContext(ctx, &totals, queryListingTotals, since); err != nil {
		return nil, fmt.Errorf("listing totals: %w", err)
	}
	return &totals, nil
}

func (r *StatsRepositoryImpl) AccountTotals(ctx context.Context, since time.Time) (*models.AccountTotals, error) {
	var totals models.AccountTotals
	if err := r.db.GetContext(ctx, &totals, queryAccountTotals, since); err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}
	return &totals, nil
}

func (r *StatsRepositoryImpl) ViewTotals(ctx context.Context, since time.Time) (*models.ViewTotals, error) {
	var totals models.ViewTotals
	if err := r.db.GetContext(ctx, &totals, queryViewTotals, since); err != nil {
		return nil, fmt.Errorf("view totals: %w", err)
	}
	return &totals, nil
}
