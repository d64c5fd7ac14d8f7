package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"

	"github.com/jmoiron/sqlx"
)

const listingColumns = `l.id, l.name, l.description, l.app_url, l.category, l.status, l.author_id,
		l.approved_by, l.approved_at, l.created_at, l.updated_at`

const listingSummarySelect = `SELECT ` + listingColumns + `, u.username AS author_username,
		(SELECT COUNT(*) FROM listing_views v WHERE v.listing_id = l.id) AS view_count
		FROM listings l JOIN users u ON u.id = l.author_id`

const (
	queryCreateListing = `
		INSERT INTO listings (name, description, app_url, category, status, author_id, created_at, updated_at)
		VALUES (:name, :description, :app_url, :category, :status, :author_id, :created_at, :updated_at)
		RETURNING id`
	queryListingByID    = `SELECT ` + listingColumns + ` FROM listings l WHERE l.id = $1`
	queryListingSummary = listingSummarySelect + ` WHERE l.id = $1`
	queryDecideListing  = `
		UPDATE listings SET status = $1, approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $4 AND status = 'pending'`
	queryApprovedByCategory = `SELECT category, COUNT(*) AS count FROM listings WHERE status = 'approved' GROUP BY category`
)

type ListingRepositoryImpl struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepositoryImpl {
	return &ListingRepositoryImpl{db: db}
}

func (r *ListingRepositoryImpl) Create(ctx context.Context, listing *models.Listing) error {
	return insertReturningID(ctx, r.db, queryCreateListing, listing, &listing.ID, "create listing")
}

func (r *ListingRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	var listing models.Listing

	err := r.db.GetContext(ctx, &listing, queryListingByID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}

	return &listing, nil
}

func (r *ListingRepositoryImpl) GetSummary(ctx context.Context, id int64) (*models.ListingSummary, error) {
	var summary models.ListingSummary

	err := r.db.GetContext(ctx, &summary, queryListingSummary, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}

	return &summary, nil
}

func (r *ListingRepositoryImpl) List(ctx context.Context, filter models.ListingFilter) ([]models.ListingSummary, int, error) {
	where, args := listingWhere(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings l`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY l.created_at DESC, l.id DESC OFFSET $%d LIMIT $%d",
		listingSummarySelect, where, len(args)+1, len(args)+2)

	listings := []models.ListingSummary{}
	if err := r.db.SelectContext(ctx, &listings, query, append(args, filter.Skip, filter.Limit)...); err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}

	return listings, total, nil
}

// listingWhere renders the filter as a WHERE clause with positional arguments.
func listingWhere(filter models.ListingFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}

	if filter.Status != "" {
		add("l.status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		add("l.category = ?", string(filter.Category))
	}
	if filter.AuthorID != nil {
		add("l.author_id = ?", *filter.AuthorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		add("(l.name ILIKE ? OR l.description ILIKE ?)", "%"+escapeLike(search)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ListingRepositoryImpl) Decide(ctx context.Context, id int64, status models.ListingStatus, approverID int64, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, queryDecideListing, string(status), approverID, now, id)
	if err != nil {
		return false, fmt.Errorf("decide listing %d: %w", id, err)
	}
	return affected(result)
}

func (r *ListingRepositoryImpl) CountApprovedByCategory(ctx context.Context) (map[models.Category]int, error) {
	var rows []struct {
		Category models.Category `db:"category"`
		Count    int             `db:"count"`
	}

	if err := r.db.SelectContext(ctx, &rows, queryApprovedByCategory); err != nil {
		return nil, fmt.Errorf("count listings by category: %w", err)
	}

	counts := make(map[models.Category]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
