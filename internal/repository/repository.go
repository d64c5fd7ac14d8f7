package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"agenthub/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type UserRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ListActiveAdmins(ctx context.Context) ([]models.Account, error)
	List(ctx context.Context, includeInactive bool, skip, limit int) ([]models.Account, error)
	ListPending(ctx context.Context) ([]models.Account, error)
	SetOTP(ctx context.Context, id int64, code string, expiresAt, now time.Time) error
	// ConsumeOTP clears a matching, unexpired code. It reports false when nothing was cleared.
	ConsumeOTP(ctx context.Context, id int64, code string, now time.Time) (bool, error)
	Activate(ctx context.Context, id, approverID int64, now time.Time) (bool, error)
	Deactivate(ctx context.Context, id int64, now time.Time) (bool, error)
	DeletePending(ctx context.Context, id int64) (bool, error)
	GrantRole(ctx context.Context, id int64, role models.Role, now time.Time) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, now time.Time) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id int64) (*models.Listing, error)
	GetSummary(ctx context.Context, id int64) (*models.ListingSummary, error)
	List(ctx context.Context, filter models.ListingFilter) ([]models.ListingSummary, int, error)
	// Decide moves a pending listing to a terminal status. It reports false when the listing was not pending.
	Decide(ctx context.Context, id int64, status models.ListingStatus, approverID int64, now time.Time) (bool, error)
	CountApprovedByCategory(ctx context.Context) (map[models.Category]int, error)
}

type EngagementRepository interface {
	HasRecentView(ctx context.Context, listingID, userID int64, since time.Time) (bool, error)
	RecordView(ctx context.Context, view *models.View) error
	RecordClick(ctx context.Context, click *models.Click) error
	RecordSession(ctx context.Context, session *models.Session) error
	ListingEngagement(ctx context.Context, listingID int64) (*models.ListingEngagement, error)
}

type FeedbackRepository interface {
	UpsertRating(ctx context.Context, rating *models.Rating) error
	RatingSummary(ctx context.Context, listingID int64) (*models.RatingSummary, error)
	RatingDistribution(ctx context.Context, listingID int64) (map[string]int, error)
	CountReviews(ctx context.Context, listingID int64) (int, error)
	UpsertReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, listingID, userID int64) error
	GetReview(ctx context.Context, listingID, reviewID int64) (*models.Review, error)
	ListReviews(ctx context.Context, listingID int64, skip, limit int) ([]models.ReviewDetail, error)
	MarkHelpful(ctx context.Context, reviewID, userID int64, now time.Time) (int, bool, error)
}

type ImageRepository interface {
	Create(ctx context.Context, image *models.ListingImage) error
	GetByID(ctx context.Context, listingID, imageID int64) (*models.ListingImage, error)
	ListByListings(ctx context.Context, listingIDs ...int64) (map[int64][]models.ListingImage, error)
	Delete(ctx context.Context, imageID int64) error
}

type StatsRepository interface {
	AuthorStatusCounts(ctx context.Context, authorID int64) (*models.StatusCounts, error)
	AuthorTotalViews(ctx context.Context, authorID int64) (int, error)
	AuthorMostPopular(ctx context.Context, authorID int64) (*models.PopularListing, error)
	ListingTotals(ctx context.Context, since time.Time) (*models.ListingTotals, error)
	AccountTotals(ctx context.Context, since time.Time) (*models.AccountTotals, error)
	ViewTotals(ctx context.Context, since time.Time) (*models.ViewTotals, error)
}

type Repository struct {
	User       UserRepository
	Listing    ListingRepository
	Engagement EngagementRepository
	Feedback   FeedbackRepository
	Image      ImageRepository
	Stats      StatsRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:       NewUserRepository(db),
		Listing:    NewListingRepository(db),
		Engagement: NewEngagementRepository(db),
		Feedback:   NewFeedbackRepository(db),
		Image:      NewImageRepository(db),
		Stats:      NewStatsRepository(db),
	}
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && (constraint == "" || pqErr.Constraint == constraint)
}

func affected(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

// requireRow turns a zero-row write into notFound.
func requireRow(result sql.Result, notFound error) error {
	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}

func insertReturningID(ctx context.Context, db *sqlx.DB, query string, arg any, id *int64, op string) error {
	rows, err := db.NamedQueryContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(id); err != nil {
			return fmt.Errorf("%s: scan id: %w", op, err)
		}
	}
	return rows.Err()
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
