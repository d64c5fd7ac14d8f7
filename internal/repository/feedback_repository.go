package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"

	"github.com/jmoiron/sqlx"
)

const (
	queryUpsertRating = `
		INSERT INTO ratings (listing_id, user_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (listing_id, user_id) DO UPDATE SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	queryRatingSummary      = `SELECT COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS total_ratings FROM ratings WHERE listing_id = $1`
	queryRatingDistribution = `SELECT rating, COUNT(*) AS count FROM ratings WHERE listing_id = $1 GROUP BY rating`
	queryCountReviews       = `SELECT COUNT(*) FROM reviews WHERE listing_id = $1`
	queryUpsertReview       = `
		INSERT INTO reviews (listing_id, user_id, rating, review_text, helpful_count, reviewed_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $5)
		ON CONFLICT (listing_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, review_text = EXCLUDED.review_text, updated_at = EXCLUDED.updated_at
		RETURNING id, helpful_count, reviewed_at`
	queryDeleteReview = `DELETE FROM reviews WHERE listing_id = $1 AND user_id = $2`
	queryReviewByID   = `
		SELECT id, listing_id, user_id, rating, review_text, helpful_count, reviewed_at, updated_at
		FROM reviews WHERE id = $1 AND listing_id = $2`
	queryListReviews = `
		SELECT r.id, r.listing_id, r.user_id, r.rating, r.review_text, r.helpful_count, r.reviewed_at, r.updated_at,
			u.username
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.listing_id = $1
		ORDER BY r.reviewed_at DESC, r.id DESC
		OFFSET $2 LIMIT $3`
	queryInsertHelpfulVote = `INSERT INTO review_helpful_votes (review_id, user_id, voted_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	queryIncrementHelpful  = `UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = $1 RETURNING helpful_count`
	queryHelpfulCount      = `SELECT helpful_count FROM reviews WHERE id = $1`
)

type FeedbackRepositoryImpl struct {
	db *sqlx.DB
}

func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepositoryImpl {
	return &FeedbackRepositoryImpl{db: db}
}

func upsertRating(ctx context.Context, q sqlx.QueryerContext, rating *models.Rating) error {
	err := q.QueryRowxContext(ctx, queryUpsertRating, rating.ListingID, rating.UserID, rating.Rating, rating.UpdatedAt).
		Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *FeedbackRepositoryImpl) UpsertRating(ctx context.Context, rating *models.Rating) error {
	return upsertRating(ctx, r.db, rating)
}

func (r *FeedbackRepositoryImpl) RatingSummary(ctx context.Context, listingID int64) (*models.RatingSummary, error) {
	var summary models.RatingSummary
	if err := r.db.GetContext(ctx, &summary, queryRatingSummary, listingID); err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	summary.AverageRating = roundTo2(summary.AverageRating)
	return &summary, nil
}

// RatingDistribution counts ratings per star value. Every value from 1 to 5 is present.
func (r *FeedbackRepositoryImpl) RatingDistribution(ctx context.Context, listingID int64) (map[string]int, error) {
	var rows []struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, queryRatingDistribution, listingID); err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}

	distribution := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	for _, row := range rows {
		distribution[strconv.Itoa(row.Rating)] = row.Count
	}
	return distribution, nil
}

func (r *FeedbackRepositoryImpl) CountReviews(ctx context.Context, listingID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, queryCountReviews, listingID); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// UpsertReview writes the review and the matching rating in one transaction.
func (r *FeedbackRepositoryImpl) UpsertReview(ctx context.Context, review *models.Review) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowxContext(ctx, queryUpsertReview,
		review.ListingID, review.UserID, review.Rating, review.ReviewText, review.UpdatedAt).
		Scan(&review.ID, &review.HelpfulCount, &review.ReviewedAt)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}

	rating := &models.Rating{
		ListingID: review.ListingID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		UpdatedAt: review.UpdatedAt,
	}
	if err = upsertRating(ctx, tx, rating); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}
	return nil
}

func (r *FeedbackRepositoryImpl) DeleteReview(ctx context.Context, listingID, userID int64) error {
	result, err := r.db.ExecContext(ctx, queryDeleteReview, listingID, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return requireRow(result, apperrors.ErrReviewNotFound)
}

func (r *FeedbackRepositoryImpl) GetReview(ctx context.Context, listingID, reviewID int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.GetContext(ctx, &review, queryReviewByID, reviewID, listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review %d: %w", reviewID, err)
	}
	return &review, nil
}

func (r *FeedbackRepositoryImpl) ListReviews(ctx context.Context, listingID int64, skip, limit int) ([]models.ReviewDetail, error) {
	reviews := []models.ReviewDetail{}
	if err := r.db.SelectContext(ctx, &reviews, queryListReviews, listingID, skip, limit); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// MarkHelpful records one vote per (review, voter). A repeat vote leaves the counter unchanged.
func (r *FeedbackRepositoryImpl) MarkHelpful(ctx context.Context, reviewID, userID int64, now time.Time) (count int, counted bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin helpful transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, queryInsertHelpfulVote, reviewID, userID, now)
	if err != nil {
		return 0, false, fmt.Errorf("record helpful vote: %w", err)
	}
	counted, err = affected(result)
	if err != nil {
		return 0, false, err
	}

	query := queryHelpfulCount
	if counted {
		query = queryIncrementHelpful
	}
	if err = tx.GetContext(ctx, &count, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = apperrors.ErrReviewNotFound
			return 0, false, err
		}
		return 0, false, fmt.Errorf("update helpful count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit helpful vote: %w", err)
	}
	return count, counted, nil
}
