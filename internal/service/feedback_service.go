package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"
	"agenthub/internal/repository"

	"go.uber.org/zap"
)

const minReviewLength = 10

type HelpfulResult struct {
	HelpfulCount int
	Counted      bool
}

type FeedbackService interface {
	Rate(ctx context.Context, rater models.Principal, listingID int64, stars int) (*models.RatingSummary, error)
	Review(ctx context.Context, rater models.Principal, listingID int64, stars int, text string) (*models.Review, error)
	DeleteOwnReview(ctx context.Context, caller models.Principal, listingID int64) error
	MarkHelpful(ctx context.Context, voter models.Principal, listingID, reviewID int64) (*HelpfulResult, error)
	RatingStats(ctx context.Context, listingID int64) (*models.RatingStats, error)
	ListReviews(ctx context.Context, listingID int64, skip, limit int) ([]models.ReviewDetail, error)
}

type feedbackService struct {
	listings repository.ListingRepository
	feedback repository.FeedbackRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewFeedbackService(listings repository.ListingRepository, feedback repository.FeedbackRepository, deps Deps) FeedbackService {
	return &feedbackService{
		listings: listings,
		feedback: feedback,
		log:      deps.Log,
		now:      deps.Now,
	}
}

func validStars(stars int) bool {
	return stars >= 1 && stars <= 5
}

func (s *feedbackService) Rate(ctx context.Context, rater models.Principal, listingID int64, stars int) (*models.RatingSummary, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	if !validStars(stars) {
		return nil, apperrors.ErrInvalidRating
	}

	rating := &models.Rating{
		ListingID: listingID,
		UserID:    rater.AccountID,
		Rating:    stars,
		UpdatedAt: s.now(),
	}
	if err := s.feedback.UpsertRating(ctx, rating); err != nil {
		return nil, err
	}

	return s.feedback.RatingSummary(ctx, listingID)
}

func (s *feedbackService) Review(ctx context.Context, rater models.Principal, listingID int64, stars int, text string) (*models.Review, error) {
	if !rater.CanReview() {
		return nil, apperrors.ErrAccountInactive
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.StatusApproved {
		return nil, apperrors.ErrNotApproved
	}
	if !validStars(stars) {
		return nil, apperrors.ErrInvalidRating
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minReviewLength {
		return nil, apperrors.ErrTextTooShort
	}

	review := &models.Review{
		ListingID:  listingID,
		UserID:     rater.AccountID,
		Rating:     stars,
		ReviewText: text,
		UpdatedAt:  s.now(),
	}
	if err := s.feedback.UpsertReview(ctx, review); err != nil {
		return nil, err
	}

	s.log.Info("review saved", zap.Int64("listing_id", listingID), zap.Int64("review_id", review.ID))
	return review, nil
}

func (s *feedbackService) DeleteOwnReview(ctx context.Context, caller models.Principal, listingID int64) error {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return err
	}
	return s.feedback.DeleteReview(ctx, listingID, caller.AccountID)
}

func (s *feedbackService) MarkHelpful(ctx context.Context, voter models.Principal, listingID, reviewID int64) (*HelpfulResult, error) {
	if _, err := s.feedback.GetReview(ctx, listingID, reviewID); err != nil {
		return nil, err
	}

	count, counted, err := s.feedback.MarkHelpful(ctx, reviewID, voter.AccountID, s.now())
	if err != nil {
		return nil, err
	}
	return &HelpfulResult{HelpfulCount: count, Counted: counted}, nil
}

func (s *feedbackService) RatingStats(ctx context.Context, listingID int64) (*models.RatingStats, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	summary, err := s.feedback.RatingSummary(ctx, listingID)
	if err != nil {
		return nil, err
	}
	distribution, err := s.feedback.RatingDistribution(ctx, listingID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.feedback.CountReviews(ctx, listingID)
	if err != nil {
		return nil, err
	}

	return &models.RatingStats{
		AverageRating: summary.AverageRating,
		TotalRatings:  summary.TotalRatings,
		TotalReviews:  reviews,
		Distribution:  distribution,
	}, nil
}

func (s *feedbackService) ListReviews(ctx context.Context, listingID int64, skip, limit int) ([]models.ReviewDetail, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	skip, limit = page(skip, limit, defaultListingLimit)
	return s.feedback.ListReviews(ctx, listingID, skip, limit)
}
