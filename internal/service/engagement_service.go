package service

import (
	"context"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"
	"agenthub/internal/repository"
)

type EngagementService interface {
	RecordClick(ctx context.Context, viewer models.Principal, listingID int64, kind models.ClickKind, referrer *string) (*models.Click, error)
	RecordSession(ctx context.Context, viewer models.Principal, listingID int64, durationSeconds int) (*models.Session, error)
	ListingEngagement(ctx context.Context, viewer models.Principal, listingID int64) (*models.ListingEngagement, error)
	AccountStats(ctx context.Context, viewer models.Principal) (*models.AccountStats, error)
}

type engagementService struct {
	listings   repository.ListingRepository
	users      repository.UserRepository
	engagement repository.EngagementRepository
	stats      repository.StatsRepository
	now        func() time.Time
}

func NewEngagementService(
	listings repository.ListingRepository,
	users repository.UserRepository,
	engagement repository.EngagementRepository,
	stats repository.StatsRepository,
	deps Deps,
) EngagementService {
	return &engagementService{
		listings:   listings,
		users:      users,
		engagement: engagement,
		stats:      stats,
		now:        deps.Now,
	}
}

func (s *engagementService) RecordClick(ctx context.Context, viewer models.Principal, listingID int64, kind models.ClickKind, referrer *string) (*models.Click, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidClickKind
	}

	click := &models.Click{
		ListingID: listingID,
		UserID:    viewer.AccountID,
		ClickType: kind,
		Referrer:  referrer,
		ClickedAt: s.now(),
	}
	if err := s.engagement.RecordClick(ctx, click); err != nil {
		return nil, err
	}
	return click, nil
}

// RecordSession ends the session now and backdates its start by the reported duration.
func (s *engagementService) RecordSession(ctx context.Context, viewer models.Principal, listingID int64, durationSeconds int) (*models.Session, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	if durationSeconds < 0 {
		return nil, apperrors.ErrNegativeDuration
	}

	end := s.now()
	session := &models.Session{
		ListingID:       listingID,
		UserID:          viewer.AccountID,
		StartedAt:       end.Add(-time.Duration(durationSeconds) * time.Second),
		EndedAt:         end,
		DurationSeconds: durationSeconds,
	}
	if err := s.engagement.RecordSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *engagementService) ListingEngagement(ctx context.Context, viewer models.Principal, listingID int64) (*models.ListingEngagement, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(listing) {
		return nil, apperrors.ErrListingAccessDenied
	}

	return s.engagement.ListingEngagement(ctx, listingID)
}

func (s *engagementService) AccountStats(ctx context.Context, viewer models.Principal) (*models.AccountStats, error) {
	account, err := s.users.GetByID(ctx, viewer.AccountID)
	if err != nil {
		return nil, err
	}

	counts, err := s.stats.AuthorStatusCounts(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	views, err := s.stats.AuthorTotalViews(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	popular, err := s.stats.AuthorMostPopular(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &models.AccountStats{
		Listings:    *counts,
		TotalViews:  views,
		MostPopular: popular,
		Profile: models.AccountProfile{
			MemberSince: account.CreatedAt,
			Roles:       account.Roles,
			IsAdmin:     account.IsAdmin(),
		},
	}, nil
}
