package test

import (
	"context"

	"agenthub/internal/models"
	"agenthub/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*models.Account, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAuthService) InitiateLogin(ctx context.Context, username string) (*service.LoginChallenge, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginChallenge), args.Error(1)
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, username, code string) (*service.AuthSession, error) {
	args := m.Called(ctx, username, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthSession), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error {
	args := m.Called(ctx, accountID, oldPassword, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, caller models.Principal) (*service.AuthSession, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthSession), args.Error(1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, viewer models.Principal, accountID int64) (*models.AccountSnapshot, error) {
	args := m.Called(ctx, viewer, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountSnapshot), args.Error(1)
}

func (m *MockAuthService) ResolvePrincipal(ctx context.Context, token string) (models.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.Principal), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ApproveAccount(ctx context.Context, actor models.Principal, accountID int64) (*models.Account, error) {
	args := m.Called(ctx, actor, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserService) Deactivate(ctx context.Context, actor models.Principal, accountID int64) error {
	args := m.Called(ctx, actor, accountID)
	return args.Error(0)
}

func (m *MockUserService) RejectPendingAccount(ctx context.Context, actor models.Principal, accountID int64) error {
	args := m.Called(ctx, actor, accountID)
	return args.Error(0)
}

func (m *MockUserService) GrantAdminRole(ctx context.Context, actor models.Principal, accountID int64) (*models.Account, error) {
	args := m.Called(ctx, actor, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserService) ListAccounts(ctx context.Context, actor models.Principal, includeInactive bool, skip, limit int) ([]models.AccountSnapshot, error) {
	args := m.Called(ctx, actor, includeInactive, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AccountSnapshot), args.Error(1)
}

func (m *MockUserService) ListPendingAccounts(ctx context.Context, actor models.Principal) ([]models.AccountSnapshot, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AccountSnapshot), args.Error(1)
}

func (m *MockUserService) AdminStats(ctx context.Context, actor models.Principal) (*models.AdminStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminStats), args.Error(1)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Submit(ctx context.Context, author models.Principal, in service.SubmitListingInput) (*models.Listing, error) {
	args := m.Called(ctx, author, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Decide(ctx context.Context, actor models.Principal, listingID int64, approve bool) (*models.Listing, error) {
	args := m.Called(ctx, actor, listingID, approve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) View(ctx context.Context, viewer models.Principal, listingID int64) (*models.ListingSummary, error) {
	args := m.Called(ctx, viewer, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingSummary), args.Error(1)
}

func (m *MockListingService) List(ctx context.Context, viewer models.Principal, in service.ListListingsInput) (*models.ListingPage, error) {
	args := m.Called(ctx, viewer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingPage), args.Error(1)
}

func (m *MockListingService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryCount), args.Error(1)
}

func (m *MockListingService) ListForAccount(ctx context.Context, viewer models.Principal, accountID int64, skip, limit int) (*models.ListingPage, error) {
	args := m.Called(ctx, viewer, accountID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingPage), args.Error(1)
}

func (m *MockListingService) ListPending(ctx context.Context, actor models.Principal, skip, limit int) (*models.ListingPage, error) {
	args := m.Called(ctx, actor, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingPage), args.Error(1)
}

func (m *MockListingService) AddScreenshot(ctx context.Context, actor models.Principal, listingID int64, upload service.ImageUpload) (*models.ListingImage, error) {
	args := m.Called(ctx, actor, listingID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingImage), args.Error(1)
}

func (m *MockListingService) DeleteScreenshot(ctx context.Context, actor models.Principal, listingID, imageID int64) error {
	args := m.Called(ctx, actor, listingID, imageID)
	return args.Error(0)
}

type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Rate(ctx context.Context, rater models.Principal, listingID int64, stars int) (*models.RatingSummary, error) {
	args := m.Called(ctx, rater, listingID, stars)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingSummary), args.Error(1)
}

func (m *MockFeedbackService) Review(ctx context.Context, rater models.Principal, listingID int64, stars int, text string) (*models.Review, error) {
	args := m.Called(ctx, rater, listingID, stars, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockFeedbackService) DeleteOwnReview(ctx context.Context, caller models.Principal, listingID int64) error {
	args := m.Called(ctx, caller, listingID)
	return args.Error(0)
}

func (m *MockFeedbackService) MarkHelpful(ctx context.Context, voter models.Principal, listingID, reviewID int64) (*service.HelpfulResult, error) {
	args := m.Called(ctx, voter, listingID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HelpfulResult), args.Error(1)
}

func (m *MockFeedbackService) RatingStats(ctx context.Context, listingID int64) (*models.RatingStats, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingStats), args.Error(1)
}

func (m *MockFeedbackService) ListReviews(ctx context.Context, listingID int64, skip, limit int) ([]models.ReviewDetail, error) {
	args := m.Called(ctx, listingID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewDetail), args.Error(1)
}

type MockEngagementService struct {
	mock.Mock
}

func (m *MockEngagementService) RecordClick(ctx context.Context, viewer models.Principal, listingID int64, kind models.ClickKind, referrer *string) (*models.Click, error) {
	args := m.Called(ctx, viewer, listingID, kind, referrer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Click), args.Error(1)
}

func (m *MockEngagementService) RecordSession(ctx context.Context, viewer models.Principal, listingID int64, durationSeconds int) (*models.Session, error) {
	args := m.Called(ctx, viewer, listingID, durationSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockEngagementService) ListingEngagement(ctx context.Context, viewer models.Principal, listingID int64) (*models.ListingEngagement, error) {
	args := m.Called(ctx, viewer, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingEngagement), args.Error(1)
}

func (m *MockEngagementService) AccountStats(ctx context.Context, viewer models.Principal) (*models.AccountStats, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountStats), args.Error(1)
}

type stubHealth struct {
	err error
}

func (s stubHealth) HealthCheck(ctx context.Context) error {
	return s.err
}
