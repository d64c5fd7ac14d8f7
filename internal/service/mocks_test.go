package service

import (
	"context"
	"io"
	"sync"
	"time"

	"agenthub/internal/models"
	"agenthub/internal/notify"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if fn, ok := args.Get(0).(func(context.Context, string) *models.Account); ok {
		return fn(ctx, username), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListActiveAdmins(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, includeInactive bool, skip, limit int) ([]models.Account, error) {
	args := m.Called(ctx, includeInactive, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockUserRepository) ListPending(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockUserRepository) SetOTP(ctx context.Context, id int64, code string, expiresAt, now time.Time) error {
	args := m.Called(ctx, id, code, expiresAt, now)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeOTP(ctx context.Context, id int64, code string, now time.Time) (bool, error) {
	args := m.Called(ctx, id, code, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Activate(ctx context.Context, id, approverID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, approverID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Deactivate(ctx context.Context, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) DeletePending(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GrantRole(ctx context.Context, id int64, role models.Role, now time.Time) (bool, error) {
	args := m.Called(ctx, id, role, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, now time.Time) error {
	args := m.Called(ctx, id, passwordHash, now)
	return args.Error(0)
}

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) GetSummary(ctx context.Context, id int64) (*models.ListingSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingSummary), args.Error(1)
}

func (m *MockListingRepository) List(ctx context.Context, filter models.ListingFilter) ([]models.ListingSummary, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.ListingSummary), args.Int(1), args.Error(2)
}

func (m *MockListingRepository) Decide(ctx context.Context, id int64, status models.ListingStatus, approverID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, status, approverID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingRepository) CountApprovedByCategory(ctx context.Context) (map[models.Category]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Category]int), args.Error(1)
}

type MockEngagementRepository struct {
	mock.Mock
}

func (m *MockEngagementRepository) HasRecentView(ctx context.Context, listingID, userID int64, since time.Time) (bool, error) {
	args := m.Called(ctx, listingID, userID, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockEngagementRepository) RecordView(ctx context.Context, view *models.View) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

func (m *MockEngagementRepository) RecordClick(ctx context.Context, click *models.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockEngagementRepository) RecordSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockEngagementRepository) ListingEngagement(ctx context.Context, listingID int64) (*models.ListingEngagement, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingEngagement), args.Error(1)
}

type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) UpsertRating(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockFeedbackRepository) RatingSummary(ctx context.Context, listingID int64) (*models.RatingSummary, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingSummary), args.Error(1)
}

func (m *MockFeedbackRepository) RatingDistribution(ctx context.Context, listingID int64) (map[string]int, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockFeedbackRepository) CountReviews(ctx context.Context, listingID int64) (int, error) {
	args := m.Called(ctx, listingID)
	return args.Int(0), args.Error(1)
}

func (m *MockFeedbackRepository) UpsertReview(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockFeedbackRepository) DeleteReview(ctx context.Context, listingID, userID int64) error {
	args := m.Called(ctx, listingID, userID)
	return args.Error(0)
}

func (m *MockFeedbackRepository) GetReview(ctx context.Context, listingID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, listingID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockFeedbackRepository) ListReviews(ctx context.Context, listingID int64, skip, limit int) ([]models.ReviewDetail, error) {
	args := m.Called(ctx, listingID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewDetail), args.Error(1)
}

func (m *MockFeedbackRepository) MarkHelpful(ctx context.Context, reviewID, userID int64, now time.Time) (int, bool, error) {
	args := m.Called(ctx, reviewID, userID, now)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, image *models.ListingImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockImageRepository) GetByID(ctx context.Context, listingID, imageID int64) (*models.ListingImage, error) {
	args := m.Called(ctx, listingID, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingImage), args.Error(1)
}

func (m *MockImageRepository) ListByListings(ctx context.Context, listingIDs ...int64) (map[int64][]models.ListingImage, error) {
	args := m.Called(ctx, listingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]models.ListingImage), args.Error(1)
}

func (m *MockImageRepository) Delete(ctx context.Context, imageID int64) error {
	args := m.Called(ctx, imageID)
	return args.Error(0)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) AuthorStatusCounts(ctx context.Context, authorID int64) (*models.StatusCounts, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StatusCounts), args.Error(1)
}

func (m *MockStatsRepository) AuthorTotalViews(ctx context.Context, authorID int64) (int, error) {
	args := m.Called(ctx, authorID)
	return args.Int(0), args.Error(1)
}

func (m *MockStatsRepository) AuthorMostPopular(ctx context.Context, authorID int64) (*models.PopularListing, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PopularListing), args.Error(1)
}

func (m *MockStatsRepository) ListingTotals(ctx context.Context, since time.Time) (*models.ListingTotals, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingTotals), args.Error(1)
}

func (m *MockStatsRepository) AccountTotals(ctx context.Context, since time.Time) (*models.AccountTotals, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountTotals), args.Error(1)
}

func (m *MockStatsRepository) ViewTotals(ctx context.Context, since time.Time) (*models.ViewTotals, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ViewTotals), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadImage(ctx context.Context, listingID int64, fileName, contentType string, file io.Reader, size int64) (string, string, error) {
	args := m.Called(ctx, listingID, fileName, contentType, file, size)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStorage) DeleteImage(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

type MockViewGate struct {
	mock.Mock
}

func (m *MockViewGate) Admit(ctx context.Context, listingID, viewerID int64) (bool, error) {
	args := m.Called(ctx, listingID, viewerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockViewGate) Forget(ctx context.Context, listingID, viewerID int64) error {
	args := m.Called(ctx, listingID, viewerID)
	return args.Error(0)
}

// memoryGate admits each (listing, viewer) pair once until it is forgotten.
type memoryGate struct {
	seen map[[2]int64]bool
}

func newMemoryGate() *memoryGate {
	return &memoryGate{seen: map[[2]int64]bool{}}
}

func (g *memoryGate) Admit(ctx context.Context, listingID, viewerID int64) (bool, error) {
	key := [2]int64{listingID, viewerID}
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

func (g *memoryGate) Forget(ctx context.Context, listingID, viewerID int64) error {
	delete(g.seen, [2]int64{listingID, viewerID})
	return nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (d *recordingDispatcher) Deliver(ctx context.Context, messages ...notify.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, messages...)
}

func (d *recordingDispatcher) recipients() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, len(d.sent))
	for i, m := range d.sent {
		out[i] = m.To
	}
	return out
}
