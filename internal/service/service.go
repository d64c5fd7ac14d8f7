package service

import (
	"context"
	"time"

	"agenthub/internal/config"
	"agenthub/internal/models"
	"agenthub/internal/notify"
	"agenthub/internal/repository"
	"agenthub/internal/security"
	"agenthub/internal/storage"

	"go.uber.org/zap"
)

const (
	// ViewDedupWindow is how long repeat views by one account are not counted.
	ViewDedupWindow   = time.Hour
	recentStatsWindow = 7 * 24 * time.Hour

	defaultListingLimit = 20
	defaultAdminLimit   = 50
	maxPageLimit        = 100
)

// Dispatcher delivers notifications without reporting failures to the caller.
type Dispatcher interface {
	Deliver(ctx context.Context, messages ...notify.Message)
}

// ViewGate is an optional fast path in front of the view dedup query.
type ViewGate interface {
	Admit(ctx context.Context, listingID, viewerID int64) (bool, error)
	Forget(ctx context.Context, listingID, viewerID int64) error
}

type Deps struct {
	Hasher     security.PasswordHasher
	Tokens     security.TokenService
	Dispatcher Dispatcher
	Storage    storage.Storage
	ViewGate   ViewGate
	Log        *zap.Logger
	Now        func() time.Time
}

type Service struct {
	Auth       AuthService
	User       UserService
	Listing    ListingService
	Feedback   FeedbackService
	Engagement EngagementService
}

func NewService(rep *repository.Repository, cfg *config.Config, deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	return &Service{
		Auth:       NewAuthService(rep.User, cfg.OTP, deps),
		User:       NewUserService(rep.User, rep.Stats, deps),
		Listing:    NewListingService(rep.Listing, rep.User, rep.Engagement, rep.Image, cfg.MaxUploadSize, deps),
		Feedback:   NewFeedbackService(rep.Listing, rep.Feedback, deps),
		Engagement: NewEngagementService(rep.Listing, rep.User, rep.Engagement, rep.Stats, deps),
	}
}

// notifyAdmins sends one message per active admin. Lookup failures are logged like delivery failures.
func notifyAdmins(ctx context.Context, users repository.UserRepository, d Dispatcher, log *zap.Logger, build func(admin models.Account) notify.Message) {
	admins, err := users.ListActiveAdmins(ctx)
	if err != nil {
		log.Warn("list admins for notification", zap.Error(err))
		return
	}

	messages := make([]notify.Message, 0, len(admins))
	for _, admin := range admins {
		messages = append(messages, build(admin))
	}
	d.Deliver(ctx, messages...)
}

func page(skip, limit, fallback int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = fallback
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}

func snapshots(accounts []models.Account) []models.AccountSnapshot {
	out := make([]models.AccountSnapshot, len(accounts))
	for i := range accounts {
		out[i] = accounts[i].Snapshot()
	}
	return out
}
