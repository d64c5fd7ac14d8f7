package service

import (
	"context"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"
	"agenthub/internal/notify"
	"agenthub/internal/repository"

	"go.uber.org/zap"
)

// UserService holds the admin side of the account lifecycle.
type UserService interface {
	ApproveAccount(ctx context.Context, actor models.Principal, accountID int64) (*models.Account, error)
	Deactivate(ctx context.Context, actor models.Principal, accountID int64) error
	RejectPendingAccount(ctx context.Context, actor models.Principal, accountID int64) error
	GrantAdminRole(ctx context.Context, actor models.Principal, accountID int64) (*models.Account, error)
	ListAccounts(ctx context.Context, actor models.Principal, includeInactive bool, skip, limit int) ([]models.AccountSnapshot, error)
	ListPendingAccounts(ctx context.Context, actor models.Principal) ([]models.AccountSnapshot, error)
	AdminStats(ctx context.Context, actor models.Principal) (*models.AdminStats, error)
}

type userService struct {
	users      repository.UserRepository
	stats      repository.StatsRepository
	dispatcher Dispatcher
	log        *zap.Logger
	now        func() time.Time
}

func NewUserService(users repository.UserRepository, stats repository.StatsRepository, deps Deps) UserService {
	return &userService{
		users:      users,
		stats:      stats,
		dispatcher: deps.Dispatcher,
		log:        deps.Log,
		now:        deps.Now,
	}
}

func requireApprover(actor models.Principal) error {
	if !actor.CanApprove() {
		return apperrors.ErrAdminRequired
	}
	return nil
}

func (s *userService) ApproveAccount(ctx context.Context, actor models.Principal, accountID int64) (*models.Account, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}

	account, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsActive {
		return nil, apperrors.ErrAlreadyActive
	}

	now := s.now()
	activated, err := s.users.Activate(ctx, accountID, actor.AccountID, now)
	if err != nil {
		return nil, err
	}
	if !activated {
		return nil, s.settle(ctx, accountID, apperrors.ErrAlreadyActive)
	}

	account.IsActive = true
	account.ApprovedBy = &actor.AccountID
	account.ApprovedAt = &now
	account.UpdatedAt = now

	s.dispatcher.Deliver(ctx, notify.AccountApprovedMessage(account.Email, account.Username))
	s.log.Info("account approved", zap.Int64("account_id", accountID), zap.Int64("approver_id", actor.AccountID))

	return account, nil
}

// settle explains a conditional write that matched no row: the account vanished or another request got there first.
func (s *userService) settle(ctx context.Context, accountID int64, raced error) error {
	if _, err := s.users.GetByID(ctx, accountID); err != nil {
		return err
	}
	return raced
}

func (s *userService) Deactivate(ctx context.Context, actor models.Principal, accountID int64) error {
	if err := requireApprover(actor); err != nil {
		return err
	}
	if accountID == actor.AccountID {
		return apperrors.ErrSelfDeactivation
	}

	account, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return apperrors.ErrAlreadyInactive
	}

	deactivated, err := s.users.Deactivate(ctx, accountID, s.now())
	if err != nil {
		return err
	}
	if !deactivated {
		return s.settle(ctx, accountID, apperrors.ErrAlreadyInactive)
	}

	s.log.Info("account deactivated", zap.Int64("account_id", accountID), zap.Int64("admin_id", actor.AccountID))
	return nil
}

func (s *userService) RejectPendingAccount(ctx context.Context, actor models.Principal, accountID int64) error {
	if err := requireApprover(actor); err != nil {
		return err
	}
	if accountID == actor.AccountID {
		return apperrors.ErrSelfRejection
	}

	account, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.IsActive {
		return apperrors.ErrRejectActive
	}

	deleted, err := s.users.DeletePending(ctx, accountID)
	if err != nil {
		return err
	}
	if !deleted {
		return s.settle(ctx, accountID, apperrors.ErrRejectActive)
	}

	s.log.Info("pending account rejected", zap.Int64("account_id", accountID), zap.Int64("admin_id", actor.AccountID))
	return nil
}

func (s *userService) GrantAdminRole(ctx context.Context, actor models.Principal, accountID int64) (*models.Account, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}

	account, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.ErrGrantInactive
	}
	if account.IsAdmin() {
		return nil, apperrors.ErrAlreadyAdmin
	}

	now := s.now()
	granted, err := s.users.GrantRole(ctx, accountID, models.RoleAdmin, now)
	if err != nil {
		return nil, err
	}
	if !granted {
		current, err := s.users.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if !current.IsActive {
			return nil, apperrors.ErrGrantInactive
		}
		return nil, apperrors.ErrAlreadyAdmin
	}

	account.Roles = account.Roles.With(models.RoleAdmin)
	account.UpdatedAt = now

	s.log.Info("admin role granted", zap.Int64("account_id", accountID), zap.Int64("admin_id", actor.AccountID))
	return account, nil
}

func (s *userService) ListAccounts(ctx context.Context, actor models.Principal, includeInactive bool, skip, limit int) ([]models.AccountSnapshot, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}

	skip, limit = page(skip, limit, defaultAdminLimit)
	accounts, err := s.users.List(ctx, includeInactive, skip, limit)
	if err != nil {
		return nil, err
	}
	return snapshots(accounts), nil
}

func (s *userService) ListPendingAccounts(ctx context.Context, actor models.Principal) ([]models.AccountSnapshot, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}

	accounts, err := s.users.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return snapshots(accounts), nil
}

func (s *userService) AdminStats(ctx context.Context, actor models.Principal) (*models.AdminStats, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}

	since := s.now().Add(-recentStatsWindow)

	listings, err := s.stats.ListingTotals(ctx, since)
	if err != nil {
		return nil, err
	}
	accounts, err := s.stats.AccountTotals(ctx, since)
	if err != nil {
		return nil, err
	}
	views, err := s.stats.ViewTotals(ctx, since)
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{Listings: *listings, Accounts: *accounts, Views: *views}, nil
}
