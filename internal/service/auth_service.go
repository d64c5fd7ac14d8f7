package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/config"
	"agenthub/internal/models"
	"agenthub/internal/notify"
	"agenthub/internal/repository"
	"agenthub/internal/security"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginChallenge describes an issued one-time code. Code is empty unless echoing is enabled.
type LoginChallenge struct {
	Code      string
	ExpiresIn time.Duration
}

type AuthSession struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	Account     models.AccountSnapshot
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.Account, error)
	InitiateLogin(ctx context.Context, username string) (*LoginChallenge, error)
	VerifyOTP(ctx context.Context, username, code string) (*AuthSession, error)
	ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error
	RefreshToken(ctx context.Context, caller models.Principal) (*AuthSession, error)
	GetProfile(ctx context.Context, viewer models.Principal, accountID int64) (*models.AccountSnapshot, error)
	ResolvePrincipal(ctx context.Context, token string) (models.Principal, error)
}

type authService struct {
	users      repository.UserRepository
	hasher     security.PasswordHasher
	tokens     security.TokenService
	dispatcher Dispatcher
	otp        config.OTP
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, otp config.OTP, deps Deps) AuthService {
	return &authService{
		users:      users,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		otp:        otp,
		log:        deps.Log,
		now:        deps.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	emailTaken, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, apperrors.ErrEmailTaken
	}

	usernameTaken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, apperrors.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &models.Account{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Roles:        models.Roles{models.RoleUser},
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, account); err != nil {
		return nil, err
	}

	notifyAdmins(ctx, s.users, s.dispatcher, s.log, func(admin models.Account) notify.Message {
		return notify.NewAccountMessage(admin.Email, account.Username, account.Email)
	})

	s.log.Info("account registered", zap.Int64("account_id", account.ID), zap.String("username", account.Username))
	return account, nil
}

func (s *authService) lookup(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return nil, apperrors.ErrInvalidCredentialIdentifier
	}
	return account, err
}

func (s *authService) InitiateLogin(ctx context.Context, username string) (*LoginChallenge, error) {
	account, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.ErrNotActivated
	}

	code, err := security.GenerateOTP(s.otp.Length)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.users.SetOTP(ctx, account.ID, code, now.Add(s.otp.TTL), now); err != nil {
		return nil, err
	}

	s.dispatcher.Deliver(ctx, notify.OTPMessage(account.Email, account.Username, code, s.otp.TTL))

	challenge := &LoginChallenge{ExpiresIn: s.otp.TTL}
	if s.otp.EchoCode {
		challenge.Code = code
	}
	return challenge, nil
}

func (s *authService) VerifyOTP(ctx context.Context, username, code string) (*AuthSession, error) {
	account, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.ErrNotActivated
	}

	now := s.now()
	if account.OTPCode == nil || account.OTPExpiresAt == nil || !now.Before(*account.OTPExpiresAt) {
		return nil, apperrors.ErrOTPExpired
	}
	if *account.OTPCode != code {
		return nil, apperrors.ErrOTPMismatch
	}

	// A concurrent verification may have consumed the code since it was read.
	consumed, err := s.users.ConsumeOTP(ctx, account.ID, code, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, apperrors.ErrOTPExpired
	}

	return s.session(account)
}

func (s *authService) session(account *models.Account) (*AuthSession, error) {
	token, err := s.tokens.Issue(account.Username)
	if err != nil {
		return nil, err
	}

	return &AuthSession{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.tokens.TTL(),
		Account:     account.Snapshot(),
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error {
	account, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(account.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return apperrors.ErrWrongPassword
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, accountID, hash, s.now())
}

func (s *authService) RefreshToken(ctx context.Context, caller models.Principal) (*AuthSession, error) {
	account, err := s.users.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	return s.session(account)
}

// GetProfile masks the email unless the viewer owns the account or is an admin.
func (s *authService) GetProfile(ctx context.Context, viewer models.Principal, accountID int64) (*models.AccountSnapshot, error) {
	account, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	snapshot := account.Snapshot()
	if viewer.AccountID != account.ID && !viewer.IsAdmin() {
		snapshot.Email = models.MaskedEmail
	}
	return &snapshot, nil
}

func (s *authService) ResolvePrincipal(ctx context.Context, token string) (models.Principal, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return models.Principal{}, err
	}

	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return models.Principal{}, apperrors.ErrInvalidToken
		}
		return models.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}
	if !account.IsActive {
		return models.Principal{}, apperrors.ErrAccountInactive
	}

	return models.Principal{
		AccountID: account.ID,
		Username:  account.Username,
		Roles:     account.Roles,
		IsActive:  account.IsActive,
	}, nil
}
