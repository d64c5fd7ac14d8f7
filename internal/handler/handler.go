package handlers

import (
	"context"
	"reflect"
	"strings"

	"agenthub/internal/config"
	"agenthub/internal/service"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	appName    = "AI Agent Hub"
	appVersion = "1.0.0"
)

// HealthChecker reports whether the backing database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	AuthService       service.AuthService
	UserService       service.UserService
	ListingService    service.ListingService
	FeedbackService   service.FeedbackService
	EngagementService service.EngagementService
	Health            HealthChecker
	Cfg               *config.Config
	Validate          *validator.Validate
	Log               *zap.Logger
}

func NewHandlers(services *service.Service, health HealthChecker, cfg *config.Config, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		AuthService:       services.Auth,
		UserService:       services.User,
		ListingService:    services.Listing,
		FeedbackService:   services.Feedback,
		EngagementService: services.Engagement,
		Health:            health,
		Cfg:               cfg,
		Validate:          newValidator(),
		Log:               log,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
