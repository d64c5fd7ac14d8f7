// Command createadmin seeds an active administrator account.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/config"
	"agenthub/internal/database"
	"agenthub/internal/logger"
	"agenthub/internal/models"
	"agenthub/internal/repository"
	"agenthub/internal/security"

	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password, at least 6 characters")
	flag.Parse()

	cfg := config.LoadConfig()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	if strings.TrimSpace(*email) == "" || len(*password) < 6 {
		zl.Fatal("email and a password of at least 6 characters are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.ConnectDB(ctx, cfg.DB, zl)
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}
	defer db.CloseDB()

	hash, err := security.NewPasswordHasher(0).Hash(*password)
	if err != nil {
		zl.Fatal("hash password", zap.Error(err))
	}

	now := time.Now().UTC()
	account := &models.Account{
		Email:        strings.TrimSpace(*email),
		Username:     strings.TrimSpace(*username),
		PasswordHash: hash,
		Roles:        models.Roles{models.RoleUser, models.RoleAdmin},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	repo := repository.NewRepository(db.DB)
	if err := repo.User.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmailTaken), errors.Is(err, apperrors.ErrUsernameTaken):
			zl.Fatal("admin account already exists", zap.String("username", account.Username), zap.Error(err))
		default:
			zl.Fatal("create admin", zap.Error(err))
		}
	}

	zl.Info("admin account created", zap.Int64("id", account.ID), zap.String("username", account.Username))
}
