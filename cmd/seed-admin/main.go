package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
	"github.com/bodhmantraa/bodhmantraa-api/internal/repository"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/config"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/database"
	"github.com/bodhmantraa/bodhmantraa-api/pkg/logger"
)

// seed-admin provisions the admin account from ADMIN_NAME, ADMIN_EMAIL and
// ADMIN_PASSWORD. Admins cannot self-register; this is the only way in.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.AdminSeed.Email == "" || cfg.AdminSeed.Password == "" {
		logr.Sugar().Fatalw("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminSeed.Password), bcrypt.DefaultCost)
	if err != nil {
		logr.Sugar().Fatalw("failed to hash password", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin := &models.Admin{
		Name:         cfg.AdminSeed.Name,
		Email:        cfg.AdminSeed.Email,
		PasswordHash: string(hash),
	}
	if err := repository.NewAdminRepository(db).Upsert(ctx, admin); err != nil {
		logr.Sugar().Fatalw("failed to seed admin", "error", err)
	}

	logr.Sugar().Infow("admin account seeded", "email", admin.Email)
}
