package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"newsportal/internal/config"
	"newsportal/internal/db"
	"newsportal/internal/logging"
	"newsportal/internal/model"
	"newsportal/internal/repository"
	"newsportal/internal/slug"
)

// defaultCategories are created when missing. Existing ones are left as they are.
var defaultCategories = []struct {
	Name        string
	Description string
}{
	{"Politics", "Government, elections and public policy"},
	{"Business", "Markets, companies and the economy"},
	{"Technology", "Software, hardware and the internet"},
	{"Science", "Research and discoveries"},
	{"Sports", "Results, transfers and analysis"},
	{"Culture", "Arts, books, film and music"},
}

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting seed")

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		fatal("connect to database", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		fatal("migrate", err)
	}

	ctx := context.Background()

	created, err := seedAdmin(ctx, repository.NewUserRepository(gormDB), cfg)
	if err != nil {
		fatal("seed admin", err)
	}
	if created {
		logger.Info("admin user created", "email", cfg.SeedAdminEmail)
	} else {
		logger.Info("admin user already present", "email", cfg.SeedAdminEmail)
	}

	n, err := seedCategories(ctx, repository.NewCategoryRepository(gormDB))
	if err != nil {
		fatal("seed categories", err)
	}
	logger.Info("seed completed", "categories_created", n)
}

// seedAdmin creates the configured admin account, or promotes an existing
// account with the same email. It never changes an existing password.
func seedAdmin(ctx context.Context, users repository.UserRepository, cfg *config.Config) (bool, error) {
	existing, err := users.FindByEmail(ctx, cfg.SeedAdminEmail)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin && existing.Active {
			return false, nil
		}
		existing.Role = model.RoleAdmin
		existing.Active = true
		return false, users.Update(ctx, existing)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	if cfg.SeedAdminPassword == "" {
		return false, fmt.Errorf("SEED_ADMIN_PASSWORD is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.User{
		Username:     cfg.SeedAdminUsername,
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}

func seedCategories(ctx context.Context, categories repository.CategoryRepository) (int, error) {
	created := 0
	for _, c := range defaultCategories {
		s := slug.Generate(c.Name)
		_, err := categories.FindBySlug(ctx, s)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		if err := categories.Create(ctx, &model.Category{
			Name:        c.Name,
			Slug:        s,
			Description: c.Description,
			Active:      true,
		}); err != nil {
			return created, fmt.Errorf("create %s: %w", c.Name, err)
		}
		created++
	}
	return created, nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
