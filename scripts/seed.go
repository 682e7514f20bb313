//go:build ignore

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hravenhq/hraven/internal/auth"
	"github.com/hravenhq/hraven/internal/database"
	"github.com/hravenhq/hraven/internal/database/models"
	"github.com/hravenhq/hraven/internal/role"
	"github.com/hravenhq/hraven/pkg/config"
	"github.com/hravenhq/hraven/pkg/password"
	"github.com/hravenhq/hraven/pkg/util"
	"github.com/joho/godotenv"
)

// Seeds the database: runs migrations, installs the global roles, and
// creates a SuperAdmin account. Run with: go run scripts/seed.go
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if err := role.Seed(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	email := os.Getenv("SUPERADMIN_EMAIL")
	if email == "" {
		email = "root@hraven.io"
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("SuperAdmin %s already exists, nothing to do\n", email)
		return
	}

	plain := os.Getenv("SUPERADMIN_PASSWORD")
	generated := false
	if plain == "" {
		plain, err = password.Generate(password.DefaultLength)
		if err != nil {
			log.Fatalf("failed to generate password: %v", err)
		}
		generated = true
	}

	hash, err := auth.HashPassword(plain)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var superRole models.Role
	if err := db.Where("name = ? AND tenant_id IS NULL", models.RoleSuperAdmin).First(&superRole).Error; err != nil {
		log.Fatalf("failed to load SuperAdmin role: %v", err)
	}

	user := models.User{
		FirstName:     "Super",
		LastName:      "Admin",
		Email:         email,
		PasswordHash:  hash,
		RoleID:        superRole.ID,
		IsActive:      true,
		EmailVerified: true,
		// SuperAdmins have no tenant and never see the wizard.
		OnboardingCompleted: true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create SuperAdmin: %v", err)
	}

	fmt.Printf("Created SuperAdmin %s\n", email)
	if generated {
		fmt.Printf("Generated password: %s\n", plain)
	}
}
