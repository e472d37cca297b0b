package main

import (
	"context"
	"log"
	"os"

	"carmeet/internal/config"
	"carmeet/internal/model"
	"carmeet/internal/repository"
	"carmeet/internal/utils"

	"github.com/joho/godotenv"
)

// seedadmin creates or updates an admin account. Admin provisioning is
// out-of-band: the server itself has no signup route.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load DB config: %v", err)
	}

	dbPool, err := config.ConnectDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	adminRepo := repository.NewAdminRepository(dbPool)
	admin := &model.Admin{Username: username, PasswordHash: hash}
	if err := adminRepo.Upsert(context.Background(), admin); err != nil {
		log.Fatalf("Failed to upsert admin: %v", err)
	}

	log.Printf("Admin user created/updated: %s (id %d)", admin.Username, admin.ID)
}
