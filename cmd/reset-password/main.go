// Command reset-password is an operator tool that force-resets a
// user's password and invalidates their sessions. Usage:
//
//	reset-password <email> <new-password>
package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"stocksy/config"
	"stocksy/internal/model"
	"stocksy/pkg/database"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatal("usage: reset-password <email> <new-password>")
	}
	email, newPassword := os.Args[1], os.Args[2]
	if len(newPassword) < 8 {
		log.Fatal("new password must be at least 8 characters")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	db, err := database.Connect(cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	var user model.User
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		log.Fatalf("user %s not found: %v", email, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Rotating the token version logs the user out everywhere.
	updates := map[string]interface{}{
		"password":      string(hashed),
		"token_version": uuid.New().String(),
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Fatalf("failed to update password: %v", err)
	}

	log.Printf("password for %s has been reset", email)
}
