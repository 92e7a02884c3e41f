package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"bidmarket/internal/config"
	"bidmarket/internal/db"
	"bidmarket/internal/model"
	"bidmarket/internal/repository"
)

// demoUsers are inserted by the seed script for local development.
var demoUsers = []model.User{
	{
		FirstName:   "Asha",
		LastName:    "Verma",
		PhoneNumber: "+15550000001",
		Email:       "asha@example.com",
		Role:        model.RoleUser,
		Addresses: []model.Address{
			{
				Name:        "Asha Verma",
				PhoneNumber: "+15550000001",
				Lane:        "12 Rose Lane",
				City:        "Pune",
				State:       "Maharashtra",
				Country:     "India",
				Pincode:     "411001",
			},
		},
		Bids: []model.Bid{
			{ProductID: "prod-1001", Amount: 250},
		},
	},
	{
		FirstName:   "Marcus",
		LastName:    "Lee",
		PhoneNumber: "+15550000002",
		Email:       "marcus@example.com",
		Role:        model.RoleAdmin,
		AdminDetails: &model.AdminDetails{
			BusinessName: "Lee Collectibles",
			Documents:    []string{"https://files.example.com/docs/lee-gst.pdf"},
		},
	},
	{
		PhoneNumber: "+15550000003",
		Role:        model.RoleUser,
	},
}

func main() {
	log.Println("Starting seed script...")

	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Address{}, &model.Bid{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	created, skipped := 0, 0
	for i := range demoUsers {
		user := demoUsers[i]

		_, err := userRepo.FindByPhone(ctx, user.PhoneNumber)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %s: %v", user.PhoneNumber, err)
		}

		user.IsNewUser = true
		if err := userRepo.Create(ctx, &user); err != nil {
			log.Fatalf("Failed to create user %s: %v", user.PhoneNumber, err)
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}
