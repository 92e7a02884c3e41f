package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "bidmarket/docs" // swagger docs

	"bidmarket/internal/auth"
	"bidmarket/internal/cache"
	"bidmarket/internal/config"
	"bidmarket/internal/db"
	"bidmarket/internal/handler"
	"bidmarket/internal/model"
	"bidmarket/internal/otp"
	"bidmarket/internal/repository"
	"bidmarket/internal/router"
	"bidmarket/internal/service"
)

// @title Bidmarket User Service API
// @version 1.0
// @description User accounts with OTP login, JWT refresh-token rotation, addresses, and bids.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Bid{},
			&model.Address{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Bid{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)

	tokenService := auth.NewTokenService(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	otpClient := otp.NewClient(cfg.AuthServiceURL, cfg.OTPVerifyTimeout)

	sessionService := service.NewSessionService(userRepo, tokenService, otpClient, cacheClient, cfg.OTPVerifyTimeout)
	userService := service.NewUserService(userRepo, cacheClient)

	sessionHandler := handler.NewSessionHandler(sessionService)
	userHandler := handler.NewUserHandler(userService)
	addressHandler := handler.NewAddressHandler(userService)

	router.Register(e, cfg, sessionHandler, userHandler, addressHandler)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: %s/swagger/index.html", cfg.SwaggerHost)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
