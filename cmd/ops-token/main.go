package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/anonq-bot/internal/config"
	"github.com/stemsi/anonq-bot/internal/database"
	"github.com/stemsi/anonq-bot/internal/logger"
	"github.com/stemsi/anonq-bot/internal/service"
)

func main() {
	var subject, revoke string
	flag.StringVar(&subject, "subject", "ops", "Who the token is issued to")
	flag.StringVar(&revoke, "revoke", "", "Revoke the given token instead of issuing one")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if revoke == "" {
		authService := service.NewAuthService(cfg, nil)
		token, claims, err := authService.IssueToken(subject)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Token for %q (id %s, expires %s):\n%s\n",
			claims.Subject, claims.ID, claims.ExpiresAt.Time.Format(time.RFC3339), token)
		return
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	authService := service.NewAuthService(cfg, rdb)
	claims, err := authService.ValidateToken(ctx, revoke)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := authService.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		log.Fatal().Err(err).Msg("Failed to revoke token")
	}
	fmt.Printf("Revoked token %s\n", claims.ID)
}
