package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stemsi/anonq-bot/internal/commands"
	"github.com/stemsi/anonq-bot/internal/config"
	"github.com/stemsi/anonq-bot/internal/logger"
	"github.com/stemsi/anonq-bot/internal/platform"
	"golang.org/x/term"
)

func main() {
	var guildID string
	var global bool
	flag.StringVar(&guildID, "guild", "", "Guild to deploy to (defaults to DEV_GUILD_ID in development)")
	flag.BoolVar(&global, "global", false, "Deploy globally instead of to a guild")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if !global && guildID == "" && cfg.DevMode() {
		guildID = cfg.DevGuildID
	}
	if global {
		guildID = ""
	}

	// ─── Bot Token ─────────────────────────────────────────────────────
	token := cfg.DiscordToken
	if token == "" {
		fmt.Print("Enter Bot Token: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Println("Error reading token")
			os.Exit(1)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		fmt.Println("Error: a bot token is required")
		os.Exit(1)
	}

	discord, err := platform.New(token, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The bot user id doubles as the application id.
	me, err := discord.Session().User("@me", discordgo.WithContext(ctx))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve the bot user")
	}

	n, err := platform.DeployCommands(ctx, discord.Session(), me.ID, guildID, commands.All())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to deploy commands")
	}

	target := "globally"
	if guildID != "" {
		target = "to guild " + guildID
	}
	fmt.Printf("Deployed %d commands %s\n", n, target)
}
