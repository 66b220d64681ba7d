package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/config"
	"github.com/stemsi/anonq-bot/internal/embed"
	"github.com/stemsi/anonq-bot/internal/model"
	"github.com/stemsi/anonq-bot/internal/repository"
	"github.com/stemsi/anonq-bot/internal/service"
)

func newAdminFixture(t *testing.T, env string) (*AdminHandler, *fakePlatform, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	questions := newQuestionService(t, store)
	cfg := &config.Config{AppEnv: env, Administrators: []string{"admin"}}
	platform := &fakePlatform{}
	stats := service.NewStatisticService(store, zerolog.Nop())
	return NewAdminHandler(cfg, platform, questions, stats, zerolog.Nop()), platform, store
}

func adminMessage(authorID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	}
}

func TestAdmin_IgnoresNonAdministrators(t *testing.T) {
	h, platform, _ := newAdminFixture(t, "development")

	h.Handle(context.Background(), adminMessage("someone", AdminDeploy))
	bot := adminMessage("admin", AdminDeploy)
	bot.Author.Bot = true
	h.Handle(context.Background(), bot)
	dm := adminMessage("admin", AdminDeploy)
	dm.GuildID = ""
	h.Handle(context.Background(), dm)

	if platform.deployed != 0 || len(platform.adminReplies) != 0 {
		t.Errorf("expected no action, got %d deployed and %d replies", platform.deployed, len(platform.adminReplies))
	}
}

func TestAdmin_Deploy(t *testing.T) {
	tests := []struct {
		env       string
		wantGuild string
		wantText  string
	}{
		{env: "development", wantGuild: "g1", wantText: "Deployed 2 commands to **Test Guild**"},
		{env: "production", wantGuild: "", wantText: "Deployed 2 commands **globally**"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			h, platform, _ := newAdminFixture(t, tt.env)
			h.Handle(context.Background(), adminMessage("admin", AdminDeploy))

			if platform.deployedGuild != tt.wantGuild {
				t.Errorf("expected guild %q, got %q", tt.wantGuild, platform.deployedGuild)
			}
			if len(platform.adminReplies) != 1 || platform.adminReplies[0].Description != tt.wantText {
				t.Errorf("expected %q, got %+v", tt.wantText, platform.adminReplies)
			}
		})
	}
}

func TestAdmin_ClearOnlyInDevMode(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			h, platform, store := newAdminFixture(t, env)
			q := &model.Question{QuestionID: "abc123", QuestionType: model.QuestionTypeFreeResponse, Prompt: "Hi?"}
			if err := store.Questions().Create(context.Background(), q); err != nil {
				t.Fatalf("seed: %v", err)
			}

			h.Handle(context.Background(), adminMessage("admin", AdminClear))

			_, stillThere := store.Snapshot(q.ID)
			if env == "development" {
				if stillThere {
					t.Error("expected question to be cleared")
				}
				if len(platform.adminReplies) != 1 || platform.adminReplies[0].Description != "Cleared 1 questions" {
					t.Errorf("unexpected reply %+v", platform.adminReplies)
				}
				return
			}
			if !stillThere || len(platform.adminReplies) != 0 {
				t.Error("aq.clear must be ignored outside development")
			}
		})
	}
}

func TestAdmin_Stats(t *testing.T) {
	h, platform, _ := newAdminFixture(t, "production")
	h.Handle(context.Background(), adminMessage("admin", AdminStats))

	if len(platform.adminReplies) != 1 {
		t.Fatalf("expected one reply, got %d", len(platform.adminReplies))
	}
	got := platform.adminReplies[0]
	if got.Color != embed.ColorInfo || !strings.Contains(got.Description, model.StatisticQuestions+": **0**") {
		t.Errorf("unexpected stats reply %q", got.Description)
	}
}

func TestAdmin_StatsFailure(t *testing.T) {
	h, platform, _ := newAdminFixture(t, "production")
	h.counters = brokenCounters{}

	h.Handle(context.Background(), adminMessage("admin", AdminStats))

	if len(platform.adminReplies) != 1 || platform.adminReplies[0].Color != embed.ColorError {
		t.Errorf("expected error reply, got %+v", platform.adminReplies)
	}
}
