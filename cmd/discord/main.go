package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"tunebox/internal/config"
	"tunebox/internal/discord"
	"tunebox/internal/music/driver"
	"tunebox/internal/music/resolver"
	"tunebox/internal/music/sources/youtube"
	"tunebox/internal/session"
	v "tunebox/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatal("[ERR] Failed to create Discord session: ", err)
	}

	var dataService *ytapi.Service
	if cfg.YouTubeAPIKey != "" {
		dataService, err = ytapi.NewService(ctx, option.WithAPIKey(cfg.YouTubeAPIKey))
		if err != nil {
			log.Fatal("[ERR] Failed to create YouTube service: ", err)
		}
	} else {
		log.Println("[WARN] YOUTUBE_API_KEY not set, playlist support disabled")
	}

	manager := session.NewManager(
		driver.New(dg, cfg.FFmpegPath),
		resolver.New(youtube.New(dataService)),
		discord.NewPresenter(dg),
		session.Config{
			StatusRefresh:   cfg.StatusRefresh,
			WatchdogPoll:    cfg.WatchdogPoll,
			ControlCooldown: cfg.ControlCooldown,
		},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, dg, manager); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Printf("[INFO] %s exited cleanly", v.AppName)
}
