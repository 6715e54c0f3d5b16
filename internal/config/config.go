package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken    string        `env:"DISCORD_TOKEN,required"`
	YouTubeAPIKey   string        `env:"YOUTUBE_API_KEY"`
	FFmpegPath      string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	StatusRefresh   time.Duration `env:"STATUS_REFRESH_INTERVAL" envDefault:"30s"`
	WatchdogPoll    time.Duration `env:"WATCHDOG_INTERVAL" envDefault:"15s"`
	ControlCooldown time.Duration `env:"CONTROL_COOLDOWN" envDefault:"3s"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal("Failed to parse environment config: ", err)
	}
	return cfg
}
