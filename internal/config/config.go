package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config holds the bot's runtime settings, loaded from the environment.
type Config struct {
	DiscordToken  string        `env:"DISCORD_TOKEN,required"`
	TTSLanguage   string        `env:"TTS_LANGUAGE" envDefault:"vi"`
	TriggerPrefix string        `env:"TRIGGER_PREFIX" envDefault:", "`
	IdleTimeout   time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

// New loads configuration from the environment. Missing required values are
// fatal at startup.
func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERR] Failed to parse config: %v", err)
	}
	return cfg
}
