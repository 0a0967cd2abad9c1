package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port                     string        `mapstructure:"PORT"`
	DatabasePath             string        `mapstructure:"DATABASE_PATH"`
	RosterPath               string        `mapstructure:"ROSTER_PATH"`
	DiscordBotToken          string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordAnnounceChannelID string        `mapstructure:"DISCORD_ANNOUNCE_CHANNEL_ID"`
	DiscordCoverChannelID    string        `mapstructure:"DISCORD_COVER_CHANNEL_ID"`
	CommandPrefix            string        `mapstructure:"COMMAND_PREFIX"`
	JWTSecret                string        `mapstructure:"JWT_SECRET"`
	EnableCORS               bool          `mapstructure:"ENABLE_CORS"`
	CORSOrigins              []string      `mapstructure:"CORS_ORIGINS"`
	ReminderInterval         time.Duration `mapstructure:"REMINDER_INTERVAL"`
	LogLevel                 string        `mapstructure:"LOG_LEVEL"`
	LogFormat                string        `mapstructure:"LOG_FORMAT"`
}

// Load resolves configuration from, in increasing priority: defaults, an
// optional config file, the environment (including .env) and flags.
func Load(args []string) (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "shifts.db")
	v.SetDefault("ROSTER_PATH", "students.csv")
	v.SetDefault("COMMAND_PREFIX", "!")
	v.SetDefault("ENABLE_CORS", false)
	v.SetDefault("CORS_ORIGINS", []string{"*"})
	v.SetDefault("REMINDER_INTERVAL", time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	flags := pflag.NewFlagSet("shift-booking-bot", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a config file (yaml, toml or json)")
	flags.String("port", "", "HTTP listen port")
	flags.String("database", "", "sqlite database path")
	flags.String("roster", "", "student roster CSV path")
	flags.String("log-level", "", "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	for key, name := range map[string]string{
		"PORT":          "port",
		"DATABASE_PATH": "database",
		"ROSTER_PATH":   "roster",
		"LOG_LEVEL":     "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, err
		}
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.BindEnv("DISCORD_BOT_TOKEN")
	v.BindEnv("DISCORD_ANNOUNCE_CHANNEL_ID")
	v.BindEnv("DISCORD_COVER_CHANNEL_ID")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("ENABLE_CORS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("REMINDER_INTERVAL")

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if config.ReminderInterval <= 0 {
		return nil, fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", config.ReminderInterval)
	}
	return &config, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
// Unknown levels fall back to info.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
