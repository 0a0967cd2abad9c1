package config

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.CommandPrefix != "!" {
		t.Errorf("expected default prefix '!', got %q", cfg.CommandPrefix)
	}
	if cfg.ReminderInterval != time.Minute {
		t.Errorf("expected reminder interval 1m, got %s", cfg.ReminderInterval)
	}
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("DISCORD_COVER_CHANNEL_ID", "555")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REMINDER_INTERVAL", "30s")
	t.Setenv("DATABASE_PATH", "from-env.db")

	cfg, err := Load([]string{"--database", "from-flag.db", "--port", "9090"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DiscordCoverChannelID != "555" {
		t.Errorf("expected cover channel from env, got %q", cfg.DiscordCoverChannelID)
	}
	if cfg.ReminderInterval != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.ReminderInterval)
	}
	if cfg.DatabasePath != "from-flag.db" {
		t.Errorf("expected flag to win over env, got %q", cfg.DatabasePath)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
}

func TestLoad_RejectsZeroInterval(t *testing.T) {
	t.Setenv("REMINDER_INTERVAL", "0s")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(nil); err == nil {
		t.Fatal("expected error for zero reminder interval")
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load(nil)
	if err == nil {
		t.Fatal("expected error for empty JWT secret")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("expected error to name JWT_SECRET, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "shift", "Night")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"shift":"Night"`) {
		t.Errorf("expected JSON warn record, got %q", out)
	}
}
