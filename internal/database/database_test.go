package database

import (
	"path/filepath"
	"testing"

	"github.com/gdg-garage/shift-booking-bot/internal/config"
)

func TestConnect(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, err := Connect(&config.Config{DatabasePath: filepath.Join(t.TempDir(), "shifts.db")})
		if err != nil {
			t.Fatalf("Connect returned error: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("failed to get sql.DB: %v", err)
		}
		sqlDB.Close()
	})

	t.Run("UnreachablePath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "shifts.db")
		if _, err := Connect(&config.Config{DatabasePath: path}); err == nil {
			t.Fatal("expected error for database in a missing directory")
		}
	})
}
