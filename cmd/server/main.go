package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/shift-booking-bot/internal/auth"
	"github.com/gdg-garage/shift-booking-bot/internal/booking"
	"github.com/gdg-garage/shift-booking-bot/internal/bot"
	"github.com/gdg-garage/shift-booking-bot/internal/config"
	"github.com/gdg-garage/shift-booking-bot/internal/database"
	"github.com/gdg-garage/shift-booking-bot/internal/handlers"
	"github.com/gdg-garage/shift-booking-bot/internal/notifier"
	"github.com/gdg-garage/shift-booking-bot/internal/reminder"
	"github.com/gdg-garage/shift-booking-bot/internal/roster"
	"github.com/gdg-garage/shift-booking-bot/internal/session"
	"github.com/gdg-garage/shift-booking-bot/internal/store"
	"github.com/go-chi/chi/v5"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run() error {
	// Load Configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	st := store.New(db)

	// The roster file is the source of truth; an unreadable file keeps the
	// previously imported roster.
	if n, err := roster.ImportFile(ctx, st, cfg.RosterPath); err != nil {
		stored, _ := st.StudentCount(ctx)
		logger.Warn("roster not imported, keeping stored roster", "path", cfg.RosterPath, "students", stored, "error", err)
	} else {
		logger.Info("roster imported", "path", cfg.RosterPath, "students", n)
	}

	manager := booking.NewManager(st, nil)
	resolver := roster.NewResolver(st)
	sessions := session.NewStore()

	// Discord is optional; the HTTP API runs either way.
	var discordNotifier notifier.Notifier
	if cfg.DiscordBotToken == "" {
		logger.Warn("DISCORD_BOT_TOKEN not set, chat bot and reminders disabled")
	} else {
		dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			return fmt.Errorf("failed to create discord session: %w", err)
		}
		n := notifier.NewDiscordNotifier(dg, cfg.DiscordAnnounceChannelID, cfg.DiscordCoverChannelID)
		discordNotifier = n

		chatBot := bot.New(bot.Deps{
			Manager:   manager,
			Resolver:  resolver,
			Sessions:  sessions,
			Notifier:  n,
			Messenger: bot.NewDiscordMessenger(dg),
			Prefix:    cfg.CommandPrefix,
			Logger:    logger.With("component", "bot"),
		})
		chatBot.Attach(ctx, dg)
		if err := dg.Open(); err != nil {
			return fmt.Errorf("failed to open discord session: %w", err)
		}
		defer dg.Close()

		scheduler := reminder.New(manager, chatBot, logger.With("component", "reminder"))
		scheduler.Interval = cfg.ReminderInterval
		go scheduler.Run(ctx)
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, resolver)
	bookingHandler := handlers.NewBookingHandler(manager, authHandler, discordNotifier, logger.With("component", "http"))

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, authHandler, bookingHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	// Start Server
	logger.Info("starting server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
