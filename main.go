package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/wordmemo/internal/bot"
	"github.com/example/wordmemo/internal/config"
	"github.com/example/wordmemo/internal/database"
	"github.com/example/wordmemo/internal/importer"
	"github.com/example/wordmemo/internal/logger"
	"github.com/example/wordmemo/internal/scheduler"
	"github.com/example/wordmemo/internal/session"
	"github.com/example/wordmemo/internal/source"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	for _, w := range cfg.Warnings {
		log.Warn("Ignoring configuration value", "reason", w)
	}

	// Channel for termination signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("Failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}
	defer db.Close()

	sess := session.New(session.Options{
		Storage: database.NewKVStore(db, log.With("component", "storage")),
		Logger:  log.With("component", "session"),
		Reverse: cfg.ReverseOrder,
	})

	fetcher := source.NewFetcher(nil)
	watcher := source.NewWatcher(sess, fetcher, importer.DefaultImportConfig(), log.With("component", "source"))

	// A restored deck keeps its progress; only a fresh install loads the word list
	if st := sess.State(); st.DeckSize == 0 {
		loadCtx, loadCancel := context.WithTimeout(ctx, time.Minute)
		if st, err := watcher.Load(loadCtx, cfg.Source); err != nil {
			log.Warn("Starting with an empty deck", "source", cfg.Source, "error", err)
		} else {
			log.Info("Loaded word list", "source", cfg.Source, "cards", st.DeckSize)
		}
		loadCancel()
	} else {
		log.Info("Restored deck", "source", st.Source, "cards", st.DeckSize)
	}

	b, err := bot.New(&bot.BotConfig{
		Token:         cfg.TelegramToken,
		OwnerChatID:   cfg.OwnerChatID,
		Source:        cfg.Source,
		HistoryDays:   7,
		UpdateTimeout: 60,
	}, bot.Deps{
		Session: sess,
		Watcher: watcher,
		Fetcher: fetcher,
		Stats:   database.NewStatisticsRepository(db),
		Logger:  log.With("component", "bot"),
	})
	if err != nil {
		log.Fatal("Failed to create bot", "error", err)
	}

	sched := scheduler.New(watcher, sess, b, scheduler.Options{
		CheckInterval:    cfg.CheckInterval,
		ReminderInterval: cfg.ReminderInterval,
		StartHour:        cfg.NotificationStartHour,
		EndHour:          cfg.NotificationEndHour,
	}, log.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", "error", err)
	}

	done := make(chan struct{})
	go func() {
		if err := b.Start(ctx); err != nil {
			log.Error("Bot error", "error", err)
		}
		close(done)
	}()

	log.Info("Bot started. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Info("Received signal", "signal", sig.String())
	case <-done:
	}

	cancel()
	sched.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("Timed out waiting for the bot to stop")
	}
	log.Info("Bot stopped successfully")
}
