package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/config"
	"github.com/mauv0809/padel-ladder/internal/database"
	server "github.com/mauv0809/padel-ladder/internal/http"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/mauv0809/padel-ladder/internal/league"
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/notifier"
	"github.com/mauv0809/padel-ladder/internal/notifier/email"
	"github.com/mauv0809/padel-ladder/internal/notifier/slack"
	"github.com/mauv0809/padel-ladder/internal/processor"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
	"github.com/mauv0809/padel-ladder/internal/scheduler"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	pubsubClient, err := pubsub.New(cfg.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize pubsub: %s", err)
	}
	defer pubsubClient.Close()

	var (
		emailSink notifier.Notifier
		chatSink  notifier.Notifier
		announcer server.Announcer
	)
	if cfg.SES.Enabled() {
		sender, err := email.NewSender(context.Background(), cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, cfg.SES.Region, cfg.SES.Sender)
		if err != nil {
			log.Fatalf("Failed to initialize SES: %s", err)
		}
		emailSink = sender
	} else {
		log.Warn("SES not configured, e-mail notifications are disabled")
	}
	if cfg.Slack.Token != "" {
		slackNotifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID)
		chatSink = slackNotifier
		announcer = slackNotifier
	} else {
		log.Warn("Slack not configured, chat notifications are disabled")
	}
	router := notifier.NewRouter(emailSink, chatSink, metricsSvc)

	ladderSvc := ladder.NewService(ladder.New(db), router, metricsSvc, pubsubClient)
	leagueSvc := league.NewService(league.New(db), router, seasonStart(cfg.SeasonStart))
	proc := processor.New(ladderSvc, router, metricsSvc, metrics.New(db))

	s := server.NewServer(ladderSvc, leagueSvc, proc, metricsSvc, metricsHandler, announcer, cfg, pubsubClient)

	sched, err := scheduler.New()
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %s", err)
	}
	if cfg.SweepCron != "" {
		_, err := sched.AddJob("deadline-sweep", cfg.SweepCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := proc.ProcessDeadlines(ctx, false); err != nil {
				log.Error("Deadline sweep failed", "error", err)
			}
			if _, err := leagueSvc.CheckDeadlines(ctx, false); err != nil {
				log.Error("League deadline check failed", "error", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule deadline sweep: %s", err)
		}
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error("Scheduler shutdown failed", "error", err)
		}
	}()

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

// seasonStart falls back to the Monday of the current week when SEASON_START is unset.
func seasonStart(configured time.Time) time.Time {
	if !configured.IsZero() {
		return configured
	}
	now := time.Now().UTC()
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset)
	log.Warn("SEASON_START not set, using the current week", "seasonStart", monday.Format(time.DateOnly))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}
