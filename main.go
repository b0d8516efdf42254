package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathakanu/reminderbot/internal/bot"
	"github.com/pathakanu/reminderbot/internal/config"
	"github.com/pathakanu/reminderbot/internal/database"
	"github.com/pathakanu/reminderbot/internal/datetime"
	"github.com/pathakanu/reminderbot/internal/httpapi"
	"github.com/pathakanu/reminderbot/internal/llm"
	"github.com/pathakanu/reminderbot/internal/metrics"
	"github.com/pathakanu/reminderbot/internal/poller"
	"github.com/pathakanu/reminderbot/internal/relay"
	"github.com/pathakanu/reminderbot/internal/store"
	"github.com/pathakanu/reminderbot/internal/twilio"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := log.New(os.Stdout, "[reminder-bot] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("database init failed: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Printf("database close: %v", err)
		}
	}()

	completer, err := llm.NewCompleter(cfg)
	if err != nil {
		logger.Fatalf("llm init failed: %v", err)
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Printf("OPENAI_API_KEY not set, every command will fail to parse")
	}

	registry := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(registry)

	reminders := store.New(db)
	dates := datetime.New(cfg.LocalTimezone, time.Now, logger)
	interpreter := llm.NewInterpreter(completer, cfg.LLMTimeout, logger)
	relayClient := relay.NewClient(cfg.RelayBaseURL, cfg.RelayAPIKey, cfg.RelayTimeout)

	reminderBot := bot.New(reminders, interpreter, relayClient, dates, m, logger)

	var twilioHook *httpapi.TwilioWebhook
	if cfg.TwilioEnabled() {
		twilioClient := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
		twilioHook = &httpapi.TwilioWebhook{
			Verifier:  twilioClient,
			Handler:   reminderBot.WithSender(twilioClient),
			PublicURL: cfg.TwilioWebhookURL,
		}
		logger.Printf("twilio: WhatsApp channel enabled for %s", cfg.TwilioWhatsAppNumber)
	}

	router := httpapi.NewRouter(httpapi.Options{
		Store:       reminders,
		Dates:       dates,
		Logger:      logger,
		Gatherer:    registry,
		CORSOrigins: cfg.CORSAllowOrigins,
		Twilio:      twilioHook,
	})
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, cfg.RelayTimeout)
	if err := relayClient.SetCommands(setupCtx, relay.DefaultCommands); err != nil {
		logger.Printf("relay: set commands: %v", err)
	}
	cancel()

	inbound := poller.New(relayClient, reminderBot, cfg.PollingInterval, m, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		inbound.Start()
		<-gctx.Done()
		logger.Println("shutting down...")
		inbound.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Printf("server error: %v", err)
	}
}
