// cooksessiond is the cooking-session orchestration service.
//
// Usage:
//
//	cooksessiond [-verbose] [-quiet] [-log-file PATH]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/platekit/cooksession/internal/config"
	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/engine"
	"github.com/platekit/cooksession/internal/httpapi"
	"github.com/platekit/cooksession/internal/logger"
	"github.com/platekit/cooksession/internal/notify"
	"github.com/platekit/cooksession/internal/recipe"
	"github.com/platekit/cooksession/internal/storage"
	"github.com/platekit/cooksession/internal/timer"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "stderr", "file to write logs to (\"stderr\" for console)")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	log := logger.New(logLevel, logOut)

	cfg, err := config.Load()
	if err != nil {
		log.Error("loading config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session store: durable when a data dir is configured.
	var store domain.SessionStore
	if cfg.DataDir != "" {
		badgerStore, err := storage.NewBadgerStore(cfg.DataDir, log)
		if err != nil {
			log.Error("opening session store: %v", err)
			os.Exit(1)
		}
		defer badgerStore.Close()
		go badgerStore.StartGC(ctx, 10*time.Minute)
		store = badgerStore
	} else {
		log.Info("no DATA_DIR set, sessions are in-memory only")
		store = storage.NewMemoryStore(log)
	}

	// Step catalog: generated when OpenAI credentials are configured.
	var steps domain.StepSource
	if cfg.OpenAIAPIKey != "" {
		steps = recipe.NewOpenAISource(cfg.OpenAIAPIKey, cfg.OpenAIAPIBase, cfg.OpenAIModel, log)
		log.Info("step source: generated (model=%s)", cfg.OpenAIModel)
	} else {
		steps = recipe.NewMemoryCatalog(log)
		log.Info("step source: built-in catalog")
	}

	// Notification transport: Telegram when a bot token is configured.
	var sender domain.NotificationSender
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegramSender(cfg.TelegramBotToken, log)
		if err != nil {
			log.Error("creating telegram sender: %v", err)
			os.Exit(1)
		}
		sender = tg
	} else {
		log.Info("no TELEGRAM_BOT_TOKEN set, notifications go to the log")
		sender = notify.NewLogSender(log)
	}

	registry := timer.New(timer.RealClock(), log)
	dispatcher := notify.NewDispatcher(sender, log)
	eng := engine.New(steps, store, registry, dispatcher, log)

	// Park sessions left running by a previous process before serving.
	if err := eng.Recover(ctx); err != nil {
		log.Error("recovering sessions: %v", err)
	}

	go eng.Run(ctx)

	srv := httpapi.NewServer(cfg.HTTPAddr, eng, log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown: %v", err)
	}
	registry.CancelAll()
}
