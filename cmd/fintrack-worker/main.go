package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/usere2211-alt/finance-dashboard/internal/backend"
	"github.com/usere2211-alt/finance-dashboard/internal/cli"
	"github.com/usere2211-alt/finance-dashboard/internal/config"
	"github.com/usere2211-alt/finance-dashboard/internal/events"
	applog "github.com/usere2211-alt/finance-dashboard/internal/log"
	"github.com/usere2211-alt/finance-dashboard/internal/mirror/sheets"
	"github.com/usere2211-alt/finance-dashboard/internal/worker"
)

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stdout).WithComponent(applog.ComponentWorker)

	logger.Info("Starting fintrack-worker")

	if !cfg.MirrorEnabled() {
		logger.Error("Google Sheets mirror disabled - set GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend is process-local; the worker will mirror an empty ledger")
	}

	st, err := backend.NewFactory(logger).OpenStore(cfg)
	if err != nil {
		logger.Error("Failed to open store", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer st.Close()

	mirror, err := sheets.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetPrefix, sheets.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mw := worker.NewMirrorWorker(st, mirror, logger)

	var amqpClient *events.Client
	if cfg.EventsEnabled() {
		amqpClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled - mirroring on the periodic schedule only")
	}

	var wg sync.WaitGroup
	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(context.Context) {
		wg.Wait()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", applog.FieldError, err)
			}
		}
	})

	// Periodic full sync catches events missed while the worker was down.
	wg.Add(1)
	go func() {
		defer wg.Done()
		mw.Run(ctx, cfg.MirrorInterval)
	}()

	if amqpClient != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := amqpClient.Consume(ctx, mw.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err)
			}
		}()
	}

	<-done
	logger.Info("Worker stopped")
}
