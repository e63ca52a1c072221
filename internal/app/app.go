// Package app wires the application together: the Telegram dispatch loop,
// the intake worker draining the OCR queue, and the health/metrics server,
// all running on one signal-canceled context.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Diwan1337/quantum-ocr-bot/internal/bot"
	"github.com/Diwan1337/quantum-ocr-bot/internal/intake"
	"github.com/Diwan1337/quantum-ocr-bot/internal/ocr"
	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/config"
	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/observability"
	"github.com/Diwan1337/quantum-ocr-bot/internal/reconcile"
	"github.com/Diwan1337/quantum-ocr-bot/internal/sheets"
	"github.com/Diwan1337/quantum-ocr-bot/internal/state"
)

type App struct {
	cfg    *config.Config
	logger *zerolog.Logger
}

func New(cfg *config.Config, logger *zerolog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run builds the dependency graph and blocks until ctx is canceled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := sheets.NewClient(ctx, a.cfg.GoogleCredentialsFile, a.cfg.SpreadsheetID, a.logger)
	if err != nil {
		return fmt.Errorf("record store init failed: %w", err)
	}

	// The scores sheet header stays operator-provisioned; only the
	// feedback sheet is bootstrapped.
	if err := client.EnsureSheet(ctx, a.cfg.FeedbackSheet, reconcile.FeedbackHeader); err != nil {
		return fmt.Errorf("feedback sheet bootstrap failed: %w", err)
	}

	reconciler := reconcile.New(
		client.Sheet(a.cfg.ScoresSheet),
		client.Sheet(a.cfg.FeedbackSheet),
		a.cfg.ReconcilePolicy,
		a.cfg.ReconcileTolerance,
		a.logger,
	)

	telegram, err := bot.NewTelegram(a.cfg.BotToken, a.cfg.RateLimitRPS, a.cfg.TmpDir, a.logger)
	if err != nil {
		return fmt.Errorf("bot initialization failed: %w", err)
	}

	states := state.NewStore()
	queue := intake.NewQueue()

	extractor := ocr.New(&ocr.Tesseract{
		Binary: a.cfg.TesseractPath,
		Lang:   a.cfg.TesseractLang,
	}, a.logger)

	worker := intake.NewWorker(queue, extractor, reconciler, telegram, states, a.logger)
	dispatcher := bot.New(a.cfg, telegram, states, queue, reconciler, telegram.Updates(), a.logger)
	health := observability.NewServer(a.cfg.HealthPort, a.logger)

	errCh := make(chan error, 3)

	go func() { errCh <- health.Start(ctx) }()
	go func() { errCh <- worker.Run(ctx) }()
	go func() { errCh <- dispatcher.Run(ctx) }()

	// First component to exit takes the process down with it.
	err = <-errCh
	cancel()

	if err == nil {
		err = ctx.Err()
	}

	return err
}
