package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/averdin/realmbroker/internal/domain"
	"github.com/averdin/realmbroker/internal/notify"
	"github.com/averdin/realmbroker/internal/scan"
	"github.com/averdin/realmbroker/internal/server"
	"github.com/averdin/realmbroker/internal/server/handler"
	"github.com/averdin/realmbroker/internal/server/ws"
)

// ScanMode runs a single market sweep and exits. Used for cron-style
// deployments where scheduling lives outside the process.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	progress := &domain.ScanProgress{}
	scanner := a.buildScanner(deps, progress, nil, nil)

	return a.runScanWithLock(ctx, deps, scanner)
}

// ServerMode runs the HTTP + WebSocket API without scheduled scans. Sweeps
// run only when requested through POST /api/scan/trigger.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	progress := &domain.ScanProgress{}
	scanner := a.buildScanner(deps, progress, hub, hub)

	triggerCh := make(chan struct{}, 1)
	g.Go(func() error {
		return a.scanLoop(ctx, deps, scanner, nil, triggerCh)
	})

	a.startHTTPServer(ctx, g, deps, progress, hub, triggerCh)

	return g.Wait()
}

// FullMode runs the API server plus interval-scheduled sweeps. Manual
// triggers through the API run a sweep early without disturbing the ticker.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode",
		slog.Duration("scan_interval", a.cfg.Scan.Interval()),
	)

	g, ctx := errgroup.WithContext(ctx)

	hub := ws.NewHub(a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	progress := &domain.ScanProgress{}
	scanner := a.buildScanner(deps, progress, hub, hub)

	ticker := time.NewTicker(a.cfg.Scan.Interval())
	triggerCh := make(chan struct{}, 1)
	g.Go(func() error {
		defer ticker.Stop()
		return a.scanLoop(ctx, deps, scanner, ticker.C, triggerCh)
	})

	a.startHTTPServer(ctx, g, deps, progress, hub, triggerCh)

	return g.Wait()
}

// progressSink receives live progress snapshots.
type progressSink interface {
	BroadcastProgress(snap domain.ProgressSnapshot)
}

// opportunitySink receives freshly persisted opportunities.
type opportunitySink interface {
	BroadcastOpportunity(opp domain.Opportunity)
}

// buildScanner assembles a Scanner from the wired dependencies. The sinks may
// be nil for headless runs.
func (a *App) buildScanner(deps *Dependencies, progress *domain.ScanProgress, psink progressSink, osink opportunitySink) *scan.Scanner {
	alerter := notify.NewScanAlerter(deps.Notifier)

	var wsAlerter scan.Alerter = alerter
	if osink != nil {
		wsAlerter = &fanoutAlerter{next: alerter, sink: osink}
	}

	var onProgress func(domain.ProgressSnapshot)
	if psink != nil {
		onProgress = psink.BroadcastProgress
	}

	return scan.NewScanner(scan.Config{
		Fetcher:    deps.Blizzard,
		Searcher:   deps.Blizzard,
		Items:      deps.ItemStore,
		Realms:     deps.RealmStore,
		Opps:       deps.OpportunityStore,
		Settings:   deps.SettingsStore,
		IDCache:    deps.ItemIDCache,
		Progress:   progress,
		Snapshots:  deps.Snapshots,
		Alerter:    wsAlerter,
		OnProgress: onProgress,
	}, a.logger)
}

// fanoutAlerter forwards scan events to the notifier and mirrors persisted
// opportunities onto the WebSocket feed.
type fanoutAlerter struct {
	next scan.Alerter
	sink opportunitySink
}

func (f *fanoutAlerter) OpportunityFound(ctx context.Context, opp domain.Opportunity) {
	f.sink.BroadcastOpportunity(opp)
	f.next.OpportunityFound(ctx, opp)
}

func (f *fanoutAlerter) ScanComplete(ctx context.Context, created int, snap domain.ProgressSnapshot) {
	f.next.ScanComplete(ctx, created, snap)
}

// scanLoop runs sweeps on ticker ticks and manual triggers until the context
// is cancelled. tickCh may be nil (trigger-only operation). A sweep that
// fails is logged; the loop keeps running so one bad sweep does not take the
// process down.
func (a *App) scanLoop(ctx context.Context, deps *Dependencies, scanner *scan.Scanner, tickCh <-chan time.Time, triggerCh <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tickCh:
		case <-triggerCh:
		}

		if err := a.runScanWithLock(ctx, deps, scanner); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.ErrorContext(ctx, "scan sweep failed",
				slog.String("error", err.Error()),
			)
		}
	}
}

// runScanWithLock acquires the distributed scan lock, runs one sweep, and
// releases the lock. A lock held elsewhere skips the sweep rather than
// queueing behind it.
func (a *App) runScanWithLock(ctx context.Context, deps *Dependencies, scanner *scan.Scanner) error {
	release, err := deps.ScanLock.Acquire(ctx, a.cfg.Scan.LockTTL())
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			a.logger.WarnContext(ctx, "scan already running elsewhere, skipping sweep")
			return nil
		}
		return fmt.Errorf("app: acquire scan lock: %w", err)
	}
	defer release()

	start := time.Now()
	created, err := scanner.Run(ctx)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	a.logger.InfoContext(ctx, "scan sweep finished",
		slog.Int("opportunities", created),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// startHTTPServer adds the API server goroutine plus a graceful-shutdown
// watcher to the given errgroup.
func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	progress *domain.ScanProgress,
	hub *ws.Hub,
	triggerCh chan<- struct{},
) {
	syncer := scan.NewRealmSyncer(deps.Blizzard, deps.RealmStore, a.logger)

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Items:         handler.NewItemHandler(deps.ItemStore, a.logger),
		Realms:        handler.NewRealmHandler(deps.RealmStore, deps.SettingsStore, syncer, a.logger),
		Opportunities: handler.NewOpportunityHandler(deps.OpportunityStore, a.logger),
		Scan:          handler.NewScanHandler(progress, deps.RealmStore, a.logger).WithTriggerChannel(triggerCh),
		Settings:      handler.NewSettingsHandler(deps.SettingsStore, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		return ctx.Err()
	})
}
