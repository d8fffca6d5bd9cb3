// Package worker mirrors the local ledger to a remote persister.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

// Consumer delivers ledger saved notifications until ctx is done.
type Consumer interface {
	ConsumeLedgerSaved(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker copies the whole ledger from source to target. A copy is
// skipped when the source content equals what was last written.
type MirrorWorker struct {
	source ledger.Persister
	target ledger.Persister
	logger *slog.Logger

	mu       sync.Mutex
	lastSent string
	synced   bool
}

func NewMirrorWorker(source, target ledger.Persister, logger *slog.Logger) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{
		source: source,
		target: target,
		logger: logger.With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// Sync reloads the source and writes it to the target when it changed.
// It reports whether a write happened.
func (w *MirrorWorker) Sync(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	txs, err := w.source.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load source: %w", err)
	}

	fp := fingerprint(txs)
	if w.synced && fp == w.lastSent {
		w.logger.DebugContext(ctx, "Ledger unchanged, skipping mirror",
			applog.FieldOperation, applog.OpSync,
			applog.FieldRecords, len(txs))
		return false, nil
	}

	if err := w.target.Save(ctx, txs); err != nil {
		return false, fmt.Errorf("save target: %w", err)
	}
	w.lastSent = fp
	w.synced = true

	w.logger.InfoContext(ctx, "Ledger mirrored",
		applog.FieldOperation, applog.OpSync,
		applog.FieldRecords, len(txs))
	return true, nil
}

// HandleLedgerSaved is the amqp.Handler for the mirror queue.
func (w *MirrorWorker) HandleLedgerSaved(ctx context.Context, msg *amqp.LedgerSavedMessage) error {
	w.logger.InfoContext(ctx, "Processing ledger saved message",
		applog.FieldRevision, msg.Revision,
		applog.FieldRecords, msg.Records)
	_, err := w.Sync(ctx)
	return err
}

// Run performs a startup sync, then mirrors on every notification from
// consumer and every interval tick. A nil consumer leaves only the ticker.
// Periodic failures are logged and retried on the next tick.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	if _, err := w.Sync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeLedgerSaved(gctx, w.HandleLedgerSaved)
		})
	}

	if interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
					if _, err := w.Sync(gctx); err != nil {
						w.logger.ErrorContext(gctx, "Periodic sync failed", applog.FieldError, err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func fingerprint(txs []core.Transaction) string {
	var b strings.Builder
	for _, t := range txs {
		b.WriteString(strings.Join(t.Record(), "\x1f"))
		b.WriteByte('\n')
	}
	return b.String()
}
