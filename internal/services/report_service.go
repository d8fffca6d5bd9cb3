package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// ErrNoData means the current month has no records; there is nothing to draw.
var ErrNoData = errors.New("no data for current month")

// Renderer draws a summary and returns where the output went.
type Renderer interface {
	Render(ctx context.Context, s core.MonthlySummary) (string, error)
}

// Snapshotter is the part of ledger.Store the reports read.
type Snapshotter interface {
	Snapshot() (expenses, incomes []core.Transaction, revision int64)
}

// Entries for superseded revisions are never read again; the TTL lets a
// cache.Manager drop them.
const summaryTTL = 30 * time.Minute

type summaryEntry struct {
	summary core.MonthlySummary
	ok      bool
}

type ReportService struct {
	store    Snapshotter
	renderer Renderer
	cache    *cache.LRUCache[summaryEntry]
	now      func() time.Time
}

type ReportOption func(*ReportService)

// WithClock overrides time.Now for the current month.
func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

// WithCacheSize bounds the number of cached summaries.
func WithCacheSize(n int) ReportOption {
	return func(s *ReportService) { s.cache = cache.NewLRUCache[summaryEntry](n, summaryTTL) }
}

func NewReportService(store Snapshotter, renderer Renderer, opts ...ReportOption) *ReportService {
	s := &ReportService{
		store:    store,
		renderer: renderer,
		cache:    cache.NewLRUCache[summaryEntry](16, summaryTTL),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache exposes the summary cache for registration with a cache.Manager.
func (s *ReportService) Cache() cache.Cleaner {
	return s.cache
}

// CacheStats reports summary cache usage.
func (s *ReportService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Month is the current year-month in YYYY-MM form.
func (s *ReportService) Month() string {
	return s.now().Format(core.MonthLayout)
}

// MonthlySummary summarizes the current month. Results are cached per
// month and store revision, so any mutation invalidates them.
func (s *ReportService) MonthlySummary(ctx context.Context) (core.MonthlySummary, bool) {
	today := s.now()
	expenses, incomes, rev := s.store.Snapshot()
	key := fmt.Sprintf("%s@%d", today.Format(core.MonthLayout), rev)

	if e, ok := s.cache.Get(key); ok {
		return e.summary, e.ok
	}

	summary, ok := core.Summarize(expenses, incomes, today)
	s.cache.Set(key, summaryEntry{summary: summary, ok: ok})

	slog.DebugContext(ctx, "Monthly summary computed",
		applog.FieldComponent, applog.ComponentReport,
		applog.FieldOperation, applog.OpSummary,
		applog.FieldMonth, summary.Month,
		applog.FieldRevision, rev,
		"categories", len(summary.Categories))
	return summary, ok
}

// RenderMonthlyChart draws the current month. It returns ErrNoData, and
// renders nothing, when the month is empty.
func (s *ReportService) RenderMonthlyChart(ctx context.Context) (string, core.MonthlySummary, error) {
	summary, ok := s.MonthlySummary(ctx)
	if !ok {
		slog.InfoContext(ctx, "No data to chart",
			applog.FieldComponent, applog.ComponentReport,
			applog.FieldMonth, summary.Month)
		return "", summary, ErrNoData
	}
	path, err := s.renderer.Render(ctx, summary)
	if err != nil {
		return "", summary, fmt.Errorf("render chart: %w", err)
	}
	return path, summary, nil
}
