package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

// BudgetAction is what happens once a token limit is reached.
type BudgetAction string

const (
	// BudgetActionWarn logs and lets the call through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject refuses the call with domain.ErrEmbeddingQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

const (
	budgetKeyPrefix = "stylist:budget:"
	persistTimeout  = 2 * time.Second
)

// BudgetStore persists token counters. IncrBy must be additive.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// budgetWindow is one calendar window (UTC day or month) with its own limit.
type budgetWindow struct {
	name   string
	layout string
	trunc  func(time.Time) time.Time
	limit  int64 // 0 = unlimited
	used   int64
	start  time.Time
}

func (w *budgetWindow) roll(now time.Time) {
	if s := w.trunc(now); s.After(w.start) {
		w.used = 0
		w.start = s
	}
}

func (w *budgetWindow) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

func (w *budgetWindow) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(w.limit-w.used, 0)
}

func (w *budgetWindow) key(provider string) string {
	return budgetKeyPrefix + provider + ":" + w.name + ":" + w.start.Format(w.layout)
}

// BudgetTracker counts provider tokens against daily and monthly limits.
// Check reads memory only; Record writes through to the store when one is attached.
type BudgetTracker struct {
	mu       sync.Mutex
	provider string
	action   BudgetAction
	daily    budgetWindow
	monthly  budgetWindow
	now      func() time.Time
	store    BudgetStore
	metrics  *metrics.Embedding
	logger   *zap.Logger
}

// NewBudgetTracker creates a tracker. A zero limit disables that window.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	b := &BudgetTracker{
		provider: provider,
		action:   action,
		daily:    budgetWindow{name: "daily", layout: "2006-01-02", trunc: truncateToDay, limit: dailyLimit},
		monthly:  budgetWindow{name: "monthly", layout: "2006-01", trunc: truncateToMonth, limit: monthlyLimit},
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	b.rollLocked()
	return b
}

// WithClock replaces the time source and re-aligns both windows to it.
func (b *BudgetTracker) WithClock(now func() time.Time) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.daily.start, b.monthly.start = time.Time{}, time.Time{}
	b.rollLocked()
	return b
}

// WithMetrics counts checks made over the limit.
func (b *BudgetTracker) WithMetrics(m *metrics.Embedding) *BudgetTracker {
	b.metrics = m
	return b
}

// WithStore attaches persistence and seeds the counters of the current windows from it.
// Load failures are logged and leave the counters at zero.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	b.rollLocked()
	for _, w := range []*budgetWindow{&b.daily, &b.monthly} {
		val, err := store.Get(ctx, w.key(b.provider))
		if err != nil {
			b.logger.Warn("Failed to load token budget",
				zap.String("window", w.name), zap.Error(err))
			continue
		}
		w.used = val
	}

	b.logger.Info("Token budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("monthly_used", b.monthly.used),
	)
	return b
}

// Check reports whether another provider call is allowed.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()

	var hit *budgetWindow
	switch {
	case b.daily.exceeded():
		hit = &b.daily
	case b.monthly.exceeded():
		hit = &b.monthly
	default:
		return nil
	}

	b.metrics.BudgetExceeded(b.provider, string(b.action))

	if b.action == BudgetActionReject {
		return fmt.Errorf("%s limit of %d tokens reached: %w",
			hit.name, hit.limit, domain.ErrEmbeddingQuotaExceeded)
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.String("window", hit.name),
		zap.Int64("used", hit.used),
		zap.Int64("limit", hit.limit),
	)
	return nil
}

// Record adds consumed tokens to both windows.
func (b *BudgetTracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	b.mu.Lock()
	b.rollLocked()
	b.daily.used += tokens
	b.monthly.used += tokens
	store := b.store
	keys := [2]string{b.daily.key(b.provider), b.monthly.key(b.provider)}
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the caller so a cancelled request still gets billed.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	for _, key := range keys {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("Failed to persist token budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today, -1 when unlimited.
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.daily.remaining()
}

// RemainingMonthly returns tokens left this month, -1 when unlimited.
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.monthly.remaining()
}

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.daily.used
}

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollLocked()
	return b.monthly.used
}

func (b *BudgetTracker) rollLocked() {
	now := b.now()
	b.daily.roll(now)
	b.monthly.roll(now)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BudgetEmbedder checks the budget before each provider call and records
// the tokens it reports. Cache hits report zero tokens.
type BudgetEmbedder struct {
	inner   domain.Embedder
	tracker *BudgetTracker
}

// NewBudgetEmbedder wraps inner with a token budget.
func NewBudgetEmbedder(inner domain.Embedder, tracker *BudgetTracker) *BudgetEmbedder {
	return &BudgetEmbedder{inner: inner, tracker: tracker}
}

// Embed implements domain.Embedder.
func (e *BudgetEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := e.tracker.Check(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	e.tracker.Record(int64(res.TotalTokens))
	return res, nil
}

// BatchEmbed implements domain.BatchEmbedder. One check covers the whole batch.
func (e *BudgetEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if err := e.tracker.Check(ctx); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	res, err := domain.EmbedBatch(ctx, e.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	e.tracker.Record(int64(res.TotalTokens))
	return res, nil
}
