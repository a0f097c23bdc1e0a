package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())

	bt.Record(100)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected domain.ErrEmbeddingQuotaExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	m, err := metrics.NewEmbedding(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	bt := NewBudgetTracker("test", 100, 0, BudgetActionWarn, zap.NewNop()).WithMetrics(m)

	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
	if got := testutil.ToFloat64(m.Budget.WithLabelValues("test", "warn")); got != 1 {
		t.Errorf("budget warn metric = %v, want 1", got)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 500, BudgetActionReject, zap.NewNop())

	bt.Record(500)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected domain.ErrEmbeddingQuotaExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_UnlimitedWhenZero(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 0, BudgetActionReject, zap.NewNop())

	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Errorf("expected -1 remaining, got %d/%d", bt.RemainingDaily(), bt.RemainingMonthly())
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("test", 1000, 10000, BudgetActionWarn, zap.NewNop())

	bt.Record(300)

	if got := bt.RemainingDaily(); got != 700 {
		t.Errorf("expected daily remaining 700, got %d", got)
	}
	if got := bt.RemainingMonthly(); got != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", got)
	}

	bt.Record(5000)
	if got := bt.RemainingDaily(); got != 0 {
		t.Errorf("expected daily remaining clamped to 0, got %d", got)
	}
}

func TestBudgetTracker_BelowLimitAllows(t *testing.T) {
	bt := NewBudgetTracker("test", 1000, 10000, BudgetActionReject, zap.NewNop())

	bt.Record(500)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error when below limit, got %v", err)
	}
}

func TestBudgetTracker_DayRolloverResetsDaily(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	clock := now
	bt := NewBudgetTracker("test", 100, 1000, BudgetActionReject, zap.NewNop()).
		WithClock(func() time.Time { return clock })

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	clock = now.Add(2 * time.Hour)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected daily reset after midnight, got %v", err)
	}
	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 100 {
		t.Errorf("daily/monthly = %d/%d, want 0/100", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_MonthRolloverResetsMonthly(t *testing.T) {
	now := time.Date(2026, 10, 31, 23, 0, 0, 0, time.UTC)
	clock := now
	bt := NewBudgetTracker("test", 0, 100, BudgetActionReject, zap.NewNop()).
		WithClock(func() time.Time { return clock })

	bt.Record(100)
	clock = now.Add(2 * time.Hour)

	if bt.MonthlyUsed() != 0 {
		t.Errorf("expected monthly reset, got %d", bt.MonthlyUsed())
	}
}

// --- Mock BudgetStore ---

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func (m *mockBudgetStore) get(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// --- Persistence tests ---

const (
	testDailyKey   = "stylist:budget:prov:daily:2026-10-19"
	testMonthlyKey = "stylist:budget:prov:monthly:2026-10"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()
	store.data[testDailyKey] = 300
	store.data[testMonthlyKey] = 5000

	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionReject, zap.NewNop()).
		WithClock(fixedClock(testNow)).
		WithStore(context.Background(), store)

	if bt.DailyUsed() != 300 {
		t.Errorf("expected daily_used=300, got %d", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 5000 {
		t.Errorf("expected monthly_used=5000, got %d", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionWarn, zap.NewNop()).
		WithClock(fixedClock(testNow)).
		WithStore(context.Background(), store)

	bt.Record(100)
	bt.Record(200)
	bt.Record(300)

	if bt.DailyUsed() != 600 {
		t.Errorf("expected daily_used=600, got %d", bt.DailyUsed())
	}
	if got := store.get(testDailyKey); got != 600 {
		t.Errorf("expected store daily=600, got %d", got)
	}
	if got := store.get(testMonthlyKey); got != 600 {
		t.Errorf("expected store monthly=600, got %d", got)
	}
}

func TestBudgetTracker_Record_IgnoresNonPositive(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 1000, 0, BudgetActionWarn, zap.NewNop()).
		WithClock(fixedClock(testNow)).
		WithStore(context.Background(), store)

	bt.Record(0)
	bt.Record(-5)

	if bt.DailyUsed() != 0 {
		t.Errorf("expected daily_used=0, got %d", bt.DailyUsed())
	}
	if len(store.data) != 0 {
		t.Errorf("expected no store writes, got %v", store.data)
	}
}

func TestBudgetTracker_WithStore_LoadError(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionReject, zap.NewNop())
	bt.WithStore(context.Background(), store)

	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected zero counters on load error, got %d/%d", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_StoreWriteError(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(50)

	if bt.DailyUsed() != 50 {
		t.Errorf("expected daily_used=50 even with store error, got %d", bt.DailyUsed())
	}
}

func TestBudgetTracker_ConcurrentRecord(t *testing.T) {
	bt := NewBudgetTracker("prov", 0, 0, BudgetActionWarn, zap.NewNop())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				bt.Record(1)
				_ = bt.Check(context.Background())
			}
		}()
	}
	wg.Wait()

	if bt.DailyUsed() != 1600 {
		t.Errorf("expected 1600 tokens, got %d", bt.DailyUsed())
	}
}

// --- BudgetEmbedder ---

func TestBudgetEmbedder_RecordsTokens(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 7}}
	bt := NewBudgetTracker("prov", 1000, 0, BudgetActionReject, zap.NewNop())
	e := NewBudgetEmbedder(inner, bt)

	if _, err := e.Embed(context.Background(), "linen"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.BatchEmbed(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bt.DailyUsed() != 21 {
		t.Errorf("expected 21 tokens recorded, got %d", bt.DailyUsed())
	}
}

func TestBudgetEmbedder_RejectSkipsProvider(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 7}}
	bt := NewBudgetTracker("prov", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)
	e := NewBudgetEmbedder(inner, bt)

	if _, err := e.Embed(context.Background(), "linen"); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if _, err := e.BatchEmbed(context.Background(), []string{"a"}); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if inner.batchCalls != 0 {
		t.Errorf("expected no provider calls, got %d", inner.batchCalls)
	}
}

func TestBudgetEmbedder_InnerErrorRecordsNothing(t *testing.T) {
	boom := errors.New("boom")
	inner := &mockEmbedder{err: boom, batchErr: boom}
	bt := NewBudgetTracker("prov", 10, 0, BudgetActionReject, zap.NewNop())
	e := NewBudgetEmbedder(inner, bt)

	if _, err := e.Embed(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected inner error, got %v", err)
	}
	if _, err := e.BatchEmbed(context.Background(), []string{"x"}); !errors.Is(err, boom) {
		t.Fatalf("expected inner error, got %v", err)
	}
	if bt.DailyUsed() != 0 {
		t.Errorf("expected nothing recorded, got %d", bt.DailyUsed())
	}
}

func TestBudgetEmbedder_EmptyBatch(t *testing.T) {
	inner := &mockEmbedder{}
	e := NewBudgetEmbedder(inner, NewBudgetTracker("prov", 1, 0, BudgetActionReject, zap.NewNop()))

	res, err := e.BatchEmbed(context.Background(), nil)
	if err != nil || len(res.Embeddings) != 0 || inner.batchCalls != 0 {
		t.Errorf("expected empty no-op batch, got %+v, %v, calls=%d", res, err, inner.batchCalls)
	}
}
