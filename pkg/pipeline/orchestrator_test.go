package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hindinews/pkg/db"
	"hindinews/pkg/domain"
	"hindinews/pkg/sources"
)

// mockFetcher serves fixed candidates per source key
type mockFetcher struct {
	items map[string][]domain.Candidate
	calls atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, src sources.Source) []domain.Candidate {
	m.calls.Add(1)
	return m.items[src.Key]
}

// mockProcessor records processed candidates; block, when set, holds every item
type mockProcessor struct {
	mu        sync.Mutex
	processed []domain.Candidate
	block     chan struct{}
	started   chan struct{}
}

func (m *mockProcessor) Process(ctx context.Context, c domain.Candidate) (Outcome, error) {
	if m.started != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, c)
	return OutcomeInserted, nil
}

func (m *mockProcessor) urls() map[string]domain.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Candidate, len(m.processed))
	for _, c := range m.processed {
		out[c.URL] = c
	}
	return out
}

func item(url, source string, priority int) domain.Candidate {
	return domain.Candidate{Title: url, URL: url, Source: source, Priority: priority, PublishedAt: time.Now()}
}

func testRegistry() *sources.Registry {
	return sources.NewRegistry(
		sources.Source{Key: "national", Priority: 5},
		sources.Source{Key: "regional", Priority: 1},
	)
}

func TestOrchestrator_HigherPrioritySourceWinsDedup(t *testing.T) {
	fetcher := &mockFetcher{items: map[string][]domain.Candidate{
		"national": {item("https://example.com/shared", "national", 5), item("https://example.com/n", "national", 5)},
		"regional": {item("https://example.com/shared", "regional", 1)},
	}}
	processor := &mockProcessor{}
	o := NewOrchestrator(Config{}, testRegistry(), fetcher, processor, db.NewMemoryStore(), quietLogger())

	report, ok := o.TryRun(context.Background())
	require.True(t, ok)

	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Unique)
	assert.Equal(t, 2, report.Inserted)

	processed := processor.urls()
	require.Len(t, processed, 2)
	assert.Equal(t, "regional", processed["https://example.com/shared"].Source)
}

func TestOrchestrator_CapsItemsPerCycle(t *testing.T) {
	var items []domain.Candidate
	for i := 0; i < 20; i++ {
		items = append(items, item(fmt.Sprintf("https://example.com/%d", i), "regional", 1))
	}
	fetcher := &mockFetcher{items: map[string][]domain.Candidate{"regional": items}}
	processor := &mockProcessor{}
	o := NewOrchestrator(Config{Concurrency: 3}, testRegistry(), fetcher, processor, db.NewMemoryStore(), quietLogger())

	report, ok := o.TryRun(context.Background())
	require.True(t, ok)

	assert.Equal(t, 20, report.Unique)
	assert.Equal(t, DefaultMaxItems, report.Queued)
	assert.Len(t, processor.urls(), DefaultMaxItems)
	// the first items in priority order are the ones processed
	assert.Contains(t, processor.urls(), "https://example.com/0")
	assert.NotContains(t, processor.urls(), "https://example.com/19")
}

func TestOrchestrator_RetentionSweep(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := db.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, domain.ArticleRecord{SourceURL: "https://example.com/old", Slug: "old", CreatedAt: now.Add(-72 * time.Hour)}))
	require.NoError(t, store.Insert(ctx, domain.ArticleRecord{SourceURL: "https://example.com/new", Slug: "new", CreatedAt: now.Add(-24 * time.Hour)}))

	o := NewOrchestrator(Config{Retention: 48 * time.Hour}, testRegistry(), &mockFetcher{}, &mockProcessor{}, store, quietLogger(),
		WithClock(func() time.Time { return now }))

	report, ok := o.TryRun(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(1), report.Deleted)

	_, ok = store.Get("https://example.com/old")
	assert.False(t, ok)
	_, ok = store.Get("https://example.com/new")
	assert.True(t, ok)
}

func TestOrchestrator_RejectsReentry(t *testing.T) {
	fetcher := &mockFetcher{items: map[string][]domain.Candidate{
		"regional": {item("https://example.com/a", "regional", 1)},
	}}
	processor := &mockProcessor{block: make(chan struct{}), started: make(chan struct{}, 1)}
	o := NewOrchestrator(Config{}, testRegistry(), fetcher, processor, db.NewMemoryStore(), quietLogger())

	require.NoError(t, o.Trigger(context.Background()))
	<-processor.started
	assert.Equal(t, StateRunning, o.State())
	callsBefore := fetcher.calls.Load()

	_, ok := o.TryRun(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, o.Trigger(context.Background()), ErrCycleRunning)
	assert.Equal(t, callsBefore, fetcher.calls.Load())

	close(processor.block)
	assert.Eventually(t, func() bool { return o.State() == StateIdle }, time.Second, 5*time.Millisecond)

	report, ok := o.LastReport()
	require.True(t, ok)
	assert.Equal(t, 1, report.Inserted)
}

// stateRecordingStore records the orchestrator state seen during the sweep
type stateRecordingStore struct {
	*db.MemoryStore
	o          *Orchestrator
	seen       State
	reentryErr error
}

func (s *stateRecordingStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.seen = s.o.State()
	s.reentryErr = s.o.Trigger(ctx)
	return s.MemoryStore.DeleteOlderThan(ctx, cutoff)
}

func TestOrchestrator_CleaningUpDuringSweep(t *testing.T) {
	store := &stateRecordingStore{MemoryStore: db.NewMemoryStore()}
	fetcher := &mockFetcher{items: map[string][]domain.Candidate{"regional": {item("https://example.com/a", "regional", 1)}}}
	o := NewOrchestrator(Config{}, testRegistry(), fetcher, &mockProcessor{}, store, quietLogger())
	store.o = o

	_, ok := o.TryRun(context.Background())
	require.True(t, ok)

	assert.Equal(t, StateCleaningUp, store.seen)
	assert.Equal(t, "cleaning_up", store.seen.String())
	assert.ErrorIs(t, store.reentryErr, ErrCycleRunning, "a trigger during the sweep is rejected")
	assert.Equal(t, StateIdle, o.State())
}

func TestOrchestrator_LastReportBeforeFirstCycle(t *testing.T) {
	o := NewOrchestrator(Config{}, testRegistry(), &mockFetcher{}, &mockProcessor{}, db.NewMemoryStore(), quietLogger())
	_, ok := o.LastReport()
	assert.False(t, ok)
	assert.Equal(t, "idle", o.State().String())
}

func TestOrchestrator_Loop(t *testing.T) {
	fetcher := &mockFetcher{}
	o := NewOrchestrator(Config{}, testRegistry(), fetcher, &mockProcessor{}, db.NewMemoryStore(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Loop(ctx, time.Millisecond, 10*time.Millisecond)
		close(done)
	}()

	// two sources per cycle, so at least two cycles
	assert.Eventually(t, func() bool { return fetcher.calls.Load() >= 4 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
