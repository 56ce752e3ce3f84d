package indexworker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/logger"
)

type fakeReindexRepo struct {
	events     []*usecase.ReindexEvent
	staleAfter time.Duration
}

func (f *fakeReindexRepo) Create(_ context.Context, event *usecase.ReindexEvent) (*usecase.ReindexEvent, error) {
	f.events = append(f.events, event)
	return event, nil
}

// GetAndMarkAsProcessing забирает все ожидающие события независимо от срока
// следующей попытки: вызов в тесте играет роль тика опроса после паузы.
func (f *fakeReindexRepo) GetAndMarkAsProcessing(_ context.Context, limit int, staleAfter time.Duration) ([]*usecase.ReindexEvent, error) {
	f.staleAfter = staleAfter
	var out []*usecase.ReindexEvent
	for _, event := range f.events {
		if event.Status != usecase.ReindexPending {
			continue
		}
		event.Status = usecase.ReindexProcessing
		out = append(out, event)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeReindexRepo) find(id int64) *usecase.ReindexEvent {
	for _, event := range f.events {
		if event.ID == id {
			return event
		}
	}
	return nil
}

func (f *fakeReindexRepo) MarkAsProcessed(_ context.Context, id int64) error {
	f.find(id).Status = usecase.ReindexProcessed
	return nil
}

func (f *fakeReindexRepo) MarkForRetry(_ context.Context, id int64, nextRetryAt time.Time) error {
	event := f.find(id)
	event.Status = usecase.ReindexPending
	event.Attempts++
	event.NextRetryAt = nextRetryAt
	return nil
}

func (f *fakeReindexRepo) MarkAsFailed(_ context.Context, id int64) error {
	f.find(id).Status = usecase.ReindexFailed
	return nil
}

type fakeProductRepo struct {
	products map[int64]domain.Product
}

func (f *fakeProductRepo) Upsert(_ context.Context, product *domain.Product) (*domain.Product, error) {
	return product, nil
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) List(_ context.Context, _, _ int) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) ListIDs(_ context.Context) ([]int64, error) { return nil, nil }

func (f *fakeProductRepo) Count(_ context.Context) (int64, error) { return 0, nil }

func (f *fakeProductRepo) Delete(_ context.Context, _ int64) error { return nil }

type fakeIndexer struct {
	err          error
	failProducts map[int64]error
	indexed      []int64
}

func (f *fakeIndexer) IndexProduct(_ context.Context, product *domain.Product) (*domain.Embedding, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.failProducts[product.ID]; ok {
		return nil, err
	}
	f.indexed = append(f.indexed, product.ID)
	return &domain.Embedding{ProductID: product.ID}, nil
}

func (f *fakeIndexer) RemoveProduct(_ context.Context, _ int64) error { return nil }

func (f *fakeIndexer) RebuildAll(_ context.Context, _ int) (*usecase.RebuildStats, error) {
	return nil, nil
}

func (f *fakeIndexer) IndexMissing(_ context.Context) (*usecase.MissingStats, error) {
	return nil, nil
}

func (f *fakeIndexer) IndexStats(_ context.Context) (*usecase.IndexStatsRes, error) {
	return nil, nil
}

func testWorkerCfg() *cfg.IndexerCfg {
	return &cfg.IndexerCfg{
		PollInterval: time.Hour,
		BatchSize:    10,
		MaxAttempts:  3,
		BaseBackoff:  time.Millisecond,
		MaxBackoff:   2 * time.Millisecond,
		StaleAfter:   10 * time.Minute,
	}
}

func testWorker(repo *fakeReindexRepo, products *fakeProductRepo, indexer *fakeIndexer) *Worker {
	return NewWorker(repo, products, indexer, testWorkerCfg(), logger.NewSlogLogger())
}

func pendingEvent(id, productID int64, attempts int) *usecase.ReindexEvent {
	return &usecase.ReindexEvent{
		ID:        id,
		EventID:   "evt",
		ProductID: productID,
		Status:    usecase.ReindexPending,
		Attempts:  attempts,
		CreatedAt: time.Now(),
	}
}

func TestProcessBatchSuccess(t *testing.T) {
	repo := &fakeReindexRepo{events: []*usecase.ReindexEvent{pendingEvent(1, 42, 0)}}
	products := &fakeProductRepo{products: map[int64]domain.Product{
		42: {ID: 42, ProductName: "cylinder"},
	}}
	indexer := &fakeIndexer{}

	w := testWorker(repo, products, indexer)

	hasMore, err := w.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !hasMore {
		t.Fatal("hasMore = false, want true after non-empty batch")
	}
	if len(indexer.indexed) != 1 || indexer.indexed[0] != 42 {
		t.Fatalf("indexed = %v, want [42]", indexer.indexed)
	}
	if got := repo.events[0].Status; got != usecase.ReindexProcessed {
		t.Fatalf("status = %q, want processed", got)
	}
	if repo.staleAfter != 10*time.Minute {
		t.Fatalf("staleAfter = %v, want 10m passed to claim", repo.staleAfter)
	}
}

func TestRetryScheduleDoesNotBlockBatch(t *testing.T) {
	repo := &fakeReindexRepo{events: []*usecase.ReindexEvent{
		pendingEvent(1, 41, 0),
		pendingEvent(2, 42, 0),
	}}
	products := &fakeProductRepo{products: map[int64]domain.Product{
		41: {ID: 41, ProductName: "valve"},
		42: {ID: 42, ProductName: "cylinder"},
	}}
	indexer := &fakeIndexer{failProducts: map[int64]error{41: errors.New("provider down")}}

	conf := testWorkerCfg()
	conf.BaseBackoff = time.Hour
	conf.MaxBackoff = 2 * time.Hour
	w := NewWorker(repo, products, indexer, conf, logger.NewSlogLogger())

	start := time.Now()
	if _, err := w.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("processBatch took %v, must not sleep out the backoff inline", elapsed)
	}

	// Неудачное событие получило срок повтора не раньше базовой паузы,
	// соседнее по пакету обработано сразу.
	failed := repo.events[0]
	if failed.Status != usecase.ReindexPending {
		t.Fatalf("status = %q, want pending", failed.Status)
	}
	if failed.NextRetryAt.Before(start.Add(time.Hour)) {
		t.Errorf("NextRetryAt = %v, want at least %v", failed.NextRetryAt, start.Add(time.Hour))
	}
	if len(indexer.indexed) != 1 || indexer.indexed[0] != 42 {
		t.Fatalf("indexed = %v, want [42]", indexer.indexed)
	}
	if repo.events[1].Status != usecase.ReindexProcessed {
		t.Fatalf("status = %q, want processed for healthy event", repo.events[1].Status)
	}
}

func TestProcessBatchRetriesThenFails(t *testing.T) {
	repo := &fakeReindexRepo{events: []*usecase.ReindexEvent{pendingEvent(1, 42, 0)}}
	products := &fakeProductRepo{products: map[int64]domain.Product{
		42: {ID: 42, ProductName: "cylinder"},
	}}
	indexer := &fakeIndexer{err: errors.New("provider down")}

	w := testWorker(repo, products, indexer)

	// Первые две неудачи возвращают событие в очередь.
	for attempt := 1; attempt <= 2; attempt++ {
		if _, err := w.processBatch(context.Background()); err != nil {
			t.Fatalf("processBatch: %v", err)
		}
		if got := repo.events[0].Status; got != usecase.ReindexPending {
			t.Fatalf("status after attempt %d = %q, want pending", attempt, got)
		}
		if got := repo.events[0].Attempts; got != attempt {
			t.Fatalf("attempts = %d, want %d", got, attempt)
		}
	}

	// Третья неудача исчерпывает лимит попыток.
	if _, err := w.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if got := repo.events[0].Status; got != usecase.ReindexFailed {
		t.Fatalf("status = %q, want failed", got)
	}
}

func TestProcessBatchDropsDeletedProduct(t *testing.T) {
	repo := &fakeReindexRepo{events: []*usecase.ReindexEvent{pendingEvent(1, 99, 0)}}
	products := &fakeProductRepo{products: map[int64]domain.Product{}}
	indexer := &fakeIndexer{}

	w := testWorker(repo, products, indexer)

	if _, err := w.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if len(indexer.indexed) != 0 {
		t.Fatalf("indexed = %v, want none", indexer.indexed)
	}
	if got := repo.events[0].Status; got != usecase.ReindexProcessed {
		t.Fatalf("status = %q, want processed for gone product", got)
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &fakeReindexRepo{}
	w := testWorker(repo, &fakeProductRepo{}, &fakeIndexer{})

	hasMore, err := w.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if hasMore {
		t.Fatal("hasMore = true for empty queue")
	}
}
