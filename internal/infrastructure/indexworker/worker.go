// Package indexworker разгребает очередь отложенной переиндексации.
// Сюда попадают товары, для которых индексация на горячем пути не удалась;
// воркер повторяет её в фоне с экспоненциальным отступлением.
package indexworker

import (
	"context"
	"sync"
	"time"

	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/jitter"
	"github.com/smart-procure/go-backend/pkg/logger"
)

type Worker struct {
	reindexRepo usecase.ReindexRepository
	productRepo usecase.ProductRepository
	indexer     usecase.IndexUC
	cfg         *cfg.IndexerCfg
	logger      logger.Logger
	stop        chan struct{}
	wg          sync.WaitGroup
}

func NewWorker(
	reindexRepo usecase.ReindexRepository,
	productRepo usecase.ProductRepository,
	indexer usecase.IndexUC,
	cfg *cfg.IndexerCfg,
	logger logger.Logger,
) *Worker {
	return &Worker{
		reindexRepo: reindexRepo,
		productRepo: productRepo,
		indexer:     indexer,
		cfg:         cfg,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	w.logger.Infof("Draining pending reindex events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Reindex worker stopped by context cancellation")
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain обрабатывает очередь до опустошения, порциями.
func (w *Worker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("reindex batch failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.reindexRepo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize, w.cfg.StaleAfter)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.retryOrFail(ctx, event, err)
			continue
		}
		if err := w.reindexRepo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed for event %s: %v", event.EventID, err)
		}
	}

	return true, nil
}

// processEvent переиндексирует один товар. Товар, удалённый к моменту
// обработки, считается успехом: индексировать больше нечего.
func (w *Worker) processEvent(ctx context.Context, event *usecase.ReindexEvent) error {
	products, err := w.productRepo.GetByIDs(ctx, []int64{event.ProductID})
	if err != nil {
		return err
	}

	if len(products) == 0 {
		w.logger.Debugf("product %d is gone, dropping reindex event %s", event.ProductID, event.EventID)
		return nil
	}

	_, err = w.indexer.IndexProduct(ctx, &products[0])
	return err
}

// retryOrFail возвращает событие в очередь либо закрывает его после
// исчерпания попыток. Пауза перед повтором не блокирует пакет: срок следующей
// попытки сохраняется в событии, а претензия не забирает несозревшие события.
// Джиттер размазывает повторы, чтобы упавший провайдер не получал их шквалом.
func (w *Worker) retryOrFail(ctx context.Context, event *usecase.ReindexEvent, cause error) {
	if event.Attempts+1 >= w.cfg.MaxAttempts {
		w.logger.Errorf(cause, "reindex event %s exhausted %d attempts, giving up", event.EventID, w.cfg.MaxAttempts)
		if err := w.reindexRepo.MarkAsFailed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark failed failed for event %s: %v", event.EventID, err)
		}
		return
	}

	backoff := jitter.ExponentialBackoff(w.cfg.BaseBackoff, w.cfg.MaxBackoff, event.Attempts, jitter.DefaultJitter)
	w.logger.Warnf("reindex of product %d failed (attempt %d), retry in %v: %v",
		event.ProductID, event.Attempts+1, backoff, cause)

	if err := w.reindexRepo.MarkForRetry(ctx, event.ID, time.Now().Add(backoff)); err != nil {
		w.logger.Warnf("mark for retry failed for event %s: %v", event.EventID, err)
	}
}
