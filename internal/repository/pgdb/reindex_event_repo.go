package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/smart-procure/go-backend/internal/repository/pgdb/converter"
	"github.com/smart-procure/go-backend/internal/usecase"
)

// ReindexEventRepo — очередь отложенной переиндексации поверх PostgreSQL.
type ReindexEventRepo struct {
	pool *pgxpool.Pool
	conv converter.ReindexEventConverter
}

func NewReindexEventRepo(pool *pgxpool.Pool, conv converter.ReindexEventConverter) *ReindexEventRepo {
	return &ReindexEventRepo{
		pool: pool,
		conv: conv,
	}
}

// Create ставит продукт в очередь переиндексации. Повторная постановка того же
// продукта в ожидании схлопывается в одну запись.
func (o *ReindexEventRepo) Create(ctx context.Context, event *usecase.ReindexEvent) (*usecase.ReindexEvent, error) {
	model := o.conv.ToModel(event)
	query := `
		INSERT INTO index_outbox (event_id, product_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id) WHERE status = 'pending'
		DO UPDATE SET created_at = NOW()
		RETURNING id, event_id, product_id, status, attempts, next_retry_at, created_at, processing_started_at, processed_at;
	`

	if err := o.pool.QueryRow(ctx, query,
		model.EventID,
		model.ProductID,
		model.Status,
	).Scan(
		&model.ID, &model.EventID, &model.ProductID, &model.Status,
		&model.Attempts, &model.NextRetryAt, &model.CreatedAt, &model.ProcessingStartedAt, &model.ProcessedAt,
	); err != nil {
		return nil, fmt.Errorf("%s: failed to insert reindex event: %w", whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing забирает порцию созревших ожидающих событий, помечая
// их как обрабатываемые. События, зависшие в processing дольше staleAfter,
// возвращаются в работу той же претензией. FOR UPDATE SKIP LOCKED позволяет
// нескольким воркерам работать без пересечений.
func (o *ReindexEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]*usecase.ReindexEvent, error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", whereami.WhereAmI(), err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	query := `
		UPDATE index_outbox
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM index_outbox
			WHERE (status = $2 AND next_retry_at <= NOW())
			   OR (status = $1 AND processing_started_at < NOW() - make_interval(secs => $4))
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, event_id, product_id, status, attempts, next_retry_at, created_at, processing_started_at, processed_at
	`

	rows, err := tx.Query(ctx, query, usecase.ReindexProcessing, usecase.ReindexPending, limit, staleAfter.Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending events: %w", whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.ReindexEventModel
	for rows.Next() {
		var model converter.ReindexEventModel
		if err := rows.Scan(
			&model.ID, &model.EventID, &model.ProductID, &model.Status,
			&model.Attempts, &model.NextRetryAt, &model.CreatedAt, &model.ProcessingStartedAt, &model.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: failed to scan event: %w", whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iterator error: %w", whereami.WhereAmI(), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}

// MarkAsProcessed закрывает успешно обработанное событие.
func (o *ReindexEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE index_outbox
		SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, usecase.ReindexProcessed, id, usecase.ReindexProcessing); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// MarkForRetry возвращает событие в ожидание с увеличенным счетчиком попыток.
// Повторная претензия не заберет событие раньше nextRetryAt.
func (o *ReindexEventRepo) MarkForRetry(ctx context.Context, id int64, nextRetryAt time.Time) error {
	query := `
		UPDATE index_outbox
		SET status = $1, attempts = attempts + 1, next_retry_at = $4, processing_started_at = NULL
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, usecase.ReindexPending, id, usecase.ReindexProcessing, nextRetryAt); err != nil {
		return fmt.Errorf("%s: failed to mark event %d for retry: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

// MarkAsFailed окончательно закрывает событие после исчерпания попыток.
func (o *ReindexEventRepo) MarkAsFailed(ctx context.Context, id int64) error {
	query := `
		UPDATE index_outbox
		SET status = $1, processed_at = NOW()
		WHERE id = $2
	`

	if _, err := o.pool.Exec(ctx, query, usecase.ReindexFailed, id); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as failed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}
