package usecase

import (
	"context"
	"time"

	"github.com/smart-procure/go-backend/internal/domain"
)

type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	ListIDs(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type SupplierRepository interface {
	Upsert(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Supplier, error)
}

// EmbeddingRepository — контракт векторного хранилища (Qdrant).
// Запись точки атомарна, при конкурентных upsert по одному продукту побеждает последняя запись.
type EmbeddingRepository interface {
	Upsert(ctx context.Context, embedding *domain.Embedding) error
	Delete(ctx context.Context, productID int64) error
	Search(ctx context.Context, req *VectorSearchReq) ([]SearchCandidate, error)
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]struct{}, error)
	Count(ctx context.Context) (uint64, error)
}

type CacheRepository interface {
	GetSuppliers(ctx context.Context, ids []int64) (map[int64]SupplierInfo, error)
	SetSuppliers(ctx context.Context, suppliers []SupplierInfo) error
	DeleteSuppliers(ctx context.Context, ids []int64) error
}

// ReindexRepository — очередь отложенной переиндексации (index_outbox).
// Претензия забирает созревшие pending-события и возвращает в работу события,
// зависшие в processing дольше staleAfter (упавший воркер).
type ReindexRepository interface {
	Create(ctx context.Context, event *ReindexEvent) (*ReindexEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]*ReindexEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkForRetry(ctx context.Context, id int64, nextRetryAt time.Time) error
	MarkAsFailed(ctx context.Context, id int64) error
}
