package usecase

import (
	"context"
	"strings"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

// CatalogUsecase обрабатывает запись позиций котировок: upsert поставщика и
// продукта в одной транзакции и синхронный триггер индексации после коммита.
type CatalogUsecase struct {
	productRepo  ProductRepository
	supplierRepo SupplierRepository
	dbPool       transaction.Transactional
	indexer      IndexUC
	reindexRepo  ReindexRepository
	cacheRepo    CacheRepository
	logger       logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	supplierRepo SupplierRepository,
	dbPool transaction.Transactional,
	indexer IndexUC,
	reindexRepo ReindexRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		dbPool:       dbPool,
		indexer:      indexer,
		reindexRepo:  reindexRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
	}
}

// RegisterQuotedProduct идемпотентно записывает котировку поставщика.
// Индексация запускается сразу после коммита; ее отказ не проваливает запрос,
// продукт ставится в очередь переиндексации и будет догнан воркером.
func (c *CatalogUsecase) RegisterQuotedProduct(ctx context.Context, req *RegisterQuotedProductReq) (*RegisterQuotedProductRes, error) {
	const op = "CatalogUsecase.RegisterQuotedProduct"

	var err error
	if err = c.validateRequest(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, c.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	supplier, err := c.supplierRepo.Upsert(ctx, domain.NewSupplier(req.CompanyName, req.ContactName, req.ContactPhone))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := c.productRepo.Upsert(ctx, &domain.Product{
		SupplierID:   supplier.ID,
		Brand:        req.Brand,
		ProductName:  req.ProductName,
		ProductModel: req.ProductModel,
		LastPrice:    req.LastPrice,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Инвалидация кэша поставщика: quote_count и контакты могли измениться
	if cacheErr := c.cacheRepo.DeleteSuppliers(ctx, []int64{supplier.ID}); cacheErr != nil {
		c.logger.Warnf("failed to invalidate supplier cache: %v", e.Wrap(op, cacheErr))
	}

	indexed := c.triggerIndex(ctx, product)

	return &RegisterQuotedProductRes{
		ProductID:  product.ID,
		SupplierID: supplier.ID,
		Indexed:    indexed,
	}, nil
}

// RemoveQuotedProduct удаляет позицию котировки и ее эмбеддинг.
func (c *CatalogUsecase) RemoveQuotedProduct(ctx context.Context, productID int64) error {
	const op = "CatalogUsecase.RemoveQuotedProduct"

	if err := c.productRepo.Delete(ctx, productID); err != nil {
		return e.Wrap(op, err)
	}

	if err := c.indexer.RemoveProduct(ctx, productID); err != nil {
		// Осиротевшую точку подчистит следующая полная перестройка
		c.logger.Warnf("failed to remove embedding for product %d: %v", productID, err)
	}

	return nil
}

// triggerIndex — синхронный триггер индексации после записи в каталог.
// Пропущенный триггер восстановим: через очередь повтора или IndexMissing.
func (c *CatalogUsecase) triggerIndex(ctx context.Context, product *domain.Product) bool {
	embedding, err := c.indexer.IndexProduct(ctx, product)
	if err == nil {
		return embedding != nil
	}

	c.logger.Warnf("index trigger failed for product %d, enqueueing retry: %v", product.ID, err)

	if _, enqErr := c.reindexRepo.Create(ctx, NewReindexEvent(uuid.NewString(), product.ID)); enqErr != nil {
		c.logger.Warnf("failed to enqueue reindex for product %d: %v", product.ID, enqErr)
	}

	return false
}

func (c *CatalogUsecase) validateRequest(req *RegisterQuotedProductReq) error {
	if strings.TrimSpace(req.CompanyName) == "" {
		return e.ErrSupplierRequired
	}

	if strings.TrimSpace(req.ProductName) == "" {
		return e.ErrProductNameRequired
	}

	if req.LastPrice < 0 {
		return e.ErrInvalidPrice
	}

	return nil
}
