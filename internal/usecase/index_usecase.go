package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

// IndexUsecase держит векторный индекс согласованным с каталогом продуктов:
// точечный upsert, полная перестройка и инкрементальная дозаливка.
type IndexUsecase struct {
	productRepo   ProductRepository
	embeddingRepo EmbeddingRepository
	provider      EmbeddingProvider
	producer      EventProducer
	cfg           *cfg.EmbeddingCfg
	collection    string
	logger        logger.Logger
}

func NewIndexUC(
	productRepo ProductRepository,
	embeddingRepo EmbeddingRepository,
	provider EmbeddingProvider,
	producer EventProducer,
	cfg *cfg.EmbeddingCfg,
	collection string,
	logger logger.Logger,
) *IndexUsecase {
	return &IndexUsecase{
		productRepo:   productRepo,
		embeddingRepo: embeddingRepo,
		provider:      provider,
		producer:      producer,
		cfg:           cfg,
		collection:    collection,
		logger:        logger,
	}
}

// IndexProduct строит и сохраняет эмбеддинг продукта.
// Пустой текст — продукт неиндексируем, (nil, nil) без побочных эффектов.
// Недоступный провайдер — (nil, e.ErrEmbeddingUnavailable), прежнее состояние
// индекса не меняется; вызывающий может поставить продукт в очередь повтора.
func (i *IndexUsecase) IndexProduct(ctx context.Context, product *domain.Product) (*domain.Embedding, error) {
	const op = "IndexUsecase.IndexProduct"

	text := domain.BuildProductText(product.Brand, product.ProductName, product.ProductModel)
	if text == "" {
		i.logger.Warnf("product %d has empty embedding text, skipping index", product.ID)
		return nil, nil
	}

	vector := i.provider.GetEmbedding(ctx, text)
	if vector == nil {
		i.logger.Warnf("embedding unavailable for product %d", product.ID)
		return nil, e.Wrap(op, e.ErrEmbeddingUnavailable)
	}

	embedding := domain.NewEmbedding(product.ID, vector, domain.NewPayload(product, text))
	if err := i.embeddingRepo.Upsert(ctx, embedding); err != nil {
		return nil, e.Wrap(op, err)
	}

	i.publishEvent(ctx, EventEmbeddingUpserted, product.ID, product.SupplierID)

	return embedding, nil
}

// RemoveProduct удаляет эмбеддинг продукта. Явный хук каскадного удаления:
// ядро не полагается на каскады векторного хранилища.
func (i *IndexUsecase) RemoveProduct(ctx context.Context, productID int64) error {
	const op = "IndexUsecase.RemoveProduct"

	if err := i.embeddingRepo.Delete(ctx, productID); err != nil {
		return e.Wrap(op, err)
	}

	i.publishEvent(ctx, EventEmbeddingRemoved, productID, 0)

	return nil
}

// RebuildAll постранично перестраивает индекс по всему каталогу.
// Отказ одного элемента увеличивает Failed и не останавливает ни страницу,
// ни прогон целиком. Инвариант: Total == Success + Failed, Total равен размеру
// каталога при любом batchSize.
func (i *IndexUsecase) RebuildAll(ctx context.Context, batchSize int) (*RebuildStats, error) {
	const op = "IndexUsecase.RebuildAll"

	if batchSize <= 0 {
		batchSize = i.cfg.BatchSize
	}

	stats := &RebuildStats{}
	offset := 0

	for {
		products, err := i.productRepo.List(ctx, batchSize, offset)
		if err != nil {
			return stats, e.Wrap(op, err)
		}
		if len(products) == 0 {
			break
		}

		texts := make([]string, len(products))
		for j, p := range products {
			texts[j] = domain.BuildProductText(p.Brand, p.ProductName, p.ProductModel)
		}

		vectors := i.provider.GetEmbeddingsBatch(ctx, texts, batchSize)

		for j := range products {
			stats.Total++

			if vectors[j] == nil {
				stats.Failed++
				continue
			}

			embedding := domain.NewEmbedding(products[j].ID, vectors[j], domain.NewPayload(&products[j], texts[j]))
			if err := i.embeddingRepo.Upsert(ctx, embedding); err != nil {
				i.logger.Warnf("failed to upsert embedding for product %d: %v", products[j].ID, err)
				stats.Failed++
				continue
			}

			i.publishEvent(ctx, EventEmbeddingUpserted, products[j].ID, products[j].SupplierID)
			stats.Success++
		}

		offset += len(products)
		i.logger.Infof("rebuild progress: %d products processed", offset)
	}

	return stats, nil
}

// IndexMissing индексирует только продукты каталога без эмбеддинга.
// Идемпотентна: повторный запуск без изменений каталога не индексирует ничего.
func (i *IndexUsecase) IndexMissing(ctx context.Context) (*MissingStats, error) {
	const op = "IndexUsecase.IndexMissing"

	ids, err := i.productRepo.ListIDs(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	existing, err := i.embeddingRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	missing := make([]int64, 0)
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}

	stats := &MissingStats{Total: len(missing)}
	if len(missing) == 0 {
		return stats, nil
	}

	products, err := i.productRepo.GetByIDs(ctx, missing)
	if err != nil {
		return stats, e.Wrap(op, err)
	}

	for j := range products {
		embedding, err := i.IndexProduct(ctx, &products[j])
		if err != nil {
			i.logger.Warnf("failed to index missing product %d: %v", products[j].ID, err)
			continue
		}
		if embedding != nil {
			stats.Indexed++
		}
	}

	return stats, nil
}

// IndexStats возвращает сводку: размер каталога против размера индекса.
func (i *IndexUsecase) IndexStats(ctx context.Context) (*IndexStatsRes, error) {
	const op = "IndexUsecase.IndexStats"

	dbCount, err := i.productRepo.Count(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	pointCount, err := i.embeddingRepo.Count(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &IndexStatsRes{
		DBProductCount:   dbCount,
		QdrantPointCount: pointCount,
		CollectionName:   i.collection,
	}, nil
}

// publishEvent отправляет событие жизненного цикла эмбеддинга.
// Отказ продюсера не влияет на результат индексации.
func (i *IndexUsecase) publishEvent(ctx context.Context, eventType EmbeddingEventType, productID, supplierID int64) {
	event := &EmbeddingEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		ProductID:  productID,
		SupplierID: supplierID,
		OccurredAt: time.Now().UTC().UnixNano(),
	}

	if err := i.producer.WriteEvent(ctx, event); err != nil {
		i.logger.Warnf("failed to publish %s event for product %d: %v", eventType, productID, err)
	}
}
