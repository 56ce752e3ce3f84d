package qdrant

import (
	"context"

	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/e"
)

// EmbeddingRepo — векторное хранилище эмбеддингов продуктов поверх Qdrant.
// ID точки равен ID продукта, поэтому upsert никогда не плодит дубликатов.
type EmbeddingRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewEmbeddingRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client,
		cfg:    cfg,
	}
}

// Upsert атомарно сохраняет или обновляет точку продукта.
// При конкурентной записи по одному продукту побеждает последняя.
func (q *EmbeddingRepo) Upsert(ctx context.Context, embedding *domain.Embedding) error {
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDNum(uint64(embedding.ProductID)),
				Vectors: qdrant.NewVectors(embedding.Vector...),
				Payload: qdrant.NewValueMap(embedding.Payload),
			},
		},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Delete удаляет точку продукта. Отсутствующая точка не считается ошибкой.
func (q *EmbeddingRepo) Delete(ctx context.Context, productID int64) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(qdrant.NewIDNum(uint64(productID))),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Search выполняет поиск ближайших соседей под косинусной метрикой.
// Опциональный бренд-фильтр собирается как явное условие точного совпадения.
func (q *EmbeddingRepo) Search(ctx context.Context, req *usecase.VectorSearchReq) ([]usecase.SearchCandidate, error) {
	query := &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQuery(req.Vector...),
		Limit:          qdrant.PtrOf(req.Limit),
		ScoreThreshold: qdrant.PtrOf(req.Threshold),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	if req.Brand != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("brand", req.Brand),
			},
		}
	}

	points, err := q.client.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	candidates := make([]usecase.SearchCandidate, 0, len(points))
	for _, point := range points {
		candidates = append(candidates, toSearchCandidate(point))
	}

	return candidates, nil
}

// ExistingIDs возвращает подмножество переданных ID, для которых точка уже есть.
func (q *EmbeddingRepo) ExistingIDs(ctx context.Context, ids []int64) (map[int64]struct{}, error) {
	if len(ids) == 0 {
		return map[int64]struct{}{}, nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewIDNum(uint64(id)))
	}

	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(false),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	existing := make(map[int64]struct{}, len(points))
	for _, point := range points {
		existing[int64(point.Id.GetNum())] = struct{}{}
	}

	return existing, nil
}

// Count возвращает точное количество точек в коллекции.
func (q *EmbeddingRepo) Count(ctx context.Context) (uint64, error) {
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

// toSearchCandidate разворачивает payload точки в кандидата поиска.
// Косинусный score Qdrant уже нормализован как 1 - distance.
func toSearchCandidate(point *qdrant.ScoredPoint) usecase.SearchCandidate {
	payload := point.Payload

	return usecase.SearchCandidate{
		ProductID:     payloadInt(payload, "supplier_product_id", int64(point.Id.GetNum())),
		SupplierID:    payloadInt(payload, "supplier_id", 0),
		ProductName:   payloadString(payload, "product_name"),
		ProductModel:  payloadString(payload, "product_model"),
		Brand:         payloadString(payload, "brand"),
		EmbeddingText: payloadString(payload, "embedding_text"),
		QuoteCount:    payloadInt(payload, "quote_count", 0),
		Similarity:    float64(point.Score),
	}
}

func payloadInt(payload map[string]*qdrant.Value, key string, fallback int64) int64 {
	value, ok := payload[key]
	if !ok {
		return fallback
	}

	return value.GetIntegerValue()
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	value, ok := payload[key]
	if !ok {
		return ""
	}

	return value.GetStringValue()
}
