package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

// SearchUsecase превращает свободный текстовый запрос в ранжированный список
// кандидатов по косинусной близости.
type SearchUsecase struct {
	provider      EmbeddingProvider
	embeddingRepo EmbeddingRepository
	cfg           *cfg.RecommendCfg
	logger        logger.Logger
}

func NewSearchUC(
	provider EmbeddingProvider,
	embeddingRepo EmbeddingRepository,
	cfg *cfg.RecommendCfg,
	logger logger.Logger,
) *SearchUsecase {
	return &SearchUsecase{
		provider:      provider,
		embeddingRepo: embeddingRepo,
		cfg:           cfg,
		logger:        logger,
	}
}

// SearchSimilarProducts ищет ближайшие продукты под косинусной метрикой.
// Пустой текст запроса и недоступность провайдера дают пустую выдачу без ошибки.
// Отказ векторного хранилища возвращается как e.ErrStoreQueryFailure.
func (s *SearchUsecase) SearchSimilarProducts(ctx context.Context, req *SearchReq) ([]SearchCandidate, error) {
	const op = "SearchUsecase.SearchSimilarProducts"

	text := domain.BuildQueryText(req.ProductName, req.Spec, req.Brand)
	if text == "" {
		return []SearchCandidate{}, nil
	}

	vector := s.provider.GetEmbedding(ctx, text)
	if vector == nil {
		s.logger.Warnf("no embedding for query %q, returning empty result", text)
		return []SearchCandidate{}, nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.cfg.SimilarityThreshold
	}

	brand := strings.ToLower(strings.TrimSpace(req.Brand))
	candidates, err := s.embeddingRepo.Search(ctx, NewVectorSearchReq(vector, brand, uint64(topK), float32(threshold)))
	if err != nil {
		s.logger.Warnf("vector store query failed: %v", e.Wrap(op, err))
		return nil, e.Wrap(op, e.ErrStoreQueryFailure)
	}

	filtered := make([]SearchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Similarity < threshold {
			continue
		}
		filtered = append(filtered, c)
	}

	// Детерминированный порядок: по убыванию близости, при равенстве — по ID продукта
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Similarity != filtered[j].Similarity {
			return filtered[i].Similarity > filtered[j].Similarity
		}
		return filtered[i].ProductID < filtered[j].ProductID
	})

	if len(filtered) > topK {
		filtered = filtered[:topK]
	}

	return filtered, nil
}
