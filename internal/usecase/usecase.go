package usecase

import (
	"context"

	"github.com/smart-procure/go-backend/internal/domain"
)

type RecommendUC interface {
	Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error)
}

type SearchUC interface {
	SearchSimilarProducts(ctx context.Context, req *SearchReq) ([]SearchCandidate, error)
}

type IndexUC interface {
	IndexProduct(ctx context.Context, product *domain.Product) (*domain.Embedding, error)
	RemoveProduct(ctx context.Context, productID int64) error
	RebuildAll(ctx context.Context, batchSize int) (*RebuildStats, error)
	IndexMissing(ctx context.Context) (*MissingStats, error)
	IndexStats(ctx context.Context) (*IndexStatsRes, error)
}

type CatalogUC interface {
	RegisterQuotedProduct(ctx context.Context, req *RegisterQuotedProductReq) (*RegisterQuotedProductRes, error)
	RemoveQuotedProduct(ctx context.Context, productID int64) error
}
