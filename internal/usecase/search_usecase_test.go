package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

func testRecommendCfg() *cfg.RecommendCfg {
	return &cfg.RecommendCfg{
		SimilarityWeight:    0.6,
		QuoteWeight:         0.3,
		RecencyWeight:       0.1,
		QuoteSaturation:     10,
		RecencyWindow:       180 * 24 * time.Hour,
		DefaultTopK:         50,
		SimilarityThreshold: 0.3,
		TopMatchedProducts:  3,
	}
}

func TestSearchEmptyQueryText(t *testing.T) {
	store := newMemVectorStore()
	uc := NewSearchUC(&stubProvider{}, store, testRecommendCfg(), logger.NewSlogLogger())

	got, err := uc.SearchSimilarProducts(context.Background(), NewSearchReq("   ", "", "", 0, 0))
	if err != nil {
		t.Fatalf("SearchSimilarProducts: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d candidates, want 0", len(got))
	}
	if store.lastSearch != nil {
		t.Fatal("vector store must not be queried for empty text")
	}
}

func TestSearchProviderUnavailable(t *testing.T) {
	store := newMemVectorStore()
	uc := NewSearchUC(&stubProvider{}, store, testRecommendCfg(), logger.NewSlogLogger())

	got, err := uc.SearchSimilarProducts(context.Background(), NewSearchReq("cylinder", "", "", 0, 0))
	if err != nil {
		t.Fatalf("SearchSimilarProducts: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d candidates, want 0 when provider has no vector", len(got))
	}
	if store.lastSearch != nil {
		t.Fatal("vector store must not be queried without an embedding")
	}
}

func TestSearchStoreFailure(t *testing.T) {
	store := newMemVectorStore()
	store.searchErr = errors.New("grpc unavailable")

	provider := &stubProvider{vectors: map[string][]float32{"cylinder": {1, 0}}}
	uc := NewSearchUC(provider, store, testRecommendCfg(), logger.NewSlogLogger())

	_, err := uc.SearchSimilarProducts(context.Background(), NewSearchReq("cylinder", "", "", 0, 0))
	if !errors.Is(err, e.ErrStoreQueryFailure) {
		t.Fatalf("err = %v, want ErrStoreQueryFailure", err)
	}
}

func TestSearchOrderingThresholdTopK(t *testing.T) {
	store := newMemVectorStore()
	store.results = []SearchCandidate{
		{ProductID: 5, SupplierID: 1, Similarity: 0.8},
		{ProductID: 2, SupplierID: 1, Similarity: 0.9},
		{ProductID: 9, SupplierID: 2, Similarity: 0.8},
		{ProductID: 7, SupplierID: 2, Similarity: 0.2}, // ниже порога
		{ProductID: 3, SupplierID: 3, Similarity: 0.5},
	}

	provider := &stubProvider{vectors: map[string][]float32{"cylinder": {1, 0}}}
	uc := NewSearchUC(provider, store, testRecommendCfg(), logger.NewSlogLogger())

	got, err := uc.SearchSimilarProducts(context.Background(), NewSearchReq("cylinder", "", "", 3, 0.3))
	if err != nil {
		t.Fatalf("SearchSimilarProducts: %v", err)
	}

	wantIDs := []int64{2, 5, 9} // 0.9, затем два 0.8 по возрастанию ID
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d candidates, want %d", len(got), len(wantIDs))
	}
	for i, want := range wantIDs {
		if got[i].ProductID != want {
			t.Errorf("got[%d].ProductID = %d, want %d", i, got[i].ProductID, want)
		}
	}
}

func TestSearchDefaultsAndBrandNormalization(t *testing.T) {
	store := newMemVectorStore()
	provider := &stubProvider{vectors: map[string][]float32{"SMC cylinder": {1, 0}}}
	uc := NewSearchUC(provider, store, testRecommendCfg(), logger.NewSlogLogger())

	_, err := uc.SearchSimilarProducts(context.Background(), NewSearchReq("cylinder", "", "  SMC ", 0, 0))
	if err != nil {
		t.Fatalf("SearchSimilarProducts: %v", err)
	}

	if store.lastSearch == nil {
		t.Fatal("vector store was not queried")
	}
	if store.lastSearch.Brand != "smc" {
		t.Errorf("brand filter = %q, want lowercased trimmed %q", store.lastSearch.Brand, "smc")
	}
	if store.lastSearch.Limit != 50 {
		t.Errorf("limit = %d, want default 50", store.lastSearch.Limit)
	}
	if store.lastSearch.Threshold != 0.3 {
		t.Errorf("threshold = %v, want default 0.3", store.lastSearch.Threshold)
	}
}

// semanticFixture индексирует два продукта и возвращает поиск поверх того же
// хранилища: выдача считается честной косинусной близостью, без канона.
func semanticFixture(t *testing.T) *SearchUsecase {
	t.Helper()

	cylinder := domain.Product{ID: 1, SupplierID: 1, Brand: "SMC", ProductName: "气缸", ProductModel: "CDQ2B20-10D", QuoteCount: 5}
	valve := domain.Product{ID: 2, SupplierID: 2, Brand: "Festo", ProductName: "电磁阀", ProductModel: "MFH-3-1/4", QuoteCount: 2}

	provider := &stubProvider{vectors: map[string][]float32{
		domain.BuildProductText(cylinder.Brand, cylinder.ProductName, cylinder.ProductModel): {1, 0, 0},
		domain.BuildProductText(valve.Brand, valve.ProductName, valve.ProductModel):          {0, 1, 0},
		// Семантически близкий запрос: косинус с точкой цилиндра = 0.8.
		"SMC 气动执行器": {0.8, 0, 0.6},
	}}

	indexUC, store, _ := newIndexFixture(provider, cylinder, valve)
	for _, p := range []domain.Product{cylinder, valve} {
		product := p
		if _, err := indexUC.IndexProduct(context.Background(), &product); err != nil {
			t.Fatalf("IndexProduct(%d): %v", product.ID, err)
		}
	}

	return NewSearchUC(provider, store, testRecommendCfg(), logger.NewSlogLogger())
}

func TestSearchSemanticMatch(t *testing.T) {
	uc := semanticFixture(t)

	// "气动执行器" текстуально не совпадает с "气缸", но их векторы близки.
	got, err := uc.SearchSimilarProducts(context.Background(), NewSearchReq("气动执行器", "", "SMC", 0, 0))
	if err != nil {
		t.Fatalf("SearchSimilarProducts: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].ProductID != 1 {
		t.Errorf("ProductID = %d, want 1", got[0].ProductID)
	}
	if !almostEqual(got[0].Similarity, 0.8) {
		t.Errorf("Similarity = %v, want 0.8", got[0].Similarity)
	}
	if got[0].Similarity < 0.3 {
		t.Errorf("Similarity = %v, below threshold 0.3", got[0].Similarity)
	}
	if got[0].ProductName != "气缸" || got[0].Brand != "smc" {
		t.Errorf("payload = %q/%q, want 气缸/smc", got[0].ProductName, got[0].Brand)
	}
}

func TestSearchIdenticalTextNearMaxSimilarity(t *testing.T) {
	uc := semanticFixture(t)

	// Текст запроса собирается в точности в текст индексации цилиндра.
	got, err := uc.SearchSimilarProducts(context.Background(), NewSearchReq("气缸", "CDQ2B20-10D", "SMC", 0, 0))
	if err != nil {
		t.Fatalf("SearchSimilarProducts: %v", err)
	}

	if len(got) == 0 || got[0].ProductID != 1 {
		t.Fatalf("candidates = %v, want cylinder first", got)
	}
	if got[0].Similarity < 0.999 {
		t.Errorf("Similarity = %v, want ~1 for identical embedding text", got[0].Similarity)
	}
}
