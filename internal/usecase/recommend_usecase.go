package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

// RecommendUsecase реализует реранжирование кандидатов бизнес-сигналами
// и агрегацию по поставщикам.
type RecommendUsecase struct {
	searcher     SearchUC
	productRepo  ProductRepository
	supplierRepo SupplierRepository
	cacheRepo    CacheRepository
	cfg          *cfg.RecommendCfg
	logger       logger.Logger
	now          func() time.Time
}

func NewRecommendUC(
	searcher SearchUC,
	productRepo ProductRepository,
	supplierRepo SupplierRepository,
	cacheRepo CacheRepository,
	cfg *cfg.RecommendCfg,
	logger logger.Logger,
) *RecommendUsecase {
	return &RecommendUsecase{
		searcher:     searcher,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		cacheRepo:    cacheRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// supplierAgg — накопитель одной группы поставщика, живет в пределах запроса.
type supplierAgg struct {
	info       SupplierInfo
	matched    []MatchedProduct
	quoteCount int64
	brands     map[string]struct{}
}

// Recommend возвращает поставщиков, отсортированных по убыванию агрегированной оценки.
// Пустая выдача поиска — пустой результат, не ошибка. Отказ векторного хранилища
// возвращается вместе с пустым списком как восстановимая ошибка.
func (r *RecommendUsecase) Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error) {
	const op = "RecommendUsecase.Recommend"

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	candidates, err := r.searcher.SearchSimilarProducts(ctx, NewSearchReq(
		req.ProductName, req.Spec, req.Brand, r.cfg.DefaultTopK, r.cfg.SimilarityThreshold,
	))
	if err != nil {
		return NewRecommendRes([]SupplierRecommendation{}), e.Wrap(op, err)
	}

	if len(candidates) == 0 {
		return NewRecommendRes([]SupplierRecommendation{}), nil
	}

	products, err := r.loadProducts(ctx, candidates)
	if err != nil {
		return NewRecommendRes([]SupplierRecommendation{}), e.Wrap(op, err)
	}

	suppliers := r.resolveSuppliers(ctx, candidates)

	groups := make(map[int64]*supplierAgg)
	for _, c := range candidates {
		product, ok := products[c.ProductID]
		if !ok {
			// Эмбеддинг ссылается на удаленный продукт: пропускаем, индекс догонит
			r.logger.Warnf("candidate product %d not found in catalog, dropped", c.ProductID)
			continue
		}

		supplier, ok := suppliers[c.SupplierID]
		if !ok {
			r.logger.Warnf("supplier %d for product %d: %v, candidate dropped", c.SupplierID, c.ProductID, e.ErrSupplierNotResolved)
			continue
		}

		composite := r.compositeScore(c.Similarity, &product)

		group, ok := groups[c.SupplierID]
		if !ok {
			group = &supplierAgg{
				info:   supplier,
				brands: make(map[string]struct{}),
			}
			groups[c.SupplierID] = group
		}

		group.matched = append(group.matched, MatchedProduct{
			ProductID:    product.ID,
			ProductName:  product.ProductName,
			ProductModel: product.ProductModel,
			Brand:        product.Brand,
			LastPrice:    product.LastPrice,
			QuoteCount:   product.QuoteCount,
			Similarity:   c.Similarity,
			Composite:    composite,
		})
		group.quoteCount += product.QuoteCount
		if product.Brand != "" {
			group.brands[product.Brand] = struct{}{}
		}
	}

	result := make([]SupplierRecommendation, 0, len(groups))
	for _, group := range groups {
		result = append(result, r.buildRecommendation(group))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].AggregateScore != result[j].AggregateScore {
			return result[i].AggregateScore > result[j].AggregateScore
		}
		return result[i].SupplierID < result[j].SupplierID
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return NewRecommendRes(result), nil
}

// compositeScore — композитная оценка кандидата:
// 0.6*близость + 0.3*насыщаемый сигнал котировок + 0.1*фактор свежести.
func (r *RecommendUsecase) compositeScore(similarity float64, product *domain.Product) float64 {
	quoteSignal := float64(product.QuoteCount) / r.cfg.QuoteSaturation
	if quoteSignal > 1 {
		quoteSignal = 1
	}

	return r.cfg.SimilarityWeight*similarity +
		r.cfg.QuoteWeight*quoteSignal +
		r.cfg.RecencyWeight*r.recencyFactor(product)
}

// recencyFactor линейно затухает от 1.0 до 0 по мере старения записи
// в пределах настраиваемого окна, вне окна остается 0.
func (r *RecommendUsecase) recencyFactor(product *domain.Product) float64 {
	updatedAt := product.CreatedAt
	if product.UpdatedAt != nil {
		updatedAt = *product.UpdatedAt
	}

	age := r.now().Sub(updatedAt)
	if age <= 0 {
		return 1
	}

	factor := 1 - float64(age)/float64(r.cfg.RecencyWindow)
	if factor < 0 {
		return 0
	}

	return factor
}

func (r *RecommendUsecase) buildRecommendation(group *supplierAgg) SupplierRecommendation {
	sort.Slice(group.matched, func(i, j int) bool {
		if group.matched[i].Composite != group.matched[j].Composite {
			return group.matched[i].Composite > group.matched[j].Composite
		}
		return group.matched[i].ProductID < group.matched[j].ProductID
	})

	var sumComposite, sumSimilarity, maxSimilarity float64
	for _, m := range group.matched {
		sumComposite += m.Composite
		sumSimilarity += m.Similarity
		if m.Similarity > maxSimilarity {
			maxSimilarity = m.Similarity
		}
	}

	n := float64(len(group.matched))

	brands := make([]string, 0, len(group.brands))
	for brand := range group.brands {
		brands = append(brands, brand)
	}
	sort.Strings(brands)

	matched := group.matched
	if len(matched) > r.cfg.TopMatchedProducts {
		matched = matched[:r.cfg.TopMatchedProducts]
	}

	return SupplierRecommendation{
		SupplierID:      group.info.ID,
		CompanyName:     group.info.CompanyName,
		ContactName:     group.info.ContactName,
		ContactPhone:    group.info.ContactPhone,
		AggregateScore:  sumComposite / n,
		MaxSimilarity:   maxSimilarity,
		MeanSimilarity:  sumSimilarity / n,
		TotalQuoteCount: group.quoteCount,
		Brands:          brands,
		MatchedProducts: matched,
	}
}

// loadProducts загружает продукты кандидатов из каталога.
func (r *RecommendUsecase) loadProducts(ctx context.Context, candidates []SearchCandidate) (map[int64]domain.Product, error) {
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ProductID)
	}

	products, err := r.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		result[p.ID] = p
	}

	return result, nil
}

// resolveSuppliers разрешает поставщиков кандидатов через кэш с добором из БД.
// Ошибки кэша и БД не прерывают рекомендацию: неразрешенные поставщики
// отфильтруются на агрегации.
func (r *RecommendUsecase) resolveSuppliers(ctx context.Context, candidates []SearchCandidate) map[int64]SupplierInfo {
	seen := make(map[int64]struct{}, len(candidates))
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.SupplierID]; ok {
			continue
		}
		seen[c.SupplierID] = struct{}{}
		ids = append(ids, c.SupplierID)
	}

	cached, err := r.cacheRepo.GetSuppliers(ctx, ids)
	if err != nil {
		cached = map[int64]SupplierInfo{}
	}

	nonCacheable := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			nonCacheable = append(nonCacheable, id)
		}
	}

	if len(nonCacheable) == 0 {
		return cached
	}

	fromDB, err := r.supplierRepo.GetByIDs(ctx, nonCacheable)
	if err != nil {
		r.logger.Warnf("failed to load suppliers from db: %v", err)
		return cached
	}

	infos := make([]SupplierInfo, 0, len(fromDB))
	for _, s := range fromDB {
		info := NewSupplierInfo(s.ID, s.CompanyName, s.ContactName, s.ContactPhone)
		cached[s.ID] = info
		infos = append(infos, info)
	}

	// Фоновое заполнение кэша
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := r.cacheRepo.SetSuppliers(bgCtx, infos); err != nil {
			r.logger.Warnf("failed to cache suppliers in background: %v", err)
		}
	}()

	return cached
}
