package http

import (
	"github.com/go-chi/chi/v5"
	_ "github.com/smart-procure/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(recommendUC usecase.RecommendUC, catalogUC usecase.CatalogUC, indexUC usecase.IndexUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerRecommendRoutes(v1, NewRecommendHandler(recommendUC, r.logger))
		registerProductRoutes(v1, NewProductHandler(catalogUC, r.logger))
		registerIndexRoutes(v1, NewIndexHandler(indexUC, r.logger))
	})
}

func registerRecommendRoutes(router chi.Router, h *RecommendHandler) {
	router.Post("/recommendations", h.recommendSuppliers)
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", h.registerQuotedProduct)
		pr.Delete("/{id}", h.removeQuotedProduct)
	})
}

func registerIndexRoutes(router chi.Router, h *IndexHandler) {
	router.Route("/index", func(idx chi.Router) {
		idx.Post("/rebuild", h.rebuildIndex)
		idx.Post("/missing", h.indexMissing)
		idx.Get("/stats", h.indexStats)
	})
}
