package http

import (
	"net/http"

	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

type RecommendHandler struct {
	recommendUsecase usecase.RecommendUC
	logger           logger.Logger
}

func NewRecommendHandler(recommendUsecase usecase.RecommendUC, logger logger.Logger) *RecommendHandler {
	return &RecommendHandler{recommendUsecase: recommendUsecase, logger: logger}
}

type recommendRequest struct {
	ProductName string `json:"product_name"`
	Spec        string `json:"spec"`
	Brand       string `json:"brand"`
	Limit       int    `json:"limit"`
}

type matchedProductResponse struct {
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductModel string  `json:"product_model,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	LastPrice    int64   `json:"last_price"`
	QuoteCount   int64   `json:"quote_count"`
	Similarity   float64 `json:"similarity"`
	Composite    float64 `json:"composite"`
}

type supplierRecommendationResponse struct {
	SupplierID      int64                    `json:"supplier_id"`
	CompanyName     string                   `json:"company_name"`
	ContactName     string                   `json:"contact_name,omitempty"`
	ContactPhone    string                   `json:"contact_phone,omitempty"`
	AggregateScore  float64                  `json:"aggregate_score"`
	MaxSimilarity   float64                  `json:"max_similarity"`
	MeanSimilarity  float64                  `json:"mean_similarity"`
	TotalQuoteCount int64                    `json:"total_quote_count"`
	Brands          []string                 `json:"brands,omitempty"`
	MatchedProducts []matchedProductResponse `json:"matched_products"`
}

type recommendResponse struct {
	Suppliers []supplierRecommendationResponse `json:"suppliers"`
}

// recommendSuppliers
//
//	@Summary		Рекомендация поставщиков
//	@Description	Возвращает упорядоченный список поставщиков для позиции котировки
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recommendRequest	true	"Позиция котировки"
//	@Success		200		{object}	recommendResponse	"Рекомендованные поставщики"
//	@Failure		400		{object}	ErrorResponse		"Ошибка валидации"
//	@Router			/recommendations [post]
func (h *RecommendHandler) recommendSuppliers(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	if req.Limit < 0 {
		WriteError(w, e.ErrInvalidLimit)
		return
	}

	res, err := h.recommendUsecase.Recommend(r.Context(), usecase.NewRecommendReq(req.ProductName, req.Spec, req.Brand, req.Limit))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendResponse(res))
}

func toRecommendResponse(res *usecase.RecommendRes) recommendResponse {
	suppliers := make([]supplierRecommendationResponse, 0, len(res.Suppliers))
	for _, s := range res.Suppliers {
		matched := make([]matchedProductResponse, 0, len(s.MatchedProducts))
		for _, m := range s.MatchedProducts {
			matched = append(matched, matchedProductResponse{
				ProductID:    m.ProductID,
				ProductName:  m.ProductName,
				ProductModel: m.ProductModel,
				Brand:        m.Brand,
				LastPrice:    m.LastPrice,
				QuoteCount:   m.QuoteCount,
				Similarity:   m.Similarity,
				Composite:    m.Composite,
			})
		}

		suppliers = append(suppliers, supplierRecommendationResponse{
			SupplierID:      s.SupplierID,
			CompanyName:     s.CompanyName,
			ContactName:     s.ContactName,
			ContactPhone:    s.ContactPhone,
			AggregateScore:  s.AggregateScore,
			MaxSimilarity:   s.MaxSimilarity,
			MeanSimilarity:  s.MeanSimilarity,
			TotalQuoteCount: s.TotalQuoteCount,
			Brands:          s.Brands,
			MatchedProducts: matched,
		})
	}

	return recommendResponse{Suppliers: suppliers}
}
