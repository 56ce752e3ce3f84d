package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

type ProductHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewProductHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUsecase: catalogUsecase, logger: logger}
}

type registerProductRequest struct {
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	Brand        string `json:"brand"`
	ProductName  string `json:"product_name"`
	ProductModel string `json:"product_model"`
	Price        string `json:"price"`
}

type registerProductResponse struct {
	ProductID  int64 `json:"product_id"`
	SupplierID int64 `json:"supplier_id"`
	Indexed    bool  `json:"indexed"`
}

// registerQuotedProduct
//
//	@Summary		Регистрация позиции котировки
//	@Description	Создает или обновляет поставщика и его товар, индексирует эмбеддинг
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerProductRequest	true	"Позиция котировки"
//	@Success		201		{object}	registerProductResponse	"Успешная регистрация"
//	@Failure		400		{object}	ErrorResponse			"Ошибка валидации"
//	@Router			/products [post]
func (h *ProductHandler) registerQuotedProduct(w http.ResponseWriter, r *http.Request) {
	var req registerProductRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	priceCents, err := parsePriceToCents(req.Price)
	if err != nil {
		h.logger.Warnf("%d %s: price=%q", http.StatusBadRequest, err.Error(), req.Price)
		WriteError(w, err)
		return
	}

	res, err := h.catalogUsecase.RegisterQuotedProduct(r.Context(), &usecase.RegisterQuotedProductReq{
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Brand:        req.Brand,
		ProductName:  req.ProductName,
		ProductModel: req.ProductModel,
		LastPrice:    priceCents,
	})
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, registerProductResponse{
		ProductID:  res.ProductID,
		SupplierID: res.SupplierID,
		Indexed:    res.Indexed,
	})
}

// removeQuotedProduct
//
//	@Summary		Удаление товара
//	@Description	Удаляет товар из каталога и его точку из векторного индекса
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int						true	"ID товара"
//	@Success		200	{object}	map[string]interface{}	"Успешное удаление"
//	@Failure		404	{object}	ErrorResponse			"Товар не найден"
//	@Router			/products/{id} [delete]
func (h *ProductHandler) removeQuotedProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || productID <= 0 {
		WriteError(w, e.ErrInvalidProductID)
		return
	}

	if err := h.catalogUsecase.RemoveQuotedProduct(r.Context(), productID); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"deleted": true,
	})
}
