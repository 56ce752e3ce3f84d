package http

import (
	"net/http"
	"strconv"

	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

type IndexHandler struct {
	indexUsecase usecase.IndexUC
	logger       logger.Logger
}

func NewIndexHandler(indexUsecase usecase.IndexUC, logger logger.Logger) *IndexHandler {
	return &IndexHandler{indexUsecase: indexUsecase, logger: logger}
}

// rebuildIndex
//
//	@Summary		Полная перестройка индекса
//	@Description	Переиндексирует все товары каталога батчами
//	@Tags			index
//	@Produce		json
//	@Param			batch_size	query		int						false	"Размер батча"
//	@Success		200			{object}	map[string]interface{}	"Счетчики перестройки"
//	@Failure		500			{object}	ErrorResponse			"Внутренняя ошибка"
//	@Router			/index/rebuild [post]
func (h *IndexHandler) rebuildIndex(w http.ResponseWriter, r *http.Request) {
	batchSize := 0
	if raw := r.URL.Query().Get("batch_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, e.ErrInvalidLimit)
			return
		}
		batchSize = parsed
	}

	stats, err := h.indexUsecase.RebuildAll(r.Context(), batchSize)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"total":   stats.Total,
		"success": stats.Success,
		"failed":  stats.Failed,
	})
}

// indexMissing
//
//	@Summary		Индексация пропущенных товаров
//	@Description	Индексирует товары каталога, отсутствующие в векторном индексе
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Счетчики индексации"
//	@Failure		500	{object}	ErrorResponse			"Внутренняя ошибка"
//	@Router			/index/missing [post]
func (h *IndexHandler) indexMissing(w http.ResponseWriter, r *http.Request) {
	stats, err := h.indexUsecase.IndexMissing(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"total":   stats.Total,
		"indexed": stats.Indexed,
	})
}

// indexStats
//
//	@Summary		Состояние индекса
//	@Description	Возвращает количество товаров в каталоге и точек в индексе
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Сводка индекса"
//	@Failure		500	{object}	ErrorResponse			"Внутренняя ошибка"
//	@Router			/index/stats [get]
func (h *IndexHandler) indexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.indexUsecase.IndexStats(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"db_product_count":   stats.DBProductCount,
		"qdrant_point_count": stats.QdrantPointCount,
		"collection_name":    stats.CollectionName,
	})
}
