package converter

import (
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToEntity(model *ProductModel) *domain.Product
	ToArrEntity(models []*ProductModel) []domain.Product
}

// SupplierConverter преобразует сущности Supplier между domain и моделью PostgreSQL.
type SupplierConverter interface {
	ToEntity(model *SupplierModel) *domain.Supplier
	ToArrEntity(models []*SupplierModel) []domain.Supplier
}

// ReindexEventConverter преобразует события переиндексации между usecase и моделью PostgreSQL.
type ReindexEventConverter interface {
	ToModel(entity *usecase.ReindexEvent) *ReindexEventModel
	ToEntity(model *ReindexEventModel) *usecase.ReindexEvent
	ToArrEntity(models []*ReindexEventModel) []*usecase.ReindexEvent
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (c *ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:           model.ID,
		SupplierID:   model.SupplierID,
		Brand:        model.Brand,
		ProductName:  model.ProductName,
		ProductModel: model.ProductModel,
		LastPrice:    model.LastPrice,
		QuoteCount:   model.QuoteCount,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func (c *ProductConverterImpl) ToArrEntity(models []*ProductModel) []domain.Product {
	result := make([]domain.Product, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}

	return result
}

type SupplierConverterImpl struct{}

func NewSupplierConverterImpl() *SupplierConverterImpl {
	return &SupplierConverterImpl{}
}

func (c *SupplierConverterImpl) ToEntity(model *SupplierModel) *domain.Supplier {
	return &domain.Supplier{
		ID:            model.ID,
		CompanyName:   model.CompanyName,
		ContactName:   model.ContactName,
		ContactPhone:  model.ContactPhone,
		QuoteCount:    model.QuoteCount,
		LastQuoteDate: model.LastQuoteDate,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func (c *SupplierConverterImpl) ToArrEntity(models []*SupplierModel) []domain.Supplier {
	result := make([]domain.Supplier, 0, len(models))
	for _, model := range models {
		result = append(result, *c.ToEntity(model))
	}

	return result
}

type ReindexEventConverterImpl struct{}

func NewReindexEventConverterImpl() *ReindexEventConverterImpl {
	return &ReindexEventConverterImpl{}
}

func (c *ReindexEventConverterImpl) ToModel(entity *usecase.ReindexEvent) *ReindexEventModel {
	return &ReindexEventModel{
		ID:                  entity.ID,
		EventID:             entity.EventID,
		ProductID:           entity.ProductID,
		Status:              string(entity.Status),
		Attempts:            entity.Attempts,
		NextRetryAt:         entity.NextRetryAt,
		CreatedAt:           entity.CreatedAt,
		ProcessingStartedAt: entity.ProcessingStartedAt,
		ProcessedAt:         entity.ProcessedAt,
	}
}

func (c *ReindexEventConverterImpl) ToEntity(model *ReindexEventModel) *usecase.ReindexEvent {
	return &usecase.ReindexEvent{
		ID:                  model.ID,
		EventID:             model.EventID,
		ProductID:           model.ProductID,
		Status:              usecase.ReindexStatus(model.Status),
		Attempts:            model.Attempts,
		NextRetryAt:         model.NextRetryAt,
		CreatedAt:           model.CreatedAt,
		ProcessingStartedAt: model.ProcessingStartedAt,
		ProcessedAt:         model.ProcessedAt,
	}
}

func (c *ReindexEventConverterImpl) ToArrEntity(models []*ReindexEventModel) []*usecase.ReindexEvent {
	result := make([]*usecase.ReindexEvent, 0, len(models))
	for _, model := range models {
		result = append(result, c.ToEntity(model))
	}

	return result
}
