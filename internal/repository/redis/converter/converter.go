package converter

import "github.com/smart-procure/go-backend/internal/usecase"

// SupplierInfoConverter преобразует DTO поставщика между usecase и моделью Redis.
type SupplierInfoConverter interface {
	ToUseCase(model *SupplierInfoRedisModel) *usecase.SupplierInfo
	ToRedisModel(info usecase.SupplierInfo) SupplierInfoRedisModel
	ToArrRedisModel(infos []usecase.SupplierInfo) []SupplierInfoRedisModel
}

type SupplierInfoConverterImpl struct{}

func NewSupplierInfoConverterImpl() *SupplierInfoConverterImpl {
	return &SupplierInfoConverterImpl{}
}

func (c *SupplierInfoConverterImpl) ToUseCase(model *SupplierInfoRedisModel) *usecase.SupplierInfo {
	return &usecase.SupplierInfo{
		ID:           model.ID,
		CompanyName:  model.CompanyName,
		ContactName:  model.ContactName,
		ContactPhone: model.ContactPhone,
	}
}

func (c *SupplierInfoConverterImpl) ToRedisModel(info usecase.SupplierInfo) SupplierInfoRedisModel {
	return SupplierInfoRedisModel{
		ID:           info.ID,
		CompanyName:  info.CompanyName,
		ContactName:  info.ContactName,
		ContactPhone: info.ContactPhone,
	}
}

func (c *SupplierInfoConverterImpl) ToArrRedisModel(infos []usecase.SupplierInfo) []SupplierInfoRedisModel {
	models := make([]SupplierInfoRedisModel, 0, len(infos))
	for _, info := range infos {
		models = append(models, c.ToRedisModel(info))
	}

	return models
}
