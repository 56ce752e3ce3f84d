package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jimlawless/whereami"
	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/internal/repository/redis/converter"
	"github.com/smart-procure/go-backend/internal/usecase"
	"github.com/smart-procure/go-backend/pkg/clients"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

// CacheRepo кэширует карточки поставщиков для горячего пути рекомендаций.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.SupplierInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.SupplierInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetSuppliers возвращает закэшированных поставщиков по ID, игнорируя промахи и логируя их
func (r *CacheRepo) GetSuppliers(ctx context.Context, ids []int64) (map[int64]usecase.SupplierInfo, error) {
	keys := r.buildSupplierCacheKeys(ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64]usecase.SupplierInfo, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		model, err := r.unmarshalSupplierFromCache(data)
		if err != nil {
			r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if model.ID != ids[i] {
			r.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", ids[i], model.ID)
			if err := r.client.Client.Del(context.Background(), keys[i]).Err(); err != nil {
				r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}
		result[ids[i]] = *r.conv.ToUseCase(model)
	}

	return result, nil
}

// SetSuppliers атомарно кэширует несколько поставщиков с заданным TTL.
// Игнорирует ошибки сериализации/записи, логируя их.
func (r *CacheRepo) SetSuppliers(ctx context.Context, suppliers []usecase.SupplierInfo) error {
	models := r.conv.ToArrRedisModel(suppliers)

	pipeline := r.client.Client.Pipeline()
	for _, model := range models {
		data, err := json.Marshal(model)
		if err != nil {
			r.logger.Warnf("Failed to marshal supplier for caching (Supplier ID: %d): %v", model.ID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		key := r.supplierKey(model.ID)
		pipeline.Set(ctx, key, data, r.cfg.SupplierTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		r.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteSuppliers удаляет поставщиков из кэша по ID
func (r *CacheRepo) DeleteSuppliers(ctx context.Context, ids []int64) error {
	keys := r.buildSupplierCacheKeys(ids)

	if err := r.client.Client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// unmarshalSupplierFromCache десериализует JSON из кэша в модель поставщика
func (r *CacheRepo) unmarshalSupplierFromCache(data []byte) (*converter.SupplierInfoRedisModel, error) {
	var model converter.SupplierInfoRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// buildSupplierCacheKeys формирует Redis-ключи из ID поставщиков
func (r *CacheRepo) buildSupplierCacheKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.supplierKey(id)
	}

	return keys
}

// supplierKey возвращает Redis-ключ для одного поставщика
func (r *CacheRepo) supplierKey(id int64) string {
	return fmt.Sprintf("supplier:%d", id)
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
