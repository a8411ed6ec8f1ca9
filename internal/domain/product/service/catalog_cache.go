package service

import (
	"context"
	"errors"
	"time"

	"mini_shop/internal/domain/product/model"
	"mini_shop/pkg/cache"
	"mini_shop/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 缓存键常量
const (
	CatalogCachePrefix  = "product_list"
	CatalogVersionKey   = CatalogCachePrefix + "_version"
	CatalogCacheTTL     = time.Minute * 10
	initialCatalogEpoch = "0"
)

// CatalogKey 指定版本的列表缓存键
func CatalogKey(version string) string {
	return CatalogCachePrefix + ":" + version
}

// CatalogCache 商品列表缓存，任何库存或商品信息变化后都要调用 Invalidate。
// 列表按版本号存放，Invalidate 换新版本，读库期间发生的失效不会被旧快照覆盖。
type CatalogCache struct {
	cache   cache.CacheService
	metrics *metrics.MetricsCollector
	log     *zap.Logger
}

func NewCatalogCache(c cache.CacheService, m *metrics.MetricsCollector, log *zap.Logger) *CatalogCache {
	return &CatalogCache{cache: c, metrics: m, log: log}
}

// Get 返回缓存列表和读取时的版本号，命中时返回 true。
// 版本号读取失败时返回空串，此时 Store 不写缓存
func (c *CatalogCache) Get(ctx context.Context) ([]model.Product, string, bool) {
	version, err := c.version(ctx)
	if err != nil {
		c.log.Warn("failed to read product cache version", zap.Error(err))
		c.metrics.RecordCacheOperation(CatalogCachePrefix, false)
		return nil, "", false
	}

	var products []model.Product
	err = c.cache.Get(ctx, CatalogKey(version), &products)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		c.log.Warn("failed to read product cache", zap.Error(err))
	}
	hit := err == nil
	c.metrics.RecordCacheOperation(CatalogCachePrefix, hit)
	return products, version, hit
}

// Store 按 Get 返回的版本写入；版本已过期的快照不会再被读到
func (c *CatalogCache) Store(ctx context.Context, version string, products []model.Product) {
	if version == "" {
		return
	}
	// 缓存失败不影响业务逻辑，只记录日志
	if err := c.cache.Set(ctx, CatalogKey(version), products, CatalogCacheTTL); err != nil {
		c.log.Warn("failed to cache product list", zap.Error(err))
	}
}

func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.cache.Set(ctx, CatalogVersionKey, uuid.NewString(), 0); err != nil {
		c.log.Warn("failed to bump product cache version", zap.Error(err))
	}
	if err := c.cache.InvalidatePattern(ctx, CatalogCachePrefix+":*"); err != nil {
		c.log.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

func (c *CatalogCache) version(ctx context.Context) (string, error) {
	var version string
	err := c.cache.Get(ctx, CatalogVersionKey, &version)
	if errors.Is(err, cache.ErrCacheMiss) {
		return initialCatalogEpoch, nil
	}
	return version, err
}
