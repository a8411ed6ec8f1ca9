package service

import (
	"context"
	"testing"

	"mini_shop/internal/domain/product/model"
	"mini_shop/internal/domain/product/repository"
	"mini_shop/pkg/apperr"
	"mini_shop/pkg/cache"
	"mini_shop/pkg/database"
	"mini_shop/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	service ProductService
	repo    repository.ProductRepository
	cache   cache.CacheService
	catalog *CatalogCache
}

func newFixture(t *testing.T) *fixture {
	db, err := database.NewMemory(false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Product{}))

	repo := repository.NewProductRepository(db)
	c := cache.NewMemoryCache()
	catalog := NewCatalogCache(c, metrics.NewMetricsCollector(prometheus.NewRegistry()), zap.NewNop())
	return &fixture{service: NewProductService(repo, catalog, zap.NewNop()), repo: repo, cache: c, catalog: catalog}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("Create success", func(t *testing.T) {
		p, err := f.service.CreateProduct(ctx, CreateParams{
			Name: "Kettle", Price: decimal.RequireFromString("19.999"), Description: "1.7L", Stock: 4,
		})
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, "20", p.Price.String())
	})

	t.Run("Negative stock rejected", func(t *testing.T) {
		_, err := f.service.CreateProduct(ctx, CreateParams{Name: "X", Price: decimal.NewFromInt(1), Stock: -1})
		assert.ErrorIs(t, err, apperr.ErrInvalidParam)
	})

	t.Run("Zero price rejected", func(t *testing.T) {
		_, err := f.service.CreateProduct(ctx, CreateParams{Name: "X", Price: decimal.Zero, Stock: 1})
		assert.ErrorIs(t, err, apperr.ErrInvalidParam)
	})
}

func TestListProductsCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.service.CreateProduct(ctx, CreateParams{Name: "Mug", Price: decimal.NewFromInt(8), Description: "Ceramic", Stock: 3})
	require.NoError(t, err)

	products, err := f.service.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	cached, _, hit := f.catalog.Get(ctx)
	require.True(t, hit)
	assert.Equal(t, 3, cached[0].Stock)

	t.Run("Stock change invalidates the listing", func(t *testing.T) {
		_, err := f.service.UpdateStock(ctx, p.ID, 9)
		require.NoError(t, err)

		_, _, hit := f.catalog.Get(ctx)
		assert.False(t, hit)

		products, err := f.service.ListProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 9, products[0].Stock)
	})

	t.Run("Negative stock rejected", func(t *testing.T) {
		_, err := f.service.UpdateStock(ctx, p.ID, -1)
		assert.ErrorIs(t, err, apperr.ErrInvalidParam)
	})

	t.Run("Delete invalidates the listing", func(t *testing.T) {
		require.NoError(t, f.service.DeleteProduct(ctx, p.ID))

		products, err := f.service.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.service.CreateProduct(ctx, CreateParams{Name: "Pen", Price: decimal.NewFromInt(2), Description: "Blue", Stock: 10})
	require.NoError(t, err)

	updated, err := f.service.UpdateProduct(ctx, p.ID, UpdateParams{Name: "Pen Pro", Price: decimal.RequireFromString("3.5"), Description: "Black"})
	require.NoError(t, err)
	assert.Equal(t, "Pen Pro", updated.Name)

	got, err := f.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Black", got.Description)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, 10, got.Stock)

	_, err = f.service.UpdateProduct(ctx, 999, UpdateParams{Name: "Nope", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSeedDemoProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.service.SeedDemoProducts(ctx))
	require.NoError(t, f.service.SeedDemoProducts(ctx))

	count, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(demoProducts())), count)
}

func TestCatalogCacheVersioning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("Snapshot read before invalidation is discarded", func(t *testing.T) {
		_, version, hit := f.catalog.Get(ctx)
		require.False(t, hit)
		require.NotEmpty(t, version)

		// 读库期间库存发生变化
		stale := []model.Product{{Name: "Mug", Stock: 3}}
		f.catalog.Invalidate(ctx)
		f.catalog.Store(ctx, version, stale)

		_, current, hit := f.catalog.Get(ctx)
		assert.False(t, hit)
		assert.NotEqual(t, version, current)
	})

	t.Run("Listing racing a stock update serves fresh stock", func(t *testing.T) {
		p, err := f.service.CreateProduct(ctx, CreateParams{Name: "Lamp", Price: decimal.NewFromInt(30), Stock: 5})
		require.NoError(t, err)

		_, version, _ := f.catalog.Get(ctx)
		snapshot, err := f.repo.List(ctx)
		require.NoError(t, err)

		_, err = f.service.UpdateStock(ctx, p.ID, 1)
		require.NoError(t, err)
		f.catalog.Store(ctx, version, snapshot)

		products, err := f.service.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 1, products[0].Stock)
	})

	t.Run("Version survives without expiry", func(t *testing.T) {
		f.catalog.Invalidate(ctx)
		var version string
		require.NoError(t, f.cache.Get(ctx, CatalogVersionKey, &version))
		assert.NotEmpty(t, version)
	})
}
