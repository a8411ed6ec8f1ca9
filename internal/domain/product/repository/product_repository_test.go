package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"mini_shop/internal/domain/product/model"
	"mini_shop/pkg/apperr"
	"mini_shop/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMemoryRepo(t *testing.T) ProductRepository {
	db, err := database.NewMemory(false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Product{}))
	return NewProductRepository(db)
}

func seed(t *testing.T, repo ProductRepository, name string, stock int) *model.Product {
	p := &model.Product{Name: name, Price: decimal.NewFromInt(10), Stock: stock}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestDecreaseStock(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	p := seed(t, repo, "Lamp", 3)

	t.Run("Decrease within stock", func(t *testing.T) {
		require.NoError(t, repo.DecreaseStock(ctx, p.ID, 2))
		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Stock)
	})

	t.Run("Decrease beyond stock leaves it unchanged", func(t *testing.T) {
		assert.ErrorIs(t, repo.DecreaseStock(ctx, p.ID, 2), ErrStockNotEnough)
		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Stock)
	})

	t.Run("Unknown product", func(t *testing.T) {
		assert.ErrorIs(t, repo.DecreaseStock(ctx, 999, 1), ErrStockNotEnough)
	})
}

func TestDecreaseStockConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	p := seed(t, repo, "Limited", 5)

	var wg sync.WaitGroup
	var succeeded int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.DecreaseStock(ctx, p.ID, 1) == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(5), succeeded)
	assert.Equal(t, 0, got.Stock)
}

func TestIncreaseStockAndAdminOps(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	p := seed(t, repo, "Desk", 5)

	require.NoError(t, repo.IncreaseStock(ctx, p.ID, 2))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	assert.ErrorIs(t, repo.IncreaseStock(ctx, 999, 1), apperr.ErrNotFound)
	assert.ErrorIs(t, repo.SetStock(ctx, 999, 1), apperr.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), apperr.ErrNotFound)
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDecreaseStockPostgresSQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo := NewProductRepository(db)

	const stmt = `UPDATE "products" SET "stock"=stock - \$1 WHERE id = \$2 AND stock >= \$3`

	t.Run("Row updated", func(t *testing.T) {
		mock.ExpectExec(stmt).WithArgs(2, 7, 2).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.DecreaseStock(context.Background(), 7, 2))
	})

	t.Run("No row matched", func(t *testing.T) {
		mock.ExpectExec(stmt).WithArgs(3, 7, 3).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.DecreaseStock(context.Background(), 7, 3), ErrStockNotEnough)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
