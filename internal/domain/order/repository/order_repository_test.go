package repository

import (
	"context"
	"testing"
	"time"

	"mini_shop/internal/domain/order/model"
	"mini_shop/pkg/apperr"
	"mini_shop/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) OrderRepository {
	db, err := database.NewMemory(false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}, &model.OrderItem{}))
	return NewOrderRepository(db)
}

func createOrder(t *testing.T, repo OrderRepository, userID uint, productIDs ...uint) *model.Order {
	o := &model.Order{UserID: userID, Total: decimal.NewFromInt(1), Date: time.Now()}
	for _, id := range productIDs {
		o.Items = append(o.Items, model.OrderItem{ProductID: id, Name: "p", Price: decimal.NewFromInt(1), Quantity: 1})
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestHasPurchased(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	createOrder(t, repo, 1, 10, 11)

	ok, err := repo.HasPurchased(ctx, 1, 11)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasPurchased(ctx, 1, 12)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.HasPurchased(ctx, 2, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransitionReturnIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	o := createOrder(t, repo, 1, 10)

	ok, err := repo.TransitionReturn(ctx, o.ID, model.ReturnPending, map[string]interface{}{"return_status": model.ReturnReturned})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.TransitionReturn(ctx, o.ID, model.ReturnNone, map[string]interface{}{"return_status": model.ReturnPending})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionReturn(ctx, o.ID, model.ReturnNone, map[string]interface{}{"return_status": model.ReturnPending})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnreadReturnResults(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	returned := createOrder(t, repo, 1, 10)
	pending := createOrder(t, repo, 1, 10)
	createOrder(t, repo, 1, 10)

	_, err := repo.TransitionReturn(ctx, returned.ID, model.ReturnNone, map[string]interface{}{"return_status": model.ReturnReturned})
	require.NoError(t, err)
	_, err = repo.TransitionReturn(ctx, pending.ID, model.ReturnNone, map[string]interface{}{"return_status": model.ReturnPending})
	require.NoError(t, err)

	unread, err := repo.ListUnreadReturnResults(ctx, 1)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, returned.ID, unread[0].ID)

	assert.ErrorIs(t, repo.MarkReturnNotificationRead(ctx, returned.ID, 2), apperr.ErrNotFound)
	require.NoError(t, repo.MarkReturnNotificationRead(ctx, returned.ID, 1))

	unread, err = repo.ListUnreadReturnResults(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
