package strategy

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentStrategy interface {
	// Pay 发起支付，返回交易流水号
	Pay(ctx context.Context, orderID uint, amount decimal.Decimal) (string, error)
}
