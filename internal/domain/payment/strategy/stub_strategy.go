package strategy

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StubStrategy 不对接任何网关，总是支付成功
type StubStrategy struct{}

func NewStubStrategy() *StubStrategy {
	return &StubStrategy{}
}

func (s *StubStrategy) Pay(_ context.Context, _ uint, _ decimal.Decimal) (string, error) {
	return uuid.NewString(), nil
}
