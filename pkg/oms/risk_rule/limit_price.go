package riskrule

import (
	"fmt"

	"github.com/joripage/matching-engine/pkg/oms/model"
	"github.com/shopspring/decimal"
)

type limitPrice struct {
	ceil  decimal.Decimal // zero = no ceiling
	floor decimal.Decimal
}

// LimitPriceRule rejects prices outside a per-symbol band. Symbols without a
// band pass.
type LimitPriceRule struct {
	prices map[string]*limitPrice
}

func NewLimitPriceRule() *LimitPriceRule {
	return &LimitPriceRule{prices: make(map[string]*limitPrice)}
}

func (r *LimitPriceRule) Set(symbol string, floor, ceil decimal.Decimal) {
	r.prices[symbol] = &limitPrice{ceil: ceil, floor: floor}
}

func (r *LimitPriceRule) Check(order *model.AddOrder) error {
	band, ok := r.prices[order.Symbol]
	if !ok {
		return nil
	}
	if order.Price.LessThan(band.floor) || (!band.ceil.IsZero() && order.Price.GreaterThan(band.ceil)) {
		return fmt.Errorf("%w: %s outside [%s, %s]", ErrPriceLimit, order.Price, band.floor, band.ceil)
	}
	return nil
}
