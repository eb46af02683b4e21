package riskrule

import (
	"fmt"
	"sort"

	"github.com/joripage/matching-engine/pkg/oms/model"
	"github.com/shopspring/decimal"
)

type TickSize struct {
	MaxPrice decimal.Decimal `yaml:"max_price"` // 0 = no limit
	Step     decimal.Decimal `yaml:"step"`
}

// TickSizeRule holds a tick ladder per symbol: the first band whose MaxPrice
// covers the price decides the step.
type TickSizeRule struct {
	Config map[string][]TickSize
}

func NewTickSizeRule(cfg map[string][]TickSize) *TickSizeRule {
	ladders := make(map[string][]TickSize, len(cfg))
	for symbol, ticks := range cfg {
		ladder := append([]TickSize(nil), ticks...)
		sort.SliceStable(ladder, func(i, j int) bool {
			a, b := ladder[i].MaxPrice, ladder[j].MaxPrice
			if a.IsZero() || b.IsZero() {
				return !a.IsZero() && b.IsZero()
			}
			return a.LessThan(b)
		})
		ladders[symbol] = ladder
	}
	return &TickSizeRule{Config: ladders}
}

func (r *TickSizeRule) Check(order *model.AddOrder) error {
	rules, ok := r.Config[order.Symbol]
	if !ok { // no config -> no rule
		return nil
	}

	for _, rule := range rules {
		if rule.MaxPrice.IsZero() || order.Price.LessThanOrEqual(rule.MaxPrice) {
			if !order.Price.Mod(rule.Step).IsZero() {
				return fmt.Errorf("%w: %s is not a multiple of %s", ErrTickSize, order.Price, rule.Step)
			}
			return nil
		}
	}

	return nil
}
