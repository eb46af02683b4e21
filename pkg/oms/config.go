package oms

import (
	"fmt"

	riskrule "github.com/joripage/matching-engine/pkg/oms/risk_rule"
	"github.com/shopspring/decimal"
)

// maxPriceScale keeps 18-digit integer price units inside int64.
const maxPriceScale = 9

type InstrumentConfig struct {
	Symbol     string              `yaml:"symbol"`
	TickSizes  []riskrule.TickSize `yaml:"tick_sizes"`
	PriceFloor decimal.Decimal     `yaml:"price_floor"`
	PriceCeil  decimal.Decimal     `yaml:"price_ceil"` // 0 = no ceiling
}

type Config struct {
	// PriceScale is the number of decimal places in one integer price unit:
	// with 2, a price of 101.25 reaches the book as 10125.
	PriceScale  int32              `yaml:"price_scale"`
	Instruments []InstrumentConfig `yaml:"instruments"`
}

func (c *Config) Validate() error {
	if c.PriceScale < 0 || c.PriceScale > maxPriceScale {
		return fmt.Errorf("%w: price_scale %d not in [0, %d]", errInvalidConfig, c.PriceScale, maxPriceScale)
	}

	seen := make(map[string]struct{}, len(c.Instruments))
	for _, inst := range c.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("%w: instrument without symbol", errInvalidConfig)
		}
		if _, ok := seen[inst.Symbol]; ok {
			return fmt.Errorf("%w: duplicate instrument %s", errInvalidConfig, inst.Symbol)
		}
		seen[inst.Symbol] = struct{}{}

		for _, tick := range inst.TickSizes {
			if !tick.Step.IsPositive() {
				return fmt.Errorf("%w: %s: tick step must be positive", errInvalidConfig, inst.Symbol)
			}
			if tick.MaxPrice.IsNegative() {
				return fmt.Errorf("%w: %s: tick max_price must not be negative", errInvalidConfig, inst.Symbol)
			}
		}
		if inst.PriceFloor.IsNegative() || inst.PriceCeil.IsNegative() {
			return fmt.Errorf("%w: %s: price band must not be negative", errInvalidConfig, inst.Symbol)
		}
		if !inst.PriceCeil.IsZero() && inst.PriceCeil.LessThan(inst.PriceFloor) {
			return fmt.Errorf("%w: %s: price_ceil below price_floor", errInvalidConfig, inst.Symbol)
		}
	}
	return nil
}

func (c *Config) symbols() []string {
	symbols := make([]string, 0, len(c.Instruments))
	for _, inst := range c.Instruments {
		symbols = append(symbols, inst.Symbol)
	}
	return symbols
}

func (c *Config) rules() []riskrule.RiskRule {
	ticks := make(map[string][]riskrule.TickSize)
	band := riskrule.NewLimitPriceRule()
	for _, inst := range c.Instruments {
		if len(inst.TickSizes) > 0 {
			ticks[inst.Symbol] = inst.TickSizes
		}
		if !inst.PriceFloor.IsZero() || !inst.PriceCeil.IsZero() {
			band.Set(inst.Symbol, inst.PriceFloor, inst.PriceCeil)
		}
	}
	return []riskrule.RiskRule{riskrule.NewTickSizeRule(ticks), band}
}
