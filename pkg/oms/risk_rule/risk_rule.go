package riskrule

import (
	"errors"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

var (
	ErrPriceLimit = errors.New("price limit violation")
	ErrTickSize   = errors.New("invalid tick size")
)

type RiskRule interface {
	Check(order *model.AddOrder) error
}
