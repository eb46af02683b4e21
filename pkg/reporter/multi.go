package reporter

import (
	"context"

	"github.com/joripage/matching-engine/pkg/oms/model"
	"go.uber.org/multierr"
)

// Multi hands every report to all reporters; one failing sink does not stop
// the others.
type Multi struct {
	reporters []Reporter
}

func NewMulti(reporters ...Reporter) *Multi {
	return &Multi{reporters: reporters}
}

func (m *Multi) Report(ctx context.Context, report *model.OrderReport) error {
	var err error
	for _, r := range m.reporters {
		err = multierr.Append(err, r.Report(ctx, report))
	}
	return err
}

func (m *Multi) Close() error {
	var err error
	for _, r := range m.reporters {
		err = multierr.Append(err, r.Close())
	}
	return err
}
