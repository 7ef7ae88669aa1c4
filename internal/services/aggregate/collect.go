package aggregate

import (
	"context"
	"fmt"

	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
)

// Collect drains snapshots until every category has loaded and returns the
// final aggregate. When the channel closes first the latest partial
// aggregate is returned with ctx's error.
func Collect(ctx context.Context, snapshots <-chan models.Snapshot) (*models.Aggregate, error) {
	var last *models.Aggregate
	for snap := range snapshots {
		last = snap.Aggregate
		if last.Complete() {
			return last, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return last, err
	}
	return last, fmt.Errorf("aggregate closed before all sources loaded")
}

// LoadComplete starts an aggregation and waits for it to finish
func LoadComplete(ctx context.Context, svc interfaces.AggregateService, event *models.EventRecord) (*models.Aggregate, error) {
	snapshots, err := svc.LoadAggregate(ctx, event)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, snapshots)
}
