package app

import (
	"context"
	"log"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
)

// MappedLister lists every property linked to an external listing.
type MappedLister interface {
	ListMapped(ctx context.Context) ([]domain.Property, error)
}

// Reconciler runs one property's inbound pass.
type Reconciler interface {
	Reconcile(ctx context.Context, propertyID string) (domain.SyncResult, error)
}

const defaultPropertyPause = 500 * time.Millisecond

// Orchestrator runs the reconciler across all mapped properties,
// sequentially. One property's failure is recorded and the batch continues.
// The PMS rate limit is enforced by the shared limiter inside the client;
// the pause between properties just spreads the load.
type Orchestrator struct {
	properties MappedLister
	reconciler Reconciler
	logger     *log.Logger
	pause      time.Duration
}

type OrchestratorOption func(*Orchestrator)

// WithPropertyPause overrides the delay between properties.
func WithPropertyPause(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.pause = d
		}
	}
}

func NewOrchestrator(properties MappedLister, reconciler Reconciler, logger *log.Logger, opts ...OrchestratorOption) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	o := &Orchestrator{
		properties: properties,
		reconciler: reconciler,
		logger:     logger,
		pause:      defaultPropertyPause,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) SyncAll(ctx context.Context) (domain.BulkSyncReport, error) {
	properties, err := o.properties.ListMapped(ctx)
	if err != nil {
		return domain.BulkSyncReport{}, err
	}

	report := domain.BulkSyncReport{TotalProperties: len(properties)}
	for i, p := range properties {
		if ctx.Err() != nil {
			break
		}

		outcome := domain.PropertySyncOutcome{PropertyID: p.ID}
		result, err := o.reconciler.Reconcile(ctx, p.ID)
		if err != nil {
			outcome.Err = err.Error()
			report.FailedProperties++
			o.logger.Printf("sync property=%s failed: %v", p.ID, err)
		} else {
			outcome.Result = result
			report.SyncedProperties++
			o.logger.Printf("sync property=%s processed=%d blocked=%d freed=%d errors=%d",
				p.ID, result.DaysProcessed, result.DaysBlocked, result.DaysFreed, len(result.Errors))
		}
		report.Results = append(report.Results, outcome)

		if i < len(properties)-1 && o.pause > 0 {
			select {
			case <-time.After(o.pause):
			case <-ctx.Done():
			}
		}
	}
	return report, nil
}
