package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

// Orchestrator runs adapters concurrently and merges what they return.
type Orchestrator struct {
	collectors []Collector
	logger     *slog.Logger
}

var _ ports.RecordSource = (*Orchestrator)(nil)

// NewOrchestrator wires the adapters that should run on every pass.
func NewOrchestrator(collectors []Collector, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{collectors: collectors, logger: log}
}

type batch struct {
	name    string
	records []domain.Record
	err     error
}

// Collect invokes every adapter and waits for all of them. Records keep
// their order within one adapter; adapters appear in completion order.
func (o *Orchestrator) Collect(ctx context.Context) []domain.Record {
	results := make(chan batch, len(o.collectors))

	var wg sync.WaitGroup
	for _, c := range o.collectors {
		wg.Add(1)
		go func(c Collector) {
			defer wg.Done()
			records, err := runIsolated(ctx, c)
			results <- batch{name: c.Name(), records: records, err: err}
		}(c)
	}
	wg.Wait()
	close(results)

	var all []domain.Record
	for b := range results {
		if b.err != nil {
			o.logger.Error("adapter failed", "adapter", b.name, "err", b.err)
			continue
		}
		o.logger.Info("adapter collected", "adapter", b.name, "count", len(b.records))
		all = append(all, b.records...)
	}

	o.logger.Debug("collection done", "adapters", len(o.collectors), "total", len(all))
	return all
}

func runIsolated(ctx context.Context, c Collector) (records []domain.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("%w: %s: %v", ErrAdapterPanic, c.Name(), r)
		}
	}()
	return c.Collect(ctx), nil
}
