package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kirillkom/legal-intel/internal/observability/metrics"
)

// dispatcher fans queue deliveries out to a bounded pool. NATS invokes the
// subscription callback serially from one goroutine, so handle only reserves
// a slot and moves the document to its own goroutine; running the pipeline
// inside the callback would serialize every extraction behind the slowest
// document.
type dispatcher struct {
	sem         *semaphore.Weighted
	concurrency int64
	timeout     time.Duration
	process     func(context.Context, string) error
	metrics     *metrics.WorkerMetrics
}

func newDispatcher(
	concurrency int64,
	timeout time.Duration,
	process func(context.Context, string) error,
	workerMetrics *metrics.WorkerMetrics,
) *dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &dispatcher{
		sem:         semaphore.NewWeighted(concurrency),
		concurrency: concurrency,
		timeout:     timeout,
		process:     process,
		metrics:     workerMetrics,
	}
}

// handle blocks only while the pool is saturated, which backpressures the
// queue dispatch loop instead of piling up goroutines.
func (d *dispatcher) handle(ctx context.Context, documentID string) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	go func() {
		defer d.sem.Release(1)

		processCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		if d.metrics != nil {
			d.metrics.StartDocument()
		}
		start := time.Now()
		err := d.process(processCtx, documentID)
		if d.metrics != nil {
			d.metrics.FinishDocument("worker", time.Since(start), err)
		}
		if err != nil {
			log.Printf("process document %s: %v", documentID, err)
		}
	}()
	return nil
}

// wait gives in-flight documents a grace period to return before shutdown.
func (d *dispatcher) wait(grace time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := d.sem.Acquire(ctx, d.concurrency); err != nil {
		log.Printf("shutdown with documents still in flight: %v", err)
	}
}
