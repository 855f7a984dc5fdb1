// file: internal/batch/batch.go
// version: 1.2.0
// guid: 6d7e8f9a-0b1c-2d3e-4f5a-6b7c8d9e0f1b

// Package batch orchestrates pipeline runs over a selected set of
// tracks. Items are processed one at a time so no provider ever sees
// two concurrent requests from the same run; each item gets its own
// cancellable budget so a slow provider cannot stall the rest.
package batch

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"sync"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/music-tagger/internal/metrics"
	"github.com/jdfalk/music-tagger/internal/models"
	"github.com/jdfalk/music-tagger/internal/resolve"
)

// DefaultItemTimeout is the per-track budget for the network stages.
const DefaultItemTimeout = 45 * time.Second

// ItemResolver runs the pipeline for one record, satisfied by
// resolve.Resolver.
type ItemResolver interface {
	Resolve(ctx context.Context, rec *models.TrackRecord, opts resolve.Options) error
}

// EventKind tags a progress event.
type EventKind string

const (
	EventItemStarted  EventKind = "item_started"
	EventItemResolved EventKind = "item_resolved"
	EventItemFailed   EventKind = "item_failed"
	EventBatchDone    EventKind = "batch_done"
	EventBatchAborted EventKind = "batch_aborted"
)

// ProgressEvent is one step of a running batch, delivered on the
// run's event channel in processing order.
type ProgressEvent struct {
	BatchID string    `json:"batch_id"`
	Kind    EventKind `json:"kind"`
	Path    string    `json:"path,omitempty"`
	Done    int       `json:"done"`
	Total   int       `json:"total"`
	Err     string    `json:"error,omitempty"`
}

type run struct {
	cancel context.CancelFunc
}

// Runner starts and tracks batch runs. Zero globals: each session
// owns its Runner.
type Runner struct {
	resolver    ItemResolver
	itemTimeout time.Duration

	mu   sync.Mutex
	runs map[string]*run
}

// NewRunner builds a Runner over the given resolver.
func NewRunner(resolver ItemResolver, itemTimeout time.Duration) *Runner {
	if itemTimeout <= 0 {
		itemTimeout = DefaultItemTimeout
	}
	return &Runner{
		resolver:    resolver,
		itemTimeout: itemTimeout,
		runs:        make(map[string]*run),
	}
}

// NewBatchID returns a fresh sortable batch identifier.
func NewBatchID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Run starts processing records in their given (scan) order and
// returns the batch id plus the event channel. The channel closes
// after the final batch_done or batch_aborted event. Records resolved
// before an abort keep their state.
func (r *Runner) Run(ctx context.Context, records []*models.TrackRecord, opts resolve.Options) (string, <-chan ProgressEvent) {
	batchID := NewBatchID()
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.runs[batchID] = &run{cancel: cancel}
	r.mu.Unlock()

	events := make(chan ProgressEvent, len(records)*2+2)
	go r.process(runCtx, batchID, records, opts, events)
	return batchID, events
}

// Cancel aborts a running batch between items.
func (r *Runner) Cancel(batchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	active, ok := r.runs[batchID]
	if !ok {
		return fmt.Errorf("no running batch %s", batchID)
	}
	active.cancel()
	return nil
}

// Active returns the ids of batches still running.
func (r *Runner) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.runs))
	for id := range r.runs {
		ids = append(ids, id)
	}
	return ids
}

func (r *Runner) process(ctx context.Context, batchID string, records []*models.TrackRecord, opts resolve.Options, events chan<- ProgressEvent) {
	defer func() {
		r.mu.Lock()
		if active, ok := r.runs[batchID]; ok {
			active.cancel()
			delete(r.runs, batchID)
		}
		r.mu.Unlock()
		close(events)
	}()

	total := len(records)
	done := 0
	log.Printf("[INFO] batch %s: processing %d tracks", batchID, total)

	for _, rec := range records {
		// Abort checks happen between items only; an in-flight item
		// runs to the end of its own budget.
		if ctx.Err() != nil {
			log.Printf("[INFO] batch %s: aborted after %d/%d", batchID, done, total)
			events <- ProgressEvent{BatchID: batchID, Kind: EventBatchAborted, Done: done, Total: total}
			return
		}

		events <- ProgressEvent{BatchID: batchID, Kind: EventItemStarted, Path: rec.Path, Done: done, Total: total}
		metrics.IncResolveStarted("batch")
		started := time.Now()

		itemCtx, itemCancel := context.WithTimeout(ctx, r.itemTimeout)
		err := r.resolver.Resolve(itemCtx, rec, opts)
		itemCancel()
		metrics.ObserveResolveDuration("batch", time.Since(started))

		if ctx.Err() != nil {
			// The whole run was cancelled while this item was in
			// flight; its partial state is discarded from the count
			// but earlier items keep theirs.
			log.Printf("[INFO] batch %s: aborted after %d/%d", batchID, done, total)
			events <- ProgressEvent{BatchID: batchID, Kind: EventBatchAborted, Done: done, Total: total}
			return
		}
		done++

		if err != nil {
			// Per-item failures isolate: the rest of the batch
			// continues with normal processing.
			rec.Err = err.Error()
			metrics.IncResolveFailed("batch")
			events <- ProgressEvent{BatchID: batchID, Kind: EventItemFailed, Path: rec.Path, Done: done, Total: total, Err: err.Error()}
			continue
		}
		rec.Err = ""
		metrics.IncResolveCompleted("batch")
		events <- ProgressEvent{BatchID: batchID, Kind: EventItemResolved, Path: rec.Path, Done: done, Total: total}
	}

	events <- ProgressEvent{BatchID: batchID, Kind: EventBatchDone, Done: done, Total: total}
	log.Printf("[INFO] batch %s: completed %d tracks", batchID, done)
}
