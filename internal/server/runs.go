package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/minseo/saju-reporter/internal/batch"
)

// batchRun tracks one in-flight or finished batch. Progress events are
// buffered so SSE subscribers that connect late still see the full stream.
type batchRun struct {
	ID        uuid.UUID
	ServiceID string
	Total     int
	RowErrors []batch.RowError

	mu      sync.Mutex
	events  []batch.Progress
	subs    map[chan batch.Progress]struct{}
	done    chan struct{}
	summary *batch.Summary
	runErr  error
}

func newBatchRun(serviceID string, total int, rowErrors []batch.RowError) *batchRun {
	return &batchRun{
		ID:        uuid.New(),
		ServiceID: serviceID,
		Total:     total,
		RowErrors: rowErrors,
		subs:      make(map[chan batch.Progress]struct{}),
		done:      make(chan struct{}),
	}
}

// publish buffers the event and fans it out to subscribers. Slow
// subscribers drop events rather than blocking the batch; they still see
// the terminal completion through the done channel.
func (r *batchRun) publish(p batch.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
	for ch := range r.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// subscribe returns the events so far plus a channel for the rest.
func (r *batchRun) subscribe() ([]batch.Progress, chan batch.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	replay := make([]batch.Progress, len(r.events))
	copy(replay, r.events)
	ch := make(chan batch.Progress, 64)
	r.subs[ch] = struct{}{}
	return replay, ch
}

func (r *batchRun) unsubscribe(ch chan batch.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, ch)
}

// complete records the terminal result and closes the done channel.
func (r *batchRun) complete(summary *batch.Summary, err error) {
	r.mu.Lock()
	r.summary = summary
	r.runErr = err
	r.mu.Unlock()
	close(r.done)
}

// result returns the terminal state; ok is false while still running.
func (r *batchRun) result() (*batch.Summary, error, bool) {
	select {
	case <-r.done:
	default:
		return nil, nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary, r.runErr, true
}

// status is "running", "completed", "canceled", or "failed".
func (r *batchRun) status() string {
	summary, err, ok := r.result()
	switch {
	case !ok:
		return "running"
	case err != nil:
		return "failed"
	case summary != nil && summary.Canceled > 0:
		return "canceled"
	default:
		return "completed"
	}
}

// runRegistry is the in-memory index of known batch runs.
type runRegistry struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*batchRun
}

func newRunRegistry() *runRegistry {
	return &runRegistry{runs: make(map[uuid.UUID]*batchRun)}
}

func (g *runRegistry) add(r *batchRun) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs[r.ID] = r
}

func (g *runRegistry) get(id uuid.UUID) (*batchRun, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.runs[id]
	return r, ok
}
