package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deleteTimeout  = 30 * time.Second
)

// Deleter removes a stored object by its public id.
type Deleter interface {
	Delete(ctx context.Context, publicID string) error
}

// Dispatcher removes replaced or orphaned stored objects in the background.
// Jobs are sharded over a fixed set of workers by hashing the public id, so
// repeated requests for one object are handled in order by a single worker.
type Dispatcher struct {
	workers []chan string
	storage Deleter
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex // guards closed against sends on closed channels
	closed bool
	cancel context.CancelFunc
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, storage Deleter, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		storage: storage,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx stops them at once,
// abandoning queued jobs; Shutdown stops them after the queue has drained.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting jobs and waits for the workers to finish what is
// already queued. If ctx ends first, in-flight deletions are cancelled, the
// remaining jobs are abandoned and ctx.Err() is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if d.cancel != nil {
			d.cancel()
		}
		<-done
		return ctx.Err()
	}
}

// ScheduleDelete queues publicID for deletion. It never blocks: when the
// worker's buffer is full, or the dispatcher is shutting down, the job is
// dropped and logged.
func (d *Dispatcher) ScheduleDelete(publicID string) {
	if publicID == "" {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.CleanupJobsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("public_id", publicID).Msg("cleanup dispatcher stopped, job dropped")
		return
	}

	idx := d.shardIndex(publicID)
	select {
	case d.workers[idx] <- publicID:
		metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.CleanupJobsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("public_id", publicID).Int("worker_id", idx).Msg("cleanup queue full, job dropped")
	}
}

// shardIndex maps a public id deterministically to a worker index.
func (d *Dispatcher) shardIndex(publicID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(publicID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case publicID, ok := <-ch:
			if !ok {
				return
			}
			metrics.CleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.delete(ctx, id, publicID)
		}
	}
}

func (d *Dispatcher) delete(ctx context.Context, worker int, publicID string) {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	if err := d.storage.Delete(ctx, publicID); err != nil {
		metrics.CleanupJobsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("public_id", publicID).
			Int("worker_id", worker).
			Msg("stored object cleanup failed")
		return
	}
	metrics.CleanupJobsTotal.WithLabelValues("deleted").Inc()
	d.log.Debug().Str("public_id", publicID).Int("worker_id", worker).Msg("stored object deleted")
}
