package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/userhive/account-api/internal/api/metrics"
	"github.com/userhive/account-api/internal/core/domain"
	"github.com/userhive/account-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes audit versions asynchronously through a fixed set of
// workers, sharded by the audited record's id so one user's history stays
// in order. Version writes are off the request path; a failed write is
// logged and counted, never surfaced to the caller.
type Dispatcher struct {
	workers []chan domain.Version
	repo    ports.VersionRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.VersionRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Version, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Version, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record sends a version to the worker responsible for its item id. The
// call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Record(version domain.Version) {
	d.workers[d.shardIndex(version.ItemID)] <- version
}

// shardIndex maps an item id deterministically to a worker index.
func (d *Dispatcher) shardIndex(itemID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(itemID, 10)))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Version) {
	for {
		select {
		case <-ctx.Done():
			return
		case version, ok := <-ch:
			if !ok {
				return
			}
			if err := d.repo.Insert(ctx, &version); err != nil {
				metrics.VersionErrorsTotal.Inc()
				d.log.Error().Err(err).
					Int64("item_id", version.ItemID).
					Str("event", string(version.Event)).
					Int("worker_id", id).
					Msg("version write failed")
				continue
			}
			metrics.VersionsRecordedTotal.WithLabelValues(string(version.Event)).Inc()
		}
	}
}
