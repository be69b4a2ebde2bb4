package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/adminhub/user-accounts/internal/core/ports"
	"github.com/adminhub/user-accounts/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256

	// deleteTimeout bounds each store call. Jobs never run under the worker
	// context, which is already cancelled while the queue is drained.
	deleteTimeout = 5 * time.Second
)

type cleanupJob struct {
	owner string
	url   string
}

// ImageJanitor deletes unreferenced image files in the background. Jobs are
// sharded on the owning user so one user's files are removed in order.
type ImageJanitor struct {
	workers []chan cleanupJob
	store   ports.ImageStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewImageJanitor creates an ImageJanitor with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewImageJanitor(numWorkers int, store ports.ImageStore, log zerolog.Logger) *ImageJanitor {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	j := &ImageJanitor{
		workers: make([]chan cleanupJob, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range j.workers {
		j.workers[i] = make(chan cleanupJob, channelBuffer)
	}
	return j
}

// Start launches all worker goroutines. Once ctx is cancelled each worker
// processes the jobs still buffered in its queue and then returns; Wait
// blocks until they all have. Jobs discarded after that are not processed.
func (j *ImageJanitor) Start(ctx context.Context) {
	for i, ch := range j.workers {
		j.wg.Add(1)
		go j.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has returned.
func (j *ImageJanitor) Wait() {
	j.wg.Wait()
}

// Discard queues urls for deletion. It never blocks: when a worker's buffer
// is full the file is left on disk and a warning is logged.
func (j *ImageJanitor) Discard(owner string, urls []string) {
	if len(urls) == 0 {
		return
	}
	idx := j.shardIndex(owner)
	for _, url := range urls {
		select {
		case j.workers[idx] <- cleanupJob{owner: owner, url: url}:
			metrics.JanitorQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		default:
			metrics.ImagesDiscardedTotal.WithLabelValues("dropped").Inc()
			j.log.Warn().Str("url", url).Int("worker_id", idx).Msg("janitor queue full, image left in place")
		}
	}
}

// shardIndex maps an owner deterministically to a worker index.
func (j *ImageJanitor) shardIndex(owner string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	return int(h.Sum32() % uint32(len(j.workers)))
}

func (j *ImageJanitor) runWorker(ctx context.Context, id int, ch <-chan cleanupJob) {
	defer j.wg.Done()
	depth := metrics.JanitorQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			j.drain(id, ch, depth)
			return
		case job := <-ch:
			depth.Dec()
			j.process(id, job)
		}
	}
}

// drain processes whatever is buffered in ch without waiting for more.
func (j *ImageJanitor) drain(id int, ch <-chan cleanupJob, depth prometheus.Gauge) {
	drained := 0
	defer func() {
		if drained > 0 {
			j.log.Info().Int("worker_id", id).Int("jobs", drained).Msg("janitor queue drained on shutdown")
		}
	}()
	for {
		select {
		case job := <-ch:
			depth.Dec()
			j.process(id, job)
			drained++
		default:
			return
		}
	}
}

func (j *ImageJanitor) process(id int, job cleanupJob) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	if err := j.store.Delete(ctx, job.url); err != nil {
		metrics.ImagesDiscardedTotal.WithLabelValues("error").Inc()
		j.log.Error().Err(err).
			Str("user_id", job.owner).
			Str("url", job.url).
			Int("worker_id", id).
			Msg("image cleanup failed")
		return
	}
	metrics.ImagesDiscardedTotal.WithLabelValues("deleted").Inc()
	j.log.Debug().Str("user_id", job.owner).Str("url", job.url).Msg("image discarded")
}
