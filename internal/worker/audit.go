package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
	"github.com/jwalitptl/healthcare-api/pkg/messaging"
	"github.com/jwalitptl/healthcare-api/pkg/metrics"
)

const (
	defaultShards       = 4
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
)

type AuditWorkerConfig struct {
	Workers      int
	QueueSize    int
	WriteTimeout time.Duration
	// Channel is the broker channel written entries are published on.
	Channel string
}

// AuditWorker persists audit entries off the request path. Entries for the
// same entity always land on the same shard, so they are written in the
// order they were enqueued.
type AuditWorker struct {
	repo    repository.AuditRepository
	broker  messaging.Broker
	config  AuditWorkerConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	shards  []*shard
	mu      sync.RWMutex
	stopped bool
	running sync.WaitGroup
}

// shard is a FIFO channel plus a backlog for entries that arrive while the
// channel is full. Once the backlog is non-empty every new entry joins it,
// and it is only taken once the channel is empty, so enqueue order holds.
type shard struct {
	queue   chan *model.AuditLog
	wake    chan struct{}
	mu      sync.Mutex
	backlog []*model.AuditLog
}

func newShard(size int) *shard {
	return &shard{
		queue: make(chan *model.AuditLog, size),
		wake:  make(chan struct{}, 1),
	}
}

// push reports whether the entry went to the backlog.
func (s *shard) push(entry *model.AuditLog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.backlog) == 0 {
		select {
		case s.queue <- entry:
			return false
		default:
		}
	}
	s.backlog = append(s.backlog, entry)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// takeBacklog hands over the backlog, but only once everything queued
// before it has been received.
func (s *shard) takeBacklog() []*model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) > 0 {
		return nil
	}
	batch := s.backlog
	s.backlog = nil
	return batch
}

func NewAuditWorker(
	repo repository.AuditRepository,
	broker messaging.Broker,
	config AuditWorkerConfig,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *AuditWorker {
	if config.Workers <= 0 {
		config.Workers = defaultShards
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaultQueueSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaultWriteTimeout
	}

	shards := make([]*shard, config.Workers)
	for i := range shards {
		shards[i] = newShard(config.QueueSize)
	}

	return &AuditWorker{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger.With().Str("component", "audit-worker").Logger(),
		metrics: metrics,
		now:     time.Now,
		shards:  shards,
	}
}

// Start launches one goroutine per shard.
func (w *AuditWorker) Start() {
	w.logger.Info().Int("shards", len(w.shards)).Int("queue_size", w.config.QueueSize).Msg("Starting audit worker")
	for i, s := range w.shards {
		w.running.Add(1)
		go w.drain(i, s)
	}
}

// Enqueue hands an entry to its shard without blocking. A full shard keeps
// the entry in its backlog, behind everything already queued.
func (w *AuditWorker) Enqueue(entry *model.AuditLog) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		w.logger.Warn().
			Str("entity_type", entry.EntityType).
			Int64("entity_id", entry.EntityID).
			Str("action", string(entry.Action)).
			Msg("Audit worker stopped, dropping entry")
		w.count(entry, "dropped")
		return
	}

	overflowed := w.shards[w.shardFor(entry)].push(entry)
	if w.metrics != nil {
		w.metrics.AuditQueueDepth.Inc()
		if overflowed {
			w.metrics.AuditOverflow.Inc()
		}
	}
}

// Stop closes the queues and waits for pending entries until ctx is done.
func (w *AuditWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for _, s := range w.shards {
		close(s.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info().Msg("Audit worker stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit worker shutdown: %w", ctx.Err())
	}
}

func (w *AuditWorker) drain(i int, s *shard) {
	defer w.running.Done()
	for {
		select {
		case entry, ok := <-s.queue:
			if w.receive(i, s, entry, ok) {
				return
			}
			continue
		default:
		}

		if batch := s.takeBacklog(); len(batch) > 0 {
			w.write(batch)
			continue
		}

		select {
		case entry, ok := <-s.queue:
			if w.receive(i, s, entry, ok) {
				return
			}
		case <-s.wake:
		}
	}
}

// receive writes one queued entry. A closed queue flushes the backlog and
// reports that the shard is finished.
func (w *AuditWorker) receive(i int, s *shard, entry *model.AuditLog, ok bool) bool {
	if !ok {
		w.write(s.takeBacklog())
		w.logger.Debug().Int("shard", i).Msg("Audit shard drained")
		return true
	}
	w.write([]*model.AuditLog{entry})
	return false
}

func (w *AuditWorker) write(entries []*model.AuditLog) {
	for _, entry := range entries {
		if w.metrics != nil {
			w.metrics.AuditQueueDepth.Dec()
		}
		w.persist(entry)
	}
}

func (w *AuditWorker) persist(entry *model.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.WriteTimeout)
	defer cancel()

	entry.ChangedAt = w.now().UTC()
	if err := w.repo.Create(ctx, entry); err != nil {
		w.logger.Error().Err(err).
			Str("entity_type", entry.EntityType).
			Int64("entity_id", entry.EntityID).
			Str("action", string(entry.Action)).
			Msg("Failed to write audit entry")
		w.count(entry, "failure")
		return
	}
	w.count(entry, "success")

	if w.broker == nil || w.config.Channel == "" {
		return
	}
	msg := messaging.Message{Type: "audit." + string(entry.Action), Payload: entry}
	if err := w.broker.Publish(ctx, w.config.Channel, msg); err != nil {
		w.logger.Warn().Err(err).
			Int64("audit_id", entry.ID).
			Str("channel", w.config.Channel).
			Msg("Failed to publish audit entry")
	}
}

func (w *AuditWorker) shardFor(entry *model.AuditLog) int {
	h := fnv.New32a()
	h.Write([]byte(entry.EntityType))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(entry.EntityID, 10)))
	return int(h.Sum32() % uint32(len(w.shards)))
}

func (w *AuditWorker) count(entry *model.AuditLog, status string) {
	if w.metrics == nil {
		return
	}
	w.metrics.AuditRecords.WithLabelValues(entry.EntityType, string(entry.Action), status).Inc()
}
