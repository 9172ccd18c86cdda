package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/api/metrics"
	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

const (
	defaultQueueSize       = 256
	defaultShutdownTimeout = 5 * time.Second
)

var (
	// ErrWriterClosed is returned by Append after Shutdown has started.
	ErrWriterClosed = errors.New("audit writer is shut down")
	// ErrDrainTimeout is returned by Shutdown when pending writes were dropped.
	ErrDrainTimeout = errors.New("audit writer did not drain in time")
)

// AuditWriter decouples audit persistence from callers: Append puts the
// record on a bounded queue and a single goroutine writes records to the
// store in the order they were queued.
type AuditWriter struct {
	store ports.AuditStore
	log   zerolog.Logger

	mu        sync.RWMutex
	closed    bool
	appenders sync.WaitGroup
	queue     chan domain.AuditRecord

	closing chan struct{} // closed when Shutdown starts
	idle    chan struct{} // closed once no Append is in progress after closing
	stop    chan struct{} // closed to abandon the queue
	done    chan struct{}
	once    sync.Once
}

// NewAuditWriter creates a writer with a queue of queueSize records and
// starts its consumer. If queueSize <= 0, defaultQueueSize is used.
func NewAuditWriter(store ports.AuditStore, queueSize int, log zerolog.Logger) *AuditWriter {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	w := &AuditWriter{
		store:   store,
		log:     log.With().Str("component", "audit_writer").Logger(),
		queue:   make(chan domain.AuditRecord, queueSize),
		closing: make(chan struct{}),
		idle:    make(chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Append queues record for writing and returns without waiting for it to be
// persisted. While the queue is full it waits for room, and gives up with
// ErrWriterClosed if Shutdown starts in the meantime.
func (w *AuditWriter) Append(record domain.AuditRecord) error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrWriterClosed
	}
	w.appenders.Add(1)
	w.mu.RUnlock()
	defer w.appenders.Done()

	select {
	case w.queue <- record:
	default:
		w.log.Warn().Int("capacity", cap(w.queue)).Msg("audit queue full, waiting for the writer")
		select {
		case w.queue <- record:
		case <-w.closing:
			w.log.Warn().Str("entity", record.EntityName).Msg("audit record refused, writer is shutting down")
			return ErrWriterClosed
		}
	}
	metrics.AuditQueueDepth.Set(float64(len(w.queue)))
	return nil
}

// Shutdown stops accepting records and waits up to timeout for the queue to
// drain. Callers blocked on a full queue are released with ErrWriterClosed.
// If the writer is still busy when the timeout expires it is stopped
// without waiting for the write in flight, and the records still queued are
// lost; ErrDrainTimeout reports that.
// Shutdown is meant to be called once, at teardown; later calls return nil.
func (w *AuditWriter) Shutdown(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	var err error
	w.once.Do(func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.closing)
		go func() {
			w.appenders.Wait()
			close(w.idle)
		}()

		w.log.Info().Int("pending", len(w.queue)).Msg("shutting down audit writer")

		select {
		case <-w.done:
			w.log.Info().Msg("audit writer drained")
		case <-timer.C:
			close(w.stop)
			lost := len(w.queue)
			w.log.Warn().Int("lost", lost).Dur("timeout", timeout).Msg("audit writer did not terminate in time, pending records dropped")
			err = ErrDrainTimeout
		}
	})
	return err
}

func (w *AuditWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case record := <-w.queue:
			w.write(record)
		case <-w.idle:
			w.drain()
			return
		}
	}
}

// drain writes what is left once no more records can arrive.
func (w *AuditWriter) drain() {
	for {
		select {
		case <-w.stop:
			return
		case record := <-w.queue:
			w.write(record)
		default:
			return
		}
	}
}

func (w *AuditWriter) write(record domain.AuditRecord) {
	metrics.AuditQueueDepth.Set(float64(len(w.queue)))
	if err := w.store.Append(record); err != nil {
		metrics.AuditWritesTotal.WithLabelValues("error").Inc()
		w.log.Error().Err(err).Str("entity", record.EntityName).Msg("failed to write audit record")
		return
	}
	metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
}
