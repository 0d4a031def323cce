package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// NotificationKind identifies the remote endpoint a job is meant for
type NotificationKind string

const (
	NotificationSecurityAction NotificationKind = "security-action"
	NotificationEmergencyCall  NotificationKind = "emergency-call"
)

// maxFailureLog bounds the failure ring
const maxFailureLog = 50

// NotificationJob is one best-effort side-channel message
type NotificationJob struct {
	Kind      NotificationKind `json:"kind"`
	Key       string           `json:"key"` // property or call id
	Payload   interface{}      `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationSink delivers a job to one remote channel
type NotificationSink interface {
	Name() string
	Deliver(ctx context.Context, job NotificationJob) error
}

// NotificationFailure is an entry of the failure log
type NotificationFailure struct {
	Kind  NotificationKind `json:"kind"`
	Key   string           `json:"key"`
	Sink  string           `json:"sink"`
	Error string           `json:"error"`
	At    time.Time        `json:"at"`
}

// NotificationStats summarises queue activity
type NotificationStats struct {
	Queued    int                   `json:"queued"`
	Delivered int64                 `json:"delivered"`
	Failed    int64                 `json:"failed"`
	Dropped   int64                 `json:"dropped"`
	Recent    []NotificationFailure `json:"recent_failures"`
}

// InterfaceNotifyService defines the notification queue
type InterfaceNotifyService interface {
	Enqueue(job NotificationJob) error
	Stats() NotificationStats
	Close(ctx context.Context) error
}

// NotifyService delivers jobs on a single worker. Failures are logged and
// recorded, never retried and never reported back to the producer.
type NotifyService struct {
	sinks   []NotificationSink
	timeout time.Duration
	logger  *zap.Logger

	queue chan NotificationJob
	done  chan struct{}

	mu        sync.Mutex
	closed    bool
	delivered int64
	failed    int64
	dropped   int64
	failures  []NotificationFailure
}

// NewNotifyService starts the worker; timeout bounds each sink delivery
func NewNotifyService(sinks []NotificationSink, queueSize int, timeout time.Duration, logger *zap.Logger) *NotifyService {
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &NotifyService{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan NotificationJob, queueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// 1 Enqueue never blocks; a full queue drops the job
func (s *NotifyService) Enqueue(job NotificationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrQueueClosed
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	select {
	case s.queue <- job:
	default:
		s.dropped++
		s.recordFailureLocked(job, "queue", "queue full")
		s.logger.Warn("notification dropped", zap.String("kind", string(job.Kind)), zap.String("key", job.Key))
	}
	return nil
}

func (s *NotifyService) run() {
	defer close(s.done)

	for job := range s.queue {
		s.deliver(job)
	}
}

func (s *NotifyService) deliver(job NotificationJob) {
	for _, sink := range s.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := sink.Deliver(ctx, job)
		cancel()

		s.mu.Lock()
		if err != nil {
			s.failed++
			s.recordFailureLocked(job, sink.Name(), err.Error())
		} else {
			s.delivered++
		}
		s.mu.Unlock()

		if err != nil {
			s.logger.Warn("notification failed",
				zap.String("kind", string(job.Kind)),
				zap.String("key", job.Key),
				zap.String("sink", sink.Name()),
				zap.Error(err),
			)
		}
	}
}

func (s *NotifyService) recordFailureLocked(job NotificationJob, sink, msg string) {
	s.failures = append(s.failures, NotificationFailure{
		Kind:  job.Kind,
		Key:   job.Key,
		Sink:  sink,
		Error: msg,
		At:    time.Now(),
	})
	if len(s.failures) > maxFailureLog {
		s.failures = s.failures[len(s.failures)-maxFailureLog:]
	}
}

// 2 Stats returns a snapshot of the counters and recent failures
func (s *NotifyService) Stats() NotificationStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := make([]NotificationFailure, len(s.failures))
	copy(recent, s.failures)

	return NotificationStats{
		Queued:    len(s.queue),
		Delivered: s.delivered,
		Failed:    s.failed,
		Dropped:   s.dropped,
		Recent:    recent,
	}
}

// 3 Close stops accepting jobs and waits for the queue to drain
func (s *NotifyService) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
