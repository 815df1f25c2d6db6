package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/api/metrics"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	defaultTimeout = 10 * time.Second
)

// Dispatcher delivers notifications on a fixed set of workers, sharded by
// recipient so one customer's messages go out in order. Dispatch never
// blocks: when a worker's buffer is full the notification is dropped.
type Dispatcher struct {
	workers  []chan ports.Notification
	notifier ports.Notifier
	timeout  time.Duration
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d := &Dispatcher{
		workers:  make([]chan ports.Notification, numWorkers),
		notifier: notifier,
		timeout:  timeout,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Dispatch queues n on the worker responsible for its recipient.
func (d *Dispatcher) Dispatch(n ports.Notification) {
	id := d.shardIndex(n.Recipient())
	select {
	case d.workers[id] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id)).Inc()
	default:
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "dropped").Inc()
		d.log.Warn().Str("kind", string(n.Kind)).Int("worker_id", id).Msg("notification queue full, dropping")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Dec()
			d.deliver(ctx, id, n)
		}
	}
}

// deliver runs one notification. Failures are logged and counted only.
func (d *Dispatcher) deliver(ctx context.Context, workerID int, n ports.Notification) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	var err error
	switch n.Kind {
	case ports.NotifyOrderReceipt:
		err = d.notifier.SendOrderReceipt(ctx, n.Order)
	case ports.NotifyRequestConfirmation:
		err = d.notifier.SendRequestConfirmation(ctx, n.Request)
	default:
		d.log.Error().Str("kind", string(n.Kind)).Msg("unknown notification kind")
		return
	}
	metrics.NotificationDuration.WithLabelValues(string(n.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
		d.log.Error().Err(err).
			Str("kind", string(n.Kind)).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "sent").Inc()
	d.log.Debug().Str("kind", string(n.Kind)).Int("worker_id", workerID).Msg("notification sent")
}
