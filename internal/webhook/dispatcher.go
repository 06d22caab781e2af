package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/snapshot"
	"github.com/TimurManjosov/gojungse/internal/telemetry"
)

const (
	// queueSize is the buffer size for the event queue
	queueSize = 100

	// maxResponseBodySize limits how much of a failed response is logged
	maxResponseBodySize = 1024

	defaultTimeout = 5 * time.Second

	// DefaultShutdownGrace is how long Close lets queued deliveries run
	// before cancelling them.
	DefaultShutdownGrace = 5 * time.Second
)

// Dispatcher posts table change events to a fixed set of endpoints. Events
// are queued and delivered in order by a single worker.
type Dispatcher struct {
	endpoints []Endpoint
	client    *http.Client
	queue     chan Event
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	started   bool
	log       zerolog.Logger

	// ctx is cancelled by Close once the shutdown grace has passed, which
	// aborts in-flight requests and backoff waits.
	ctx    context.Context
	cancel context.CancelFunc

	// ShutdownGrace bounds how long Close waits for pending deliveries.
	ShutdownGrace time.Duration

	// retryInterval is the first backoff delay between attempts.
	retryInterval time.Duration
}

func NewDispatcher(endpoints []Endpoint, logger zerolog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		ctx:           ctx,
		cancel:        cancel,
		ShutdownGrace: DefaultShutdownGrace,
		endpoints:     endpoints,
		client:        &http.Client{},
		queue:         make(chan Event, queueSize),
		done:          make(chan struct{}),
		log:           logger.With().Str("component", "webhook").Logger(),
		retryInterval: time.Second,
	}
}

// Start begins processing events from the queue
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.worker()
}

// Close stops accepting events and waits up to ShutdownGrace for queued
// deliveries to finish. Deliveries still pending after that are abandoned.
// It is safe to call more than once.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	defer d.cancel()
	if !started {
		return nil
	}

	grace := time.NewTimer(d.ShutdownGrace)
	defer grace.Stop()
	select {
	case <-d.done:
	case <-grace.C:
		d.log.Warn().Dur("grace", d.ShutdownGrace).Msg("abandoning pending deliveries")
		d.cancel()
		<-d.done
	}
	return nil
}

// Dispatch queues ev without blocking. When the queue is full the event is
// dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- ev:
	default:
		telemetry.WebhookDeliveries.WithLabelValues("dropped").Inc()
		d.log.Error().Str("etag", ev.Table.ETag).Int("queue_size", queueSize).Msg("queue full, dropping event")
	}
}

// Follow subscribes to h and dispatches an event for every table published
// to it until ctx is done. The subscription is in place when Follow returns;
// the returned channel is closed once it has been released.
func (d *Dispatcher) Follow(ctx context.Context, h *snapshot.Holder) <-chan struct{} {
	ch, unsub := h.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer unsub()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				d.Dispatch(NewEvent(h.Load()))
			}
		}
	}()
	return done
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		payload, err := json.Marshal(ev)
		if err != nil {
			d.log.Error().Err(err).Msg("marshal event")
			continue
		}
		for _, ep := range d.endpoints {
			if d.ctx.Err() != nil {
				telemetry.WebhookDeliveries.WithLabelValues("dropped").Inc()
				continue
			}
			d.deliver(d.ctx, ep, ev.Type, payload)
		}
	}
}

// deliver posts payload to ep, retrying failures with exponential backoff.
// 4xx responses other than 429 are not retried.
func (d *Dispatcher) deliver(ctx context.Context, ep Endpoint, eventType string, payload []byte) {
	deliveryID := uuid.NewString()
	log := d.log.With().Str("url", ep.URL).Str("delivery", deliveryID).Logger()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = d.retryInterval

	attempt := 0
	status, err := backoff.Retry(ctx, func() (int, error) {
		attempt++
		return d.post(ctx, ep, eventType, deliveryID, payload)
	},
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(ep.MaxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("delivery failed")
		}),
	)
	if err != nil {
		telemetry.WebhookDeliveries.WithLabelValues("failed").Inc()
		log.Error().Err(err).Int("attempts", attempt).Msg("delivery failed permanently")
		return
	}
	telemetry.WebhookDeliveries.WithLabelValues("ok").Inc()
	log.Debug().Int("status", status).Int("attempts", attempt).Msg("delivered")
}

func (d *Dispatcher) post(ctx context.Context, ep Endpoint, eventType, deliveryID string, payload []byte) (int, error) {
	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, Sign(payload, ep.Secret))
	req.Header.Set(HeaderEvent, eventType)
	req.Header.Set(HeaderDelivery, deliveryID)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	err = fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return resp.StatusCode, backoff.Permanent(err)
	}
	return resp.StatusCode, err
}
