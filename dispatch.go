package volumetric

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Bridge forwards action phrases to the external agent.
type Bridge interface {
	Notify(ctx context.Context, phrase ActionPhrase) error
}

// BridgeFunc adapts a function to the Bridge interface.
type BridgeFunc func(ctx context.Context, phrase ActionPhrase) error

// Notify implements Bridge
func (f BridgeFunc) Notify(ctx context.Context, phrase ActionPhrase) error {
	return f(ctx, phrase)
}

// DispatchOutcome describes what happened to a phrase.
type DispatchOutcome string

const (
	// OutcomeDelivered means the bridge accepted the phrase
	OutcomeDelivered DispatchOutcome = "delivered"

	// OutcomeDropped means no bridge was attached (or the dispatcher was
	// not running) when the phrase was sent; it is not replayed later
	OutcomeDropped DispatchOutcome = "dropped"

	// OutcomeFailed means the bridge returned an error
	OutcomeFailed DispatchOutcome = "failed"
)

// DispatchEvent reports the fate of a single phrase to subscribers.
type DispatchEvent struct {
	Phrase  ActionPhrase
	Outcome DispatchOutcome
	Err     error
	At      time.Time
}

// DispatchHandler is called for every dispatch event.
type DispatchHandler func(event *DispatchEvent)

// DispatchStats counts phrases by outcome.
type DispatchStats struct {
	Accepted  uint64 `json:"accepted"`
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
	Attached  bool   `json:"attached"`
	Running   bool   `json:"running"`
}

// dispatchSubscription is a registered DispatchHandler.
type dispatchSubscription struct {
	handler DispatchHandler
	id      int64
}

// queuedPhrase is a phrase waiting for delivery, with the span that was
// active when it was accepted.
type queuedPhrase struct {
	phrase ActionPhrase
	origin trace.SpanContext
}

// bridgeHolder lets a Bridge interface value live in an atomic.Pointer.
type bridgeHolder struct {
	bridge Bridge
}

// Dispatcher is the single outbound channel from templates to the agent.
//
// Notify is fire-and-forget: it never returns an error to the caller.
// Phrases are delivered by one goroutine in the order Notify accepted them.
// Phrases sent while no bridge is attached are dropped, not buffered.
type Dispatcher struct {
	config *Config

	bridge atomic.Pointer[bridgeHolder]
	queue  chan queuedPhrase

	// lifecycle guards running against concurrent Notify/Stop
	lifecycle sync.RWMutex
	running   bool
	stopping  chan struct{}
	done      chan struct{}

	mu            sync.RWMutex
	subscriptions []*dispatchSubscription
	nextSubID     int64

	accepted  atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewDispatcher creates a dispatcher with no bridge attached.
func NewDispatcher(cfg *Config, opts ...Option) (*Dispatcher, error) {
	c, err := resolveConfig(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		config: c,
		queue:  make(chan queuedPhrase, c.QueueSize),
	}, nil
}

// Attach installs the bridge phrases are forwarded to, replacing any
// previously attached bridge.
func (d *Dispatcher) Attach(b Bridge) {
	if b == nil {
		d.Detach()
		return
	}
	d.bridge.Store(&bridgeHolder{bridge: b})
	d.config.Logger.Info("agent bridge attached")
}

// Detach removes the bridge and returns it. Subsequent phrases are dropped
// until a bridge is attached again.
func (d *Dispatcher) Detach() Bridge {
	old := d.bridge.Swap(nil)
	if old == nil {
		return nil
	}
	d.config.Logger.Info("agent bridge detached")
	return old.bridge
}

// Config returns the dispatcher's resolved configuration
func (d *Dispatcher) Config() *Config {
	return d.config
}

// Attached reports whether a bridge is attached
func (d *Dispatcher) Attached() bool {
	return d.bridge.Load() != nil
}

// Start begins delivering phrases.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if d.running {
		return ErrDispatcherStarted
	}
	d.running = true
	d.stopping = make(chan struct{})
	d.done = make(chan struct{})

	go d.run(d.stopping, d.done)
	return nil
}

// Stop stops accepting phrases, delivers the ones already queued and waits
// for the delivery goroutine to exit or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.lifecycle.Lock()
	if !d.running {
		d.lifecycle.Unlock()
		return ErrDispatcherStopped
	}
	d.running = false
	close(d.stopping)
	done := d.done
	d.lifecycle.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns true if the dispatcher is delivering phrases
func (d *Dispatcher) IsRunning() bool {
	d.lifecycle.RLock()
	defer d.lifecycle.RUnlock()
	return d.running
}

// Notify forwards phrase to the agent. It never blocks on the bridge and
// never reports delivery errors to the caller; if the queue is full it
// waits for room until ctx ends.
func (d *Dispatcher) Notify(ctx context.Context, phrase ActionPhrase) {
	if phrase.ClickedAt.IsZero() {
		phrase.ClickedAt = time.Now().UTC()
	}
	if err := phrase.Validate(d.config.MaxPhraseLength); err != nil {
		d.config.Logger.Warn("rejected action phrase", "error", err, "session_id", phrase.SessionID)
		d.drop(phrase, err)
		return
	}

	if !d.Attached() {
		d.config.Logger.Debug("no agent bridge attached, dropping phrase", "session_id", phrase.SessionID)
		d.drop(phrase, ErrBridgeUnavailable)
		return
	}

	d.lifecycle.RLock()
	defer d.lifecycle.RUnlock()

	if !d.running {
		d.drop(phrase, ErrDispatcherStopped)
		return
	}

	select {
	case d.queue <- queuedPhrase{phrase: phrase, origin: trace.SpanContextFromContext(ctx)}:
		d.accepted.Add(1)
	case <-ctx.Done():
		d.config.Logger.Warn("dispatch queue full, dropping phrase", "session_id", phrase.SessionID)
		d.drop(phrase, ctx.Err())
	}
}

// Subscribe registers a handler for dispatch events.
// Returns a function to unsubscribe.
func (d *Dispatcher) Subscribe(handler DispatchHandler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	sub := &dispatchSubscription{handler: handler, id: d.nextSubID}
	d.nextSubID++
	d.subscriptions = append(d.subscriptions, sub)

	return func() {
		d.unsubscribe(sub.id)
	}
}

// unsubscribe removes a subscription.
func (d *Dispatcher) unsubscribe(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, sub := range d.subscriptions {
		if sub.id == id {
			d.subscriptions = append(d.subscriptions[:i], d.subscriptions[i+1:]...)
			break
		}
	}
}

// Stats returns a snapshot of the dispatch counters.
func (d *Dispatcher) Stats() DispatchStats {
	return DispatchStats{
		Accepted:  d.accepted.Load(),
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Failed:    d.failed.Load(),
		Attached:  d.Attached(),
		Running:   d.IsRunning(),
	}
}

// run is the delivery loop.
func (d *Dispatcher) run(stopping <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case q := <-d.queue:
			d.deliver(q)
		case <-stopping:
			// Deliver what was accepted before Stop.
			for {
				select {
				case q := <-d.queue:
					d.deliver(q)
				default:
					return
				}
			}
		}
	}
}

// deliver hands one phrase to the currently attached bridge.
func (d *Dispatcher) deliver(q queuedPhrase) {
	phrase := q.phrase
	holder := d.bridge.Load()
	if holder == nil {
		d.drop(phrase, ErrBridgeUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.config.DeliveryTimeout)
	defer cancel()

	// Delivery runs detached from the request that clicked, so the request's
	// span is linked rather than used as parent.
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindProducer)}
	if q.origin.IsValid() {
		opts = append(opts, trace.WithLinks(trace.Link{SpanContext: q.origin}))
	}
	ctx, span := tracer.Start(ctx, "volumetric.Dispatcher.deliver", opts...)
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", phrase.SessionID),
		attribute.String("template.key", phrase.TemplateKey),
	)

	if err := d.safeNotify(ctx, holder.bridge, phrase); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.failed.Add(1)
		d.config.Logger.Error("agent bridge delivery failed",
			"error", err,
			"session_id", phrase.SessionID,
			"template", phrase.TemplateKey,
		)
		d.publish(&DispatchEvent{Phrase: phrase, Outcome: OutcomeFailed, Err: err, At: time.Now()})
		return
	}

	d.delivered.Add(1)
	d.config.Logger.Debug("action phrase delivered", "session_id", phrase.SessionID, "template", phrase.TemplateKey)
	d.publish(&DispatchEvent{Phrase: phrase, Outcome: OutcomeDelivered, At: time.Now()})
}

// safeNotify calls the bridge, converting a panic into an error so one bad
// bridge call cannot kill the delivery goroutine.
func (d *Dispatcher) safeNotify(ctx context.Context, b Bridge, phrase ActionPhrase) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = NewTemplateError("Notify", phrase.TemplateKey, ErrBridgeUnavailable).
				WithContext("panic", p)
		}
	}()
	return b.Notify(ctx, phrase)
}

// drop records a phrase that will never reach the agent.
func (d *Dispatcher) drop(phrase ActionPhrase, reason error) {
	d.dropped.Add(1)
	d.publish(&DispatchEvent{Phrase: phrase, Outcome: OutcomeDropped, Err: reason, At: time.Now()})
}

// publish sends an event to all subscribed handlers.
func (d *Dispatcher) publish(event *DispatchEvent) {
	d.mu.RLock()
	subs := make([]*dispatchSubscription, len(d.subscriptions))
	copy(subs, d.subscriptions)
	d.mu.RUnlock()

	for _, sub := range subs {
		// Call handlers synchronously to maintain ordering
		sub.handler(event)
	}
}
