package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
)

const defaultPublishTimeout = 10 * time.Second

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	ResumePublish(orderingKey string)
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type gcpPublisher struct {
	pub *gcppubsub.Publisher
}

func (g gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return g.pub.Publish(ctx, msg)
}

func (g gcpPublisher) ResumePublish(orderingKey string) {
	g.pub.ResumePublish(orderingKey)
}

// Forwarder relays bus events to a Pub/Sub topic. Failures are logged and
// never reach the cart operation that produced the event. When ordered, the
// session id is the ordering key.
type Forwarder struct {
	pub     publisher
	logg    *logger.Logger
	timeout time.Duration
	ordered bool
}

// NewForwarder wraps a Pub/Sub publisher, inheriting its ordering setting.
func NewForwarder(pub *gcppubsub.Publisher, logg *logger.Logger) (*Forwarder, error) {
	if pub == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return newForwarder(gcpPublisher{pub: pub}, logg, pub.EnableMessageOrdering)
}

func newForwarder(pub publisher, logg *logger.Logger, ordered bool) (*Forwarder, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Forwarder{pub: pub, logg: logg, timeout: defaultPublishTimeout, ordered: ordered}, nil
}

// Attach subscribes the forwarder to every event on bus.
func (f *Forwarder) Attach(bus *Bus) func() {
	return bus.SubscribeAll(f.Handle)
}

// Handle publishes one event.
func (f *Forwarder) Handle(ctx context.Context, evt Event) {
	env, err := NewEnvelope(evt)
	if err != nil {
		f.logg.Error(ctx, "encode cart event envelope", err)
		return
	}
	body, err := json.Marshal(env)
	if err != nil {
		f.logg.Error(ctx, "marshal cart event envelope", err)
		return
	}

	msg := &gcppubsub.Message{Data: body, Attributes: env.Attributes()}
	if f.ordered {
		msg.OrderingKey = evt.SessionID
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	result := f.pub.Publish(pubCtx, msg)
	go func() {
		defer cancel()
		if _, err := result.Get(pubCtx); err != nil {
			f.logg.Warn(f.logg.WithField(ctx, "event_type", evt.Type.String()), "cart event publish failed: "+err.Error())
			// a failed ordered publish pauses its key until resumed
			if msg.OrderingKey != "" {
				f.pub.ResumePublish(msg.OrderingKey)
			}
		}
	}()
}
