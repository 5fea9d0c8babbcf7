package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	publishTimeout   = 2 * time.Second
	publishQueueSize = 256
	minResubscribe   = 100 * time.Millisecond
	maxResubscribe   = 5 * time.Second
)

// Envelope kinds carried over the bridge channel.
const (
	kindUser       = "user"
	kindRestaurant = "restaurant"
	kindDriver     = "driver"
	kindDrivers    = "drivers"
	kindRoom       = "room"
	kindSubscribe  = "subscribe"
)

type envelope struct {
	Kind   string          `json:"kind"`
	Target string          `json:"target,omitempty"`
	Event  string          `json:"event,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// RedisBridge fans notifications out to every instance through a Redis
// pub/sub channel. Each instance runs Run and delivers what it receives to
// its own Router, including messages it published itself.
//
// Emits never block: they enqueue for the publisher goroutine started by Run.
type RedisBridge struct {
	client   redis.UniversalClient
	channel  string
	local    *Router
	outbound chan envelope
	logger   *zap.Logger

	minResubscribe time.Duration
	maxResubscribe time.Duration
}

func NewRedisBridge(client redis.UniversalClient, channel string, local *Router, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{
		client:         client,
		channel:        channel,
		local:          local,
		outbound:       make(chan envelope, publishQueueSize),
		logger:         logger.With(zap.String("channel", channel)),
		minResubscribe: minResubscribe,
		maxResubscribe: maxResubscribe,
	}
}

func (b *RedisBridge) EmitToUser(userID, event string, payload interface{}) {
	b.publish(envelope{Kind: kindUser, Target: userID, Event: event}, payload)
}

func (b *RedisBridge) EmitToRestaurant(restaurantID, event string, payload interface{}) {
	b.publish(envelope{Kind: kindRestaurant, Target: restaurantID, Event: event}, payload)
}

func (b *RedisBridge) EmitToDriver(riderID, event string, payload interface{}) {
	b.publish(envelope{Kind: kindDriver, Target: riderID, Event: event}, payload)
}

func (b *RedisBridge) BroadcastToAllDrivers(event string, payload interface{}) {
	b.publish(envelope{Kind: kindDrivers, Event: event}, payload)
}

func (b *RedisBridge) EmitToOrderRoom(orderID, event string, payload interface{}) {
	b.publish(envelope{Kind: kindRoom, Target: orderID, Event: event}, payload)
}

// SubscribeUserToOrder is bridged too: the customer may be connected to a
// different instance than the one that placed the order.
func (b *RedisBridge) SubscribeUserToOrder(userID, orderID string) {
	b.publish(envelope{Kind: kindSubscribe, Target: userID, Event: orderID}, nil)
}

// publish queues the envelope for the publisher goroutine. A full queue is
// treated like a failed publish and delivered locally.
func (b *RedisBridge) publish(env envelope, payload interface{}) {
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			b.logger.Error("failed to encode payload", zap.String("event", env.Event), zap.Error(err))
			return
		}
		env.Data = data
	}

	select {
	case b.outbound <- env:
	default:
		b.logger.Warn("publish queue full, delivering locally", zap.String("kind", env.Kind), zap.String("event", env.Event))
		b.dispatch(env)
	}
}

// Run starts the publisher and keeps the channel subscription alive until
// ctx is done. It always returns nil once ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	go b.publishLoop(ctx)

	for {
		sub := b.subscribe(ctx)
		if sub == nil {
			return nil
		}
		b.consume(ctx, sub)
		sub.Close()
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn("notification bridge subscription closed, resubscribing")
	}
}

// publishLoop falls back to local delivery when Redis rejects or times out a
// publish so a single instance keeps working.
func (b *RedisBridge) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-b.outbound:
			msg, err := json.Marshal(env)
			if err != nil {
				b.logger.Error("failed to encode envelope", zap.Error(err))
				continue
			}

			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err = b.client.Publish(pubCtx, b.channel, msg).Err()
			cancel()
			if err != nil {
				b.logger.Warn("publish failed, delivering locally", zap.String("kind", env.Kind), zap.Error(err))
				b.dispatch(env)
			}
		}
	}
}

// subscribe retries with exponential backoff until the subscription is
// confirmed. It returns nil when ctx is done first.
func (b *RedisBridge) subscribe(ctx context.Context) *redis.PubSub {
	wait := b.minResubscribe
	for {
		sub := b.client.Subscribe(ctx, b.channel)
		_, err := sub.Receive(ctx)
		if err == nil {
			b.logger.Info("notification bridge subscribed")
			return sub
		}
		sub.Close()
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn("notification bridge subscribe failed", zap.Duration("retryIn", wait), zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		wait *= 2
		if wait > b.maxResubscribe {
			wait = b.maxResubscribe
		}
	}
}

func (b *RedisBridge) consume(ctx context.Context, sub *redis.PubSub) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("discarding malformed envelope", zap.Error(err))
				continue
			}
			b.dispatch(env)
		}
	}
}

func (b *RedisBridge) dispatch(env envelope) {
	var payload interface{}
	if len(env.Data) > 0 {
		payload = env.Data
	}

	switch env.Kind {
	case kindUser:
		b.local.EmitToUser(env.Target, env.Event, payload)
	case kindRestaurant:
		b.local.EmitToRestaurant(env.Target, env.Event, payload)
	case kindDriver:
		b.local.EmitToDriver(env.Target, env.Event, payload)
	case kindDrivers:
		b.local.BroadcastToAllDrivers(env.Event, payload)
	case kindRoom:
		b.local.EmitToOrderRoom(env.Target, env.Event, payload)
	case kindSubscribe:
		b.local.SubscribeUserToOrder(env.Target, env.Event)
	default:
		b.logger.Warn("unknown envelope kind", zap.String("kind", env.Kind))
	}
}
