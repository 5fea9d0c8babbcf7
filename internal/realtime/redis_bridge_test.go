package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisBridge_DispatchRoutesLocally(t *testing.T) {
	router := NewRouter(zap.NewNop())
	customer, driver, restaurant := newFakeConn("c"), newFakeConn("d"), newFakeConn("r")
	router.Register(ClassCustomer, "u-1", customer)
	router.Register(ClassDriver, "rider-1", driver)
	router.Register(ClassRestaurant, "rest-1", restaurant)

	b := NewRedisBridge(nil, "test", router, zap.NewNop())

	b.dispatch(envelope{Kind: kindSubscribe, Target: "u-1", Event: "order-1"})
	b.dispatch(envelope{Kind: kindUser, Target: "u-1", Event: "order_status_update", Data: json.RawMessage(`{"id":"order-1"}`)})
	b.dispatch(envelope{Kind: kindDrivers, Event: "new_order_available"})
	b.dispatch(envelope{Kind: kindRestaurant, Target: "rest-1", Event: "new_order"})
	b.dispatch(envelope{Kind: kindRoom, Target: "order-1", Event: "driver_assigned"})
	b.dispatch(envelope{Kind: "bogus"})

	assert.Equal(t, []string{"order_status_update", "driver_assigned"}, customer.events())
	assert.Equal(t, []string{"new_order_available"}, driver.events())
	assert.Equal(t, []string{"new_order"}, restaurant.events())
}

func TestRedisBridge_PublishFailureDeliversLocally(t *testing.T) {
	router := NewRouter(zap.NewNop())
	conn := newFakeConn("c")
	router.Register(ClassCustomer, "u-1", conn)

	// nothing listens on this port
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewRedisBridge(client, "test", router, zap.NewNop())
	go b.Run(ctx)

	b.EmitToUser("u-1", "order_status_update", map[string]string{"id": "order-1"})

	assert.Eventually(t, func() bool { return len(conn.events()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

// stalledServer accepts connections and never answers.
func stalledServer(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var accepted []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			accepted = append(accepted, c)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range accepted {
			c.Close()
		}
	})
	return ln.Addr().String()
}

func TestRedisBridge_EmitDoesNotWaitOnStalledServer(t *testing.T) {
	router := NewRouter(zap.NewNop())
	conn := newFakeConn("c")
	router.Register(ClassCustomer, "u-1", conn)

	client := redis.NewClient(&redis.Options{Addr: stalledServer(t)})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := NewRedisBridge(client, "test", router, zap.NewNop())
	b.outbound = make(chan envelope, 1)
	go b.Run(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			b.EmitToUser("u-1", "order_status_update", map[string]string{"id": "order-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a stalled redis server")
	}

	// one envelope may be queued and one held by the stuck publisher; the
	// rest overflow to local delivery
	assert.GreaterOrEqual(t, len(conn.events()), 3)
}

func TestRedisBridge_SubscribesOnceRedisComesUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	router := NewRouter(zap.NewNop())
	conn := newFakeConn("c")
	router.Register(ClassCustomer, "u-1", conn)

	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewRedisBridge(client, "test", router, zap.NewNop())
	b.minResubscribe = 20 * time.Millisecond
	b.maxResubscribe = 50 * time.Millisecond

	stopped := make(chan error, 1)
	go func() { stopped <- b.Run(ctx) }()

	// still retrying while redis is down
	time.Sleep(150 * time.Millisecond)
	select {
	case err := <-stopped:
		t.Fatalf("Run returned while redis was down: %v", err)
	default:
	}

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.StartAddr(addr))
	defer mr.Close()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test")["test"] == 1
	}, 3*time.Second, 20*time.Millisecond)

	b.EmitToUser("u-1", "order_status_update", map[string]string{"id": "order-1"})

	assert.Eventually(t, func() bool { return len(conn.events()) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRedisBridge_CrossInstanceDelivery(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	channel := fmt.Sprintf("foodhub:test:%d", time.Now().UnixNano())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisherRouter := NewRouter(zap.NewNop())
	subscriberRouter := NewRouter(zap.NewNop())
	conn := newFakeConn("c")
	subscriberRouter.Register(ClassDriver, "rider-1", conn)

	publisher := NewRedisBridge(client, channel, publisherRouter, zap.NewNop())
	subscriber := NewRedisBridge(client, channel, subscriberRouter, zap.NewNop())
	go publisher.Run(ctx)
	go subscriber.Run(ctx)

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 2
	}, 2*time.Second, 20*time.Millisecond)

	publisher.BroadcastToAllDrivers("new_order_available", map[string]string{"id": "order-1"})

	assert.Eventually(t, func() bool { return len(conn.events()) == 1 }, 2*time.Second, 20*time.Millisecond)
}
