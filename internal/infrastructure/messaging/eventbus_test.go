package messaging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestInMemoryEventBus_PublishToSubscriber(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var received []shared.Event
	err := bus.Subscribe(shared.EventPointsAwarded, func(event shared.Event) error {
		received = append(received, event)
		return nil
	})
	assert.NoError(t, err)

	event := shared.NewPointsAwardedEvent(1, 100, 100, "challenge")
	assert.NoError(t, bus.Publish(event))

	assert.Len(t, received, 1)
	assert.Equal(t, shared.EventPointsAwarded, received[0].EventType())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var pointsEvents, streakEvents int
	_ = bus.Subscribe(shared.EventPointsAwarded, func(event shared.Event) error {
		pointsEvents++
		return nil
	})
	_ = bus.Subscribe(shared.EventStreakUpdated, func(event shared.Event) error {
		streakEvents++
		return nil
	})

	_ = bus.Publish(shared.NewPointsAwardedEvent(1, 5, 5, "streak"))
	_ = bus.Publish(shared.NewPointsAwardedEvent(1, 5, 10, "streak"))
	_ = bus.Publish(shared.NewStreakUpdatedEvent(1, 2, 2, false))

	assert.Equal(t, 2, pointsEvents)
	assert.Equal(t, 1, streakEvents)
}

func TestInMemoryEventBus_SubscribeAll(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var all int
	_ = bus.SubscribeAll(func(event shared.Event) error {
		all++
		return nil
	})

	_ = bus.Publish(shared.NewPointsAwardedEvent(1, 5, 5, "streak"))
	_ = bus.Publish(shared.NewBadgeEarnedEvent(1, 3, "Meta Cumplida"))

	assert.Equal(t, 2, all)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var second bool
	_ = bus.Subscribe(shared.EventPointsAwarded, func(event shared.Event) error {
		return errors.New("boom")
	})
	_ = bus.Subscribe(shared.EventPointsAwarded, func(event shared.Event) error {
		second = true
		return nil
	})

	assert.NoError(t, bus.Publish(shared.NewPointsAwardedEvent(1, 5, 5, "streak")))
	assert.True(t, second)
}

func TestInMemoryEventBus_AsyncDelivery(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(cfg)

	var mu sync.Mutex
	count := 0
	var done sync.WaitGroup
	done.Add(10)
	_ = bus.Subscribe(shared.EventPointsAwarded, func(event shared.Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		done.Done()
		return nil
	})

	for i := 0; i < 10; i++ {
		_ = bus.Publish(shared.NewPointsAwardedEvent(1, 1, i+1, "streak"))
	}

	done.Wait()
	assert.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, count)
}

func TestInMemoryEventBus_PublishAfterClose(t *testing.T) {
	bus := newSyncBus()
	assert.NoError(t, bus.Close())

	err := bus.Publish(shared.NewPointsAwardedEvent(1, 5, 5, "streak"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventPointsAwarded, func(event shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestInMemoryEventBus_NilHandlerRejected(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventPointsAwarded, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}
