package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_DeliversToSubscriber(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(ChangedEvent, "a.png")

	event := receive(t, ch)
	require.Equal(t, "a.png", event.Payload)
	require.Equal(t, ChangedEvent, event.Type)
	require.False(t, event.Timestamp.IsZero())
}

func TestBroker_FansOutToAllSubscribers(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx := context.Background()
	subs := []<-chan Event[int]{
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
	}
	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(OutputEvent, 7)

	for i, ch := range subs {
		event := receive(t, ch)
		require.Equal(t, 7, event.Payload, "subscriber %d", i)
	}
}

func TestBroker_CancelRemovesSubscriber(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 },
		time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		broker.Publish(OutputEvent, 1)
		broker.Publish(OutputEvent, 2)
		broker.Publish(OutputEvent, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "publish blocked on a full subscriber")
	}

	require.Equal(t, 1, receive(t, ch).Payload)
	require.Equal(t, int64(2), broker.Dropped())
}

func TestBroker_CloseClosesSubscribers(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close() // second close is a no-op

	_, ok := <-ch
	require.False(t, ok)

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing to a closed broker yields a closed channel")

	broker.Publish(LoggedEvent, "ignored")
}

func TestBroker_SubscribeFuncFiltersBeforeBuffering(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	odd := broker.SubscribeFunc(ctx, func(e Event[int]) bool { return e.Payload%2 == 1 })
	broker.Publish(OutputEvent, 2)
	broker.Publish(OutputEvent, 4)
	broker.Publish(OutputEvent, 5)

	require.Equal(t, 5, receive(t, odd).Payload)
	require.Zero(t, broker.Dropped(), "rejected events are not counted as drops")
}

func TestBroker_SubscribeFuncByType(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := broker.SubscribeFunc(ctx, func(e Event[string]) bool { return e.Type == ChangedEvent })
	all := broker.Subscribe(ctx)

	broker.Publish(LoggedEvent, "a.png")
	broker.Publish(ChangedEvent, "b.png")

	require.Equal(t, LoggedEvent, receive(t, all).Type)
	require.Equal(t, ChangedEvent, receive(t, all).Type)
	require.Equal(t, "b.png", receive(t, changed).Payload)
}
