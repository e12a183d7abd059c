package events

import (
	"testing"
	"time"
)

// TestPublishReachesAllSubscribers tests fan-out to multiple subscribers
func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	v := int32(42)
	b.Publish(Event{Op: OpPush, Value: &v, Depth: 1, Capacity: 4, Time: time.Now()})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Op != OpPush || e.Value == nil || *e.Value != 42 {
				t.Errorf("Subscriber %d got unexpected event: %+v", i, e)
			}
		case <-time.After(time.Second):
			t.Fatalf("Subscriber %d did not receive the event", i)
		}
	}
}

// TestCancelStopsDelivery tests that a cancelled subscriber's channel is
// closed and no longer receives events
func TestCancelStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch, cancel := b.Subscribe()
	cancel()
	cancel() // second cancel is a no-op

	b.Publish(Event{Op: OpResize, Depth: 0, Capacity: 8})

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected closed channel, got an event")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel was not closed")
	}
}

// TestSlowSubscriberDoesNotBlockPublish tests that publishing never stalls
// on a full subscriber buffer
func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			b.Publish(Event{Op: OpPop, Depth: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

// TestSubscribeAfterClose tests that a closed broadcaster hands out closed
// channels
func TestSubscribeAfterClose(t *testing.T) {
	b := NewBroadcaster()
	b.Close()
	b.Close() // idempotent

	ch, cancel := b.Subscribe()
	defer cancel()

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel from closed broadcaster")
	}
}
