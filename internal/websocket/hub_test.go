package websocket

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func receiveOrTimeout(t *testing.T, sub *Subscriber) []byte {
	t.Helper()
	select {
	case payload := <-sub.C():
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestPublishWithoutSubscribersIsDropped(t *testing.T) {
	hub := NewHub(nil)

	// Must not panic or block
	hub.Publish("nobody@test.com", []byte("hello"))
	assert.Equal(t, 0, hub.SubscriberCount("nobody@test.com"))
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("a@test.com")
	defer sub.Close()

	hub.Publish("a@test.com", []byte("hello"))
	assert.Equal(t, []byte("hello"), receiveOrTimeout(t, sub))
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub(nil)
	first := hub.Subscribe("a@test.com")
	second := hub.Subscribe("a@test.com")
	defer first.Close()
	defer second.Close()

	assert.Equal(t, 2, hub.SubscriberCount("a@test.com"))

	hub.Publish("a@test.com", []byte("hi"))
	assert.Equal(t, []byte("hi"), receiveOrTimeout(t, first))
	assert.Equal(t, []byte("hi"), receiveOrTimeout(t, second))
}

func TestPublishDoesNotCrossRecipients(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe("a@test.com")
	b := hub.Subscribe("b@test.com")
	defer a.Close()
	defer b.Close()

	hub.Publish("a@test.com", []byte("for a"))

	assert.Equal(t, []byte("for a"), receiveOrTimeout(t, a))
	select {
	case payload := <-b.C():
		t.Fatalf("b must not receive a's payload, got %q", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	hub := NewHub(nil)

	hub.Publish("a@test.com", []byte("before subscribe"))

	sub := hub.Subscribe("a@test.com")
	defer sub.Close()

	select {
	case payload := <-sub.C():
		t.Fatalf("late subscriber must not see earlier payload, got %q", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishNeverBlocksOnFullBuffer(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("a@test.com")
	defer sub.Close()

	// Overfill the buffer without draining; the extra publishes must
	// return instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			hub.Publish("a@test.com", []byte(fmt.Sprintf("payload %d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}

func TestCloseDetachesSubscriber(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("a@test.com")

	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount("a@test.com"))

	// The channel is closed after Close
	_, open := <-sub.C()
	assert.False(t, open)

	// Idempotent
	sub.Close()
}

func TestPublishAfterCloseGoesNowhere(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("a@test.com")
	sub.Close()

	// Must not panic on the closed channel
	hub.Publish("a@test.com", []byte("late"))
}
