package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func received(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe("s1")
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Listeners("s1"))

	n.Unsubscribe("s1", ch)
	assert.Equal(t, 0, n.Listeners("s1"))

	n.mu.RLock()
	assert.Empty(t, n.topics, "empty topics are dropped")
	n.mu.RUnlock()

	_, open := <-ch
	assert.False(t, open, "channel is closed")
}

func TestNotifier_Publish(t *testing.T) {
	n := New()

	a1 := n.Subscribe("a")
	a2 := n.Subscribe("a")
	b := n.Subscribe("b")
	defer n.Unsubscribe("a", a1)
	defer n.Unsubscribe("a", a2)
	defer n.Unsubscribe("b", b)

	n.Publish("a")

	assert.True(t, received(a1), "a1 should receive")
	assert.True(t, received(a2), "a2 should receive")
	assert.False(t, received(b), "other topics are not pinged")

	n.Publish("nobody")
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	a := n.Subscribe("a")
	b := n.Subscribe("b")
	defer n.Unsubscribe("a", a)
	defer n.Unsubscribe("b", b)

	n.Broadcast()

	assert.True(t, received(a))
	assert.True(t, received(b))
}

func TestNotifier_PublishNonBlocking(t *testing.T) {
	n := New()

	ch := n.Subscribe("s")
	defer n.Unsubscribe("s", ch)
	ch <- struct{}{}

	done := make(chan struct{})
	go func() {
		n.Publish("s")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Publish blocked on full channel")
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			topic := []string{"x", "y"}[i%2]
			ch := n.Subscribe(topic)
			n.Publish(topic)
			n.Broadcast()
			n.Unsubscribe(topic, ch)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Listeners("x"))
	assert.Equal(t, 0, n.Listeners("y"))
}
