package hub

import (
	"sync"
	"testing"
	"time"
)

// addClient registers a bare subscriber with the given send buffer
// and waits until the hub has picked it up.
func addClient(t *testing.T, h *Hub, buffer int) *client {
	t.Helper()

	before := h.ClientCount()
	c := &client{hub: h, send: make(chan Message, buffer)}
	h.register <- c

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() == before {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}
	return c
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHub_SlowClientEvicted(t *testing.T) {
	h := New("test")
	go h.Run()

	// Unbuffered send channel with no reader: the first broadcast
	// cannot be delivered, so the hub must drop this client.
	addClient(t, h, 0)

	h.Broadcast(NewJSONMessage([]byte(`{}`)))
	waitForCount(t, h, 0)
}

func TestHub_HealthyClientKept(t *testing.T) {
	h := New("test")
	go h.Run()

	c := addClient(t, h, 4)

	h.Broadcast(NewBinaryMessage([]byte{0xff, 0xd8}))
	h.Broadcast(NewJSONMessage([]byte(`{"ok":true}`)))

	select {
	case msg := <-c.send:
		if msg.Type != BinaryMessage {
			t.Errorf("first message type = %v, want BinaryMessage", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast never delivered")
	}

	if got := h.ClientCount(); got != 1 {
		t.Errorf("client count = %d, want 1", got)
	}
}

// Eviction mutates the client map while other goroutines poll
// ClientCount; the two must be able to run concurrently. Run with
// -race to verify the locking.
func TestHub_ClientCountDuringEviction(t *testing.T) {
	h := New("test")
	go h.Run()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				h.ClientCount()
			}
		}
	}()

	for i := 0; i < 20; i++ {
		addClient(t, h, 0)
		h.Broadcast(NewJSONMessage([]byte(`{}`)))
		waitForCount(t, h, 0)
	}

	close(stop)
	wg.Wait()
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	h := New("test")
	go h.Run()

	c := addClient(t, h, 1)
	h.unregister <- c
	waitForCount(t, h, 0)

	// Hub closed the send channel on the way out.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("send channel still open after unregister")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel never closed")
	}
}
