package httpserver

import (
	"testing"
	"time"
)

func TestBroadcasterRegisterUnregister(t *testing.T) {
	b := NewBroadcaster()

	c1 := b.Register("game1")
	c2 := b.Register("game1")
	c3 := b.Register("game2")

	if b.ClientCount("game1") != 2 {
		t.Fatalf("expected 2 clients for game1, got %d", b.ClientCount("game1"))
	}
	if b.ClientCount("game2") != 1 {
		t.Fatalf("expected 1 client for game2, got %d", b.ClientCount("game2"))
	}

	b.Unregister(c1)
	b.Unregister(c1)
	b.Unregister(c2)
	b.Unregister(c3)
	if b.ClientCount("game1") != 0 || b.ClientCount("game2") != 0 {
		t.Fatal("expected 0 clients after full unregister")
	}
}

func TestBroadcastIsScopedToGame(t *testing.T) {
	b := NewBroadcaster()
	c1 := b.Register("game1")
	c2 := b.Register("game2")
	defer b.Unregister(c1)
	defer b.Unregister(c2)

	b.Broadcast("game1", "word_found", `{"word":"CAT"}`)

	select {
	case msg := <-c1.ch:
		if msg.event != "word_found" || msg.data != `{"word":"CAT"}` {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("c1 did not receive message")
	}

	select {
	case <-c2.ch:
		t.Fatal("game2 client should not receive game1 events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastSkipsFullClients(t *testing.T) {
	b := NewBroadcaster()
	c := b.Register("g")
	defer b.Unregister(c)

	for i := 0; i < sseChannelBuffer+5; i++ {
		b.Broadcast("g", "", "x")
	}
	if len(c.ch) != sseChannelBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", sseChannelBuffer, len(c.ch))
	}
}
