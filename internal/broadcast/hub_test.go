package broadcast

import "testing"

func TestSendDeliversToAllSubscribers(t *testing.T) {
	h := NewHub[string](4)
	a := h.Subscribe()
	b := h.Subscribe()

	h.Send("hello")

	select {
	case v := <-a.Recv():
		if v != "hello" {
			t.Fatalf("a got %q, want hello", v)
		}
	default:
		t.Fatal("a got nothing")
	}
	select {
	case v := <-b.Recv():
		if v != "hello" {
			t.Fatalf("b got %q, want hello", v)
		}
	default:
		t.Fatal("b got nothing")
	}
}

func TestSendDropsOnFullBuffer(t *testing.T) {
	h := NewHub[int](1)
	s := h.Subscribe()
	h.Send(1)
	h.Send(2) // dropped, buffer already full

	if v := <-s.Recv(); v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
	select {
	case v := <-s.Recv():
		t.Fatalf("unexpected second value %d", v)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub[int](1)
	s := h.Subscribe()
	s.Unsubscribe()

	if _, ok := <-s.Recv(); ok {
		t.Fatal("expected closed channel")
	}
	if h.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d, want 0", h.Subscribers())
	}
}

func TestLateSubscriberMissesPriorSends(t *testing.T) {
	h := NewHub[int](1)
	h.Send(1)
	s := h.Subscribe()

	select {
	case v := <-s.Recv():
		t.Fatalf("unexpected value %d delivered to late subscriber", v)
	default:
	}
}
