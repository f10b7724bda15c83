package event

import (
	"reflect"
	"testing"
)

type ping struct{ n int }
type pong struct{ n int }

func TestDrainPreservesFIFOAcrossTypes(t *testing.T) {
	q := NewQueue()
	var got []string
	Subscribe(q, func(e ping) { got = append(got, "ping") })
	Subscribe(q, func(e pong) { got = append(got, "pong") })

	Emit(q, ping{1})
	Emit(q, pong{1})
	Emit(q, ping{2})

	if n := q.Drain(); n != 3 {
		t.Fatalf("drained %d, want 3", n)
	}
	want := []string{"ping", "pong", "ping"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestEventsRaisedByHandlersRunInSameDrain(t *testing.T) {
	q := NewQueue()
	var got []int
	Subscribe(q, func(e ping) {
		got = append(got, e.n)
		if e.n < 3 {
			Emit(q, ping{e.n + 1})
		}
	})
	Emit(q, ping{1})
	Emit(q, ping{10})

	q.Drain()
	want := []int{1, 10, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if q.Pending() != 0 {
		t.Fatalf("pending = %d after drain", q.Pending())
	}
}

func TestEventWithoutSubscriberIsDropped(t *testing.T) {
	q := NewQueue()
	Emit(q, pong{})
	if n := q.Drain(); n != 1 {
		t.Fatalf("drained %d, want 1", n)
	}
	if q.Emitted() != 1 {
		t.Fatalf("emitted = %d", q.Emitted())
	}
}
