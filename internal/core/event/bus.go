package event

import (
	"reflect"
)

// Queue is a synchronous FIFO event queue. Events emitted in tick N are
// delivered in tick N by Drain; events raised by a handler are appended to the
// tail and delivered by the same Drain call, after everything queued before them.
// Game loop only, no locking.
type Queue struct {
	pending  []envelope
	handlers map[reflect.Type][]func(any)
	draining bool
	emitted  uint64
}

type envelope struct {
	typ reflect.Type
	ev  any
}

func NewQueue() *Queue {
	return &Queue{
		pending:  make([]envelope, 0, 64),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit appends an event to the queue.
func Emit[T any](q *Queue, ev T) {
	q.pending = append(q.pending, envelope{typ: typeOf[T](), ev: ev})
	q.emitted++
}

// Subscribe registers a typed handler for events of type T. Handlers for the
// same type run in subscription order.
func Subscribe[T any](q *Queue, fn func(T)) {
	t := typeOf[T]()
	q.handlers[t] = append(q.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Drain delivers every pending event, including ones emitted during the
// drain, and returns how many were delivered. Re-entrant calls are no-ops:
// the outer Drain already owns the tail of the queue.
func (q *Queue) Drain() int {
	if q.draining {
		return 0
	}
	q.draining = true
	defer func() { q.draining = false }()

	n := 0
	for i := 0; i < len(q.pending); i++ {
		env := q.pending[i]
		q.pending[i] = envelope{}
		for _, h := range q.handlers[env.typ] {
			h(env.ev)
		}
		n++
	}
	q.pending = q.pending[:0]
	return n
}

// Pending returns the number of undelivered events.
func (q *Queue) Pending() int { return len(q.pending) }

// Emitted returns the lifetime count of emitted events.
func (q *Queue) Emitted() uint64 { return q.emitted }

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
