package net

import (
	"sync"
	"sync/atomic"

	"github.com/isleclash/server/internal/net/packet"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Session is one client as seen by the game loop. The transport pushes
// decoded frames with Deliver and drains OutQueue; game state is touched only
// from the game loop.
type Session struct {
	ID    uint64
	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads intents from here
	OutQueue chan []byte // transport writer reads from here

	Name string

	outBuf [][]byte // buffered messages, flushed by OutputSystem (game loop only)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	limiter *rate.Limiter
	dropped atomic.Uint64

	log *zap.Logger
}

func NewSession(id uint64, inSize, outSize int, limit rate.Limit, burst int, log *zap.Logger) *Session {
	if burst <= 0 {
		burst = 1
	}
	s := &Session{
		ID:       id,
		InQueue:  make(chan []byte, inSize),
		OutQueue: make(chan []byte, outSize),
		closeCh:  make(chan struct{}),
		limiter:  rate.NewLimiter(limit, burst),
		log:      log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateLobby))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Deliver is the transport-side entry point for one client frame. Frames over
// the rate limit or beyond the queue capacity are dropped; movement is
// resequenced by the client, attacks are idempotent under the cooldown gate.
func (s *Session) Deliver(data []byte) bool {
	if s.closed.Load() {
		return false
	}
	if !s.limiter.Allow() {
		s.dropped.Add(1)
		return false
	}
	select {
	case s.InQueue <- data:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Dropped returns how many inbound frames were discarded.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

// Send buffers a message for this tick. Game loop only.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// Pending returns the number of buffered, unflushed messages.
func (s *Session) Pending() int { return len(s.outBuf) }

// FlushOutput drains the output buffer to OutQueue for the transport writer.
// Called by OutputSystem once per tick. If OutQueue is full the session is
// closed (slow consumer).
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("輸出佇列已滿，斷開慢速連線")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close marks the session closed. The game loop notices on its next input
// pass and removes the player.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session closes; the transport selects on it.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}
