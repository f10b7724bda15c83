package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionState is where a session is in the island lifecycle.
type SessionState int

const (
	StateLobby         SessionState = iota // connected, not on an island
	StateOnIsland                          // bound to a live player actor
	StateDisconnecting                     // transport gone, draining
)

func (s SessionState) String() string {
	switch s {
	case StateLobby:
		return "Lobby"
	case StateOnIsland:
		return "OnIsland"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

var (
	ErrEmptyPacket  = errors.New("empty packet")
	ErrShortPacket  = errors.New("truncated packet")
	ErrStateBlocked = errors.New("opcode not allowed in session state")
)

// HandlerFunc is the callback signature for packet handlers.
// The session pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, r *Reader)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps opcodes to handlers with state-based access control.
type Registry struct {
	handlers map[byte]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given session states.
func (reg *Registry) Register(opcode byte, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[opcode] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Len returns the number of registered opcodes.
func (reg *Registry) Len() int { return len(reg.handlers) }

// Dispatch finds the handler for the opcode in data[0], validates the session
// state, and calls the handler. Unknown opcodes are ignored.
func (reg *Registry) Dispatch(sess any, state SessionState, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPacket
	}
	opcode := data[0]

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("未知操作碼", zap.Uint8("opcode", opcode), zap.String("state", state.String()))
		return nil
	}

	if !entry.allowedStates[state] {
		return fmt.Errorf("opcode %d in %s: %w", opcode, state, ErrStateBlocked)
	}

	r := NewReader(data)
	if err := reg.safeCall(entry.fn, sess, r, opcode); err != nil {
		return err
	}
	if r.Short() {
		return fmt.Errorf("opcode %d: %w", opcode, ErrShortPacket)
	}
	return nil
}

// safeCall executes a handler with panic recovery so a single bad packet
// cannot take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	fn(sess, r)
	return nil
}
