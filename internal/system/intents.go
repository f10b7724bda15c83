package system

import (
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
)

// EnterRequest asks to place a session's player on an island.
type EnterRequest struct {
	SessionID uint64
	Island    uint64
	Name      string
}

// MoveRequest is a relative step for a session's player.
type MoveRequest struct {
	SessionID uint64
	Seq       uint16
	Step      grid.Vec3
}

// AttackRequest casts an attack for a session's player.
type AttackRequest struct {
	SessionID uint64
	Attack    data.AttackID
	Offset    grid.Vec3
}

// Intents buffers decoded client intents between the input phase and the
// systems that apply them. Everything is cleared once consumed.
type Intents struct {
	Enters      []EnterRequest
	Moves       []MoveRequest
	Attacks     []AttackRequest
	Disconnects []uint64

	lastSeq map[uint64]uint16
}

func NewIntents() *Intents {
	return &Intents{lastSeq: make(map[uint64]uint16, 64)}
}

// PushMove queues a step unless its sequence number is not newer than the
// last accepted one for the session. Sequence numbers wrap at 2^16.
func (in *Intents) PushMove(m MoveRequest) bool {
	if last, ok := in.lastSeq[m.SessionID]; ok && int16(m.Seq-last) <= 0 {
		return false
	}
	in.lastSeq[m.SessionID] = m.Seq
	in.Moves = append(in.Moves, m)
	return true
}

// ForgetSession drops per-session ordering state.
func (in *Intents) ForgetSession(id uint64) {
	delete(in.lastSeq, id)
}

func (in *Intents) takeEnters() []EnterRequest {
	out := in.Enters
	in.Enters = nil
	return out
}

func (in *Intents) takeMoves() []MoveRequest {
	out := in.Moves
	in.Moves = nil
	return out
}

func (in *Intents) takeAttacks() []AttackRequest {
	out := in.Attacks
	in.Attacks = nil
	return out
}

func (in *Intents) takeDisconnects() []uint64 {
	out := in.Disconnects
	in.Disconnects = nil
	return out
}
