package system

import (
	"time"

	"github.com/isleclash/server/internal/core/event"
	coresys "github.com/isleclash/server/internal/core/system"
	"github.com/isleclash/server/internal/persist"
)

// LedgerSink accepts batches of audit rows without blocking.
// Implemented by persist.AsyncLedger.
type LedgerSink interface {
	Submit(entries []persist.LedgerEntry) bool
}

// LedgerSystem turns arrivals, departures, kills and teardowns into audit
// rows and hands them to the ledger once per tick. Phase 5 (Persist).
type LedgerSystem struct {
	deps    *Deps
	sink    LedgerSink
	pending []persist.LedgerEntry
}

// NewLedgerSystem subscribes to the recorded events. sink may be nil, in
// which case nothing is recorded.
func NewLedgerSystem(deps *Deps, sink LedgerSink) *LedgerSystem {
	s := &LedgerSystem{deps: deps, sink: sink}
	if sink == nil {
		return s
	}
	q := deps.Events
	event.Subscribe(q, func(ev event.IslandEntered) {
		s.record(persist.LedgerEntry{
			Kind:   persist.KindArrival,
			Island: ev.Island,
			Entity: uint64(ev.Player),
			X:      ev.Position.X, Y: ev.Position.Y, Z: ev.Position.Z,
		})
	})
	event.Subscribe(q, func(ev event.IslandLeft) {
		s.record(persist.LedgerEntry{
			Kind:   persist.KindDepart,
			Island: ev.Island,
			Entity: uint64(ev.Player),
			Detail: ev.Reason.String(),
		})
	})
	event.Subscribe(q, func(ev event.OccupantRemoved) {
		s.record(persist.LedgerEntry{
			Kind:   persist.KindKill,
			Island: ev.Island,
			Entity: uint64(ev.Entity),
			Other:  uint64(ev.Killer),
			X:      ev.Position.X, Y: ev.Position.Y, Z: ev.Position.Z,
			Detail: ev.Kind.String(),
		})
	})
	event.Subscribe(q, func(ev event.IslandTornDown) {
		s.record(persist.LedgerEntry{
			Kind:   persist.KindTeardown,
			Island: ev.Island,
		})
	})
	return s
}

func (s *LedgerSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *LedgerSystem) record(e persist.LedgerEntry) {
	e.Tick = s.deps.Tick
	s.pending = append(s.pending, e)
}

func (s *LedgerSystem) Update(_ time.Duration) {
	if len(s.pending) == 0 {
		return
	}
	// a full queue drops the batch; AsyncLedger counts it
	s.sink.Submit(s.pending)
	s.pending = nil
}
