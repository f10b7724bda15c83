package system

import (
	"slices"
	"testing"

	"github.com/isleclash/server/internal/core/event"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/persist"
)

func TestArrivalSpawnsAboveThePortal(t *testing.T) {
	h := newHarness(t, grid.EnemySpawn{Pos: grid.V(4, 1, 4), Template: "crab"})
	sess := h.session()
	sess.SetState(packet.StateLobby)
	h.deps.Intents.Enters = append(h.deps.Intents.Enters, EnterRequest{SessionID: sess.ID, Island: testIsland, Name: "ann"})
	h.tick(1)

	p, ok := h.deps.World.PlayerBySession(sess.ID)
	if !ok {
		t.Fatalf("no player after arrival")
	}
	if want := grid.V(-6, 2, -6); p.Pos != want {
		t.Fatalf("spawned at %s, want %s", p.Pos, want)
	}
	if sess.State() != packet.StateOnIsland {
		t.Fatalf("session state = %s", sess.State())
	}
	g := h.grid()
	if g.PlayerCount != 1 || g.EnemyCount != 1 {
		t.Fatalf("counts players=%d enemies=%d", g.PlayerCount, g.EnemyCount)
	}
	ops := opcodes(sess)
	if len(ops) < 2 || ops[0] != packet.S_ISLAND_ENTER || ops[1] != packet.S_SPAWN_OBJECT {
		t.Fatalf("arrival messages = %v", ops)
	}
	if h.ledger.count(persist.KindArrival) != 1 {
		t.Fatalf("arrival not recorded: %+v", h.ledger.entries)
	}
}

func TestArrivalClimbsPastOccupiedCells(t *testing.T) {
	h := newHarness(t)
	h.player(grid.V(-6, 2, -6))
	sess := h.session()
	h.deps.Intents.Enters = append(h.deps.Intents.Enters, EnterRequest{SessionID: sess.ID, Island: testIsland, Name: "bo"})
	h.tick(1)

	p, ok := h.deps.World.PlayerBySession(sess.ID)
	if !ok || p.Pos != grid.V(-6, 3, -6) {
		t.Fatalf("second arrival at %v (ok=%v)", p, ok)
	}
}

func TestWalkingOntoPortalLeavesIsland(t *testing.T) {
	h := newHarness(t)
	sess := h.session()
	sess.SetState(packet.StateLobby)
	h.deps.Intents.Enters = append(h.deps.Intents.Enters, EnterRequest{SessionID: sess.ID, Island: testIsland, Name: "ann"})
	h.tick(1)

	// drop off the arrival cell, then step back onto the portal
	h.deps.Intents.PushMove(MoveRequest{SessionID: sess.ID, Seq: 1, Step: grid.V(1, 0, 0)})
	h.tick(1)
	h.deps.Intents.PushMove(MoveRequest{SessionID: sess.ID, Seq: 2, Step: grid.V(-1, 0, 0)})
	h.tick(1)
	p, ok := h.deps.World.PlayerBySession(sess.ID)
	if !ok || p.Pos != grid.V(-6, 1, -6) {
		t.Fatalf("player not on the portal: %v", p)
	}

	h.tick(1)
	if _, ok := h.deps.World.PlayerBySession(sess.ID); ok {
		t.Fatalf("player still on island")
	}
	if sess.State() != packet.StateLobby {
		t.Fatalf("session state = %s", sess.State())
	}
	if _, ok := h.deps.World.Islands.Get(testIsland); ok {
		t.Fatalf("empty island not torn down")
	}
	if !h.deps.Intents.PushMove(MoveRequest{SessionID: sess.ID, Seq: 0}) {
		t.Fatalf("move sequence not reset after leaving")
	}
	h.tick(1)
	if h.ledger.count(persist.KindDepart) != 1 || h.ledger.count(persist.KindTeardown) != 1 {
		t.Fatalf("ledger = %+v", h.ledger.entries)
	}
}

func TestArrivalInSweepTickKeepsIsland(t *testing.T) {
	h := newHarness(t)
	_, leaving := h.player(grid.V(0, 1, 0))
	arriving := h.session()

	h.deps.Intents.Disconnects = append(h.deps.Intents.Disconnects, leaving.ID)
	h.deps.Intents.Enters = append(h.deps.Intents.Enters, EnterRequest{SessionID: arriving.ID, Island: testIsland, Name: "late"})
	h.tick(1)

	g, ok := h.deps.World.Islands.Get(testIsland)
	if !ok {
		t.Fatalf("island torn down despite an arrival in the same tick")
	}
	if g.PlayerCount != 1 {
		t.Fatalf("player count = %d", g.PlayerCount)
	}
}

func TestDisconnectTearsDownIsland(t *testing.T) {
	h := newHarness(t)
	_, sess := h.player(grid.V(0, 1, 0))
	e := h.enemy(grid.V(4, 1, 4))

	h.deps.Intents.Disconnects = append(h.deps.Intents.Disconnects, sess.ID)
	h.tick(1)

	if _, ok := h.deps.World.Islands.Get(testIsland); ok {
		t.Fatalf("island survived its last player")
	}
	if h.deps.World.Actors.Has(e.ID) || h.deps.World.Enemies.Len() != 0 {
		t.Fatalf("enemies of the torn down island not destroyed")
	}
}

func TestPlayerDeathReturnsToLobby(t *testing.T) {
	h := newHarness(t)
	p, sess := h.player(grid.V(0, 1, 0))
	p.HP = 5
	h.deps.Intents.PushMove(MoveRequest{SessionID: sess.ID, Seq: 9, Step: grid.V(0, 0, 1)})
	h.deps.Intents.takeMoves()

	var left []event.IslandLeft
	event.Subscribe(h.deps.Events, func(ev event.IslandLeft) { left = append(left, ev) })

	event.Emit(h.deps.Events, event.DamageIntent{
		Island: testIsland,
		Target: p.Pos,
		Amount: 20,
		Attack: h.attack("BaseAttack"),
	})
	h.tick(1)

	if p.HP != 0 || !p.Removed {
		t.Fatalf("hp = %d removed = %v", p.HP, p.Removed)
	}
	if len(left) != 1 || left[0].Reason != event.LeaveDeath || left[0].SessionID != sess.ID {
		t.Fatalf("leave events = %+v", left)
	}
	if sess.State() != packet.StateLobby {
		t.Fatalf("session state = %s", sess.State())
	}
	if !slices.Contains(opcodes(sess), packet.S_ISLAND_LEAVE) {
		t.Fatalf("no leave message sent")
	}
	if _, ok := h.deps.World.Islands.Get(testIsland); ok {
		t.Fatalf("island of the dead last player not torn down")
	}
	if !h.deps.Intents.PushMove(MoveRequest{SessionID: sess.ID, Seq: 0}) {
		t.Fatalf("move sequence not reset after death")
	}

	h.tick(1)
	if h.ledger.count(persist.KindKill) != 1 || h.ledger.count(persist.KindDepart) != 1 {
		t.Fatalf("ledger = %+v", h.ledger.entries)
	}
}
