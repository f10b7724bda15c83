package system

import (
	"fmt"

	"github.com/isleclash/server/internal/core/event"
	"github.com/isleclash/server/internal/grid"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/world"
	"go.uber.org/zap"
)

// DamagePipeline resolves damage intents against the grid and reacts to the
// events they raise. All handlers run inside EventSystem's drain.
type DamagePipeline struct {
	deps *Deps
}

// NewDamagePipeline creates the pipeline and subscribes its handlers.
func NewDamagePipeline(deps *Deps) *DamagePipeline {
	p := &DamagePipeline{deps: deps}
	event.Subscribe(deps.Events, p.Resolve)
	event.Subscribe(deps.Events, p.onNegated)
	event.Subscribe(deps.Events, p.onRemoved)
	event.Subscribe(deps.Events, p.onLeft)
	return p
}

// Resolve applies one damage intent. A counter stance on the victim eats the
// hit and is consumed on the spot, so a second hit in the same drain lands.
func (p *DamagePipeline) Resolve(in event.DamageIntent) {
	d := p.deps
	g, ok := d.World.Islands.Get(in.Island)
	if !ok {
		return
	}
	victimID, ok := g.Target(in.Target)
	if !ok {
		return
	}
	victim, ok := d.World.Actor(victimID)
	if !ok {
		d.Invariant(&staleOccupantError{island: in.Island, at: in.Target})
		return
	}

	if negID, neg, ok := d.World.Negator(victimID); ok {
		d.World.ConsumeNegator(negID)
		event.Emit(d.Events, event.NegatedDamage{
			Attacker: in.Attacker,
			Victim:   victimID,
			Negator:  negID,
			Island:   in.Island,
			Position: in.Target,
			Attack:   in.Attack,
			Counter:  neg.Attack,
		})
		return
	}

	remaining := victim.Damage(in.Amount)
	d.Broadcast(in.Island, packet.DamageMsg{
		Entity:    uint64(victimID),
		Amount:    in.Amount,
		Pos:       in.Target,
		Remaining: remaining,
	}.Encode())
	if d.Metrics != nil {
		d.Metrics.AddDamage(d.attackName(in.Attack), in.Amount)
	}
	event.Emit(d.Events, event.DamageDealt{
		Attacker:  in.Attacker,
		Victim:    victimID,
		Island:    in.Island,
		Position:  in.Target,
		Amount:    in.Amount,
		Remaining: remaining,
		Attack:    in.Attack,
	})
	if remaining > 0 {
		return
	}

	first, err := d.World.Remove(victim)
	d.Invariant(err)
	if !first {
		return
	}
	event.Emit(d.Events, event.OccupantRemoved{
		Entity:    victimID,
		Kind:      victim.Kind,
		Island:    in.Island,
		Position:  victim.Pos,
		Killer:    in.Attacker,
		SessionID: victim.SessionID,
	})
}

// onNegated stuns the attacker and cancels whatever it can interrupt.
func (p *DamagePipeline) onNegated(ev event.NegatedDamage) {
	d := p.deps
	attacker, ok := d.World.Actor(ev.Attacker)
	if !ok {
		return
	}
	dur := d.Config.Simulation.StunDuration
	if spec := d.Attacks.Get(ev.Counter); spec != nil && spec.Stun > 0 {
		dur = spec.Stun
	}
	d.World.ApplyStun(attacker.ID, ev.Victim, world.OnceTimer(dur))
	interruptOwner(d.World, attacker.ID)
	attacker.State = world.Stunned

	event.Emit(d.Events, event.StunApplied{Target: attacker.ID, Source: ev.Victim, Island: ev.Island})
	d.Broadcast(attacker.Island, packet.StunMsg{
		Entity:     uint64(attacker.ID),
		DurationMs: uint32(dur.Milliseconds()),
	}.Encode())
	if d.Metrics != nil {
		d.Metrics.Negated()
	}
	d.Log.Debug("反擊成功",
		zap.Uint64("attacker", uint64(attacker.ID)),
		zap.Uint64("victim", uint64(ev.Victim)),
		zap.Duration("stun", dur),
	)
}

func (p *DamagePipeline) onRemoved(ev event.OccupantRemoved) {
	d := p.deps
	d.Broadcast(ev.Island, removeMsg(ev.Entity))
	if d.Metrics != nil {
		d.Metrics.Kill(ev.Kind.String())
	}
	if ev.Kind == grid.TilePlayer {
		event.Emit(d.Events, event.IslandLeft{
			Player:    ev.Entity,
			Island:    ev.Island,
			SessionID: ev.SessionID,
			Reason:    event.LeaveDeath,
		})
	}
}

// onLeft sends the player back to the lobby. The removal broadcast already
// went out with the departure.
func (p *DamagePipeline) onLeft(ev event.IslandLeft) {
	d := p.deps
	// a fresh island visit may restart move sequence numbers
	d.Intents.ForgetSession(ev.SessionID)
	sess := d.Sessions.Get(ev.SessionID)
	if sess == nil {
		return
	}
	if sess.State() == packet.StateOnIsland {
		sess.SetState(packet.StateLobby)
	}
	sess.Send(packet.IslandLeaveMsg{Island: ev.Island, Reason: uint8(ev.Reason)}.Encode())
	d.Log.Info("玩家離開島嶼",
		zap.Uint64("session", ev.SessionID),
		zap.Uint64("island", ev.Island),
		zap.Stringer("reason", ev.Reason),
	)
}

type staleOccupantError struct {
	island uint64
	at     grid.Vec3
}

func (e *staleOccupantError) Error() string {
	return fmt.Sprintf("island %d: tile %s names an actor that is gone", e.island, e.at)
}
