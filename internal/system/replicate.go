package system

import (
	"github.com/isleclash/server/internal/core/ecs"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/world"
)

func entityKind(a *world.Actor) packet.EntityKind {
	if a.IsPlayer() {
		return packet.EntityPlayer
	}
	return packet.EntityEnemy
}

func spawnActorMsg(a *world.Actor) []byte {
	return packet.SpawnObjectMsg{
		Entity: uint64(a.ID),
		Kind:   entityKind(a),
		Pos:    a.Pos,
		Facing: a.Facing,
		HP:     a.HP,
		MaxHP:  a.MaxHP,
		State:  uint8(a.State),
		Name:   a.Name,
	}.Encode()
}

func spawnProjectileMsg(id ecs.EntityID, p *world.Projectile) []byte {
	return packet.SpawnObjectMsg{
		Entity:    uint64(id),
		Kind:      packet.EntityProjectile,
		Pos:       p.Cell(),
		Direction: p.Direction,
	}.Encode()
}

func positionMsg(a *world.Actor) []byte {
	return packet.PositionMsg{
		Entity: uint64(a.ID),
		Pos:    a.Pos,
		Facing: a.Facing,
		State:  uint8(a.State),
	}.Encode()
}

func removeMsg(id ecs.EntityID) []byte {
	return packet.RemoveObjectMsg{Entity: uint64(id)}.Encode()
}
