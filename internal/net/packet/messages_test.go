package packet

import (
	"testing"

	"github.com/isleclash/server/internal/grid"
)

func TestSpawnObjectWritesReplicatedFieldsOnly(t *testing.T) {
	in := SpawnObjectMsg{
		Entity:    42,
		Kind:      EntityProjectile,
		Pos:       grid.Vec3{X: -3, Y: 1, Z: 7},
		Direction: grid.Vec3{X: 1},
		HP:        99, // not replicated for projectiles
		Name:      "dagger",
	}
	out, err := DecodeSpawnObject(NewReader(in.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	if out.Pos != in.Pos || out.Direction != in.Direction {
		t.Fatalf("decoded %+v", out)
	}
	if out.HP != 0 || out.Name != "" {
		t.Fatalf("non-replicated fields leaked: %+v", out)
	}
}

func TestDamageMessageLayout(t *testing.T) {
	b := DamageMsg{Entity: 7, Amount: 20, Pos: grid.Vec3{X: 1, Y: 1, Z: -2}, Remaining: 0}.Encode()
	if b[0] != S_DAMAGE {
		t.Fatalf("opcode = %d", b[0])
	}
	if len(b) != 1+8+4+12+4 {
		t.Fatalf("len = %d", len(b))
	}
	m, err := DecodeDamage(NewReader(b))
	if err != nil || m.Amount != 20 || m.Pos.Z != -2 {
		t.Fatalf("decoded %+v, %v", m, err)
	}
}

func TestEnterIslandName(t *testing.T) {
	m, err := DecodeEnterIsland(NewReader(EnterIsland{Island: 9, Name: "島民"}.Encode()))
	if err != nil || m.Island != 9 || m.Name != "島民" {
		t.Fatalf("decoded %+v, %v", m, err)
	}
}
