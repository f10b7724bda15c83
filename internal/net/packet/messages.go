package packet

import (
	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
)

// ProtocolVersion is sent in S_ISLAND_ENTER. Bump it on any layout change to
// an existing message; adding a new opcode does not need a bump.
const ProtocolVersion = 1

// Client → server opcodes.
const (
	C_ENTER_ISLAND byte = 1
	C_MOVE         byte = 2
	C_ATTACK       byte = 3
)

// Server → client opcodes.
const (
	S_ISLAND_ENTER  byte = 64
	S_POSITION      byte = 65
	S_DAMAGE        byte = 66
	S_ATTACK_VISUAL byte = 67
	S_ISLAND_LEAVE  byte = 68
	S_REMOVE_OBJECT byte = 69
	S_STUN          byte = 70
	S_SPAWN_OBJECT  byte = 71
)

// EntityKind tags replicated objects.
type EntityKind uint8

const (
	EntityPlayer EntityKind = iota + 1
	EntityEnemy
	EntityProjectile
)

// Field is a stable replicated-field id.
type Field uint8

const (
	FieldPosition    Field = 1
	FieldFacing      Field = 2
	FieldHealth      Field = 3
	FieldMaxHealth   Field = 4
	FieldActionState Field = 5
	FieldName        Field = 6
	FieldDirection   Field = 7
)

// ReplicatedFields lists, per entity kind, the fields written by S_SPAWN_OBJECT
// in this order. Clients skip ids they do not know.
var ReplicatedFields = map[EntityKind][]Field{
	EntityPlayer:     {FieldPosition, FieldFacing, FieldHealth, FieldMaxHealth, FieldActionState, FieldName},
	EntityEnemy:      {FieldPosition, FieldFacing, FieldHealth, FieldMaxHealth, FieldActionState, FieldName},
	EntityProjectile: {FieldPosition, FieldDirection},
}

// --- client intents ---

// EnterIsland asks to be placed on an island.
type EnterIsland struct {
	Island uint64
	Name   string
}

func DecodeEnterIsland(r *Reader) (EnterIsland, error) {
	m := EnterIsland{Island: r.ReadQ(), Name: r.ReadS()}
	return m, shortErr(r)
}

func (m EnterIsland) Encode() []byte {
	w := NewWriterWithOpcode(C_ENTER_ISLAND)
	w.WriteQ(m.Island)
	w.WriteS(m.Name)
	return w.Bytes()
}

// MoveIntent is a relative one-cell step. Seq orders steps on the movement
// channel; stale sequence numbers are dropped.
type MoveIntent struct {
	Seq  uint16
	Step grid.Vec3
}

func DecodeMove(r *Reader) (MoveIntent, error) {
	m := MoveIntent{Seq: r.ReadH()}
	m.Step = readSmallVec(r)
	return m, shortErr(r)
}

func (m MoveIntent) Encode() []byte {
	w := NewWriterWithOpcode(C_MOVE)
	w.WriteH(m.Seq)
	writeSmallVec(w, m.Step)
	return w.Bytes()
}

// AttackIntent casts an attack toward an offset.
type AttackIntent struct {
	Attack data.AttackID
	Offset grid.Vec3
}

func DecodeAttack(r *Reader) (AttackIntent, error) {
	m := AttackIntent{Attack: data.AttackID(r.ReadQ())}
	m.Offset = readSmallVec(r)
	return m, shortErr(r)
}

func (m AttackIntent) Encode() []byte {
	w := NewWriterWithOpcode(C_ATTACK)
	w.WriteQ(uint64(m.Attack))
	writeSmallVec(w, m.Offset)
	return w.Bytes()
}

// --- server messages ---

// IslandEnterMsg confirms an arrival.
type IslandEnterMsg struct {
	Island        uint64
	Self          uint64
	Position      grid.Vec3
	LeavePosition grid.Vec3
}

func (m IslandEnterMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_ISLAND_ENTER)
	w.WriteC(ProtocolVersion)
	w.WriteQ(m.Island)
	w.WriteQ(m.Self)
	writeVec(w, m.Position)
	writeVec(w, m.LeavePosition)
	return w.Bytes()
}

// PositionMsg is the authoritative position of an entity.
type PositionMsg struct {
	Entity uint64
	Pos    grid.Vec3
	Facing grid.Vec3
	State  uint8
}

func (m PositionMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_POSITION)
	w.WriteQ(m.Entity)
	writeVec(w, m.Pos)
	writeSmallVec(w, m.Facing)
	w.WriteC(m.State)
	return w.Bytes()
}

// DamageMsg is the damage notification {amount, position, remaining health}.
type DamageMsg struct {
	Entity    uint64
	Amount    uint32
	Pos       grid.Vec3
	Remaining uint32
}

func (m DamageMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_DAMAGE)
	w.WriteQ(m.Entity)
	w.WriteDU(m.Amount)
	writeVec(w, m.Pos)
	w.WriteDU(m.Remaining)
	return w.Bytes()
}

func DecodeDamage(r *Reader) (DamageMsg, error) {
	m := DamageMsg{Entity: r.ReadQ(), Amount: uint32(r.ReadD())}
	m.Pos = readVec(r)
	m.Remaining = uint32(r.ReadD())
	return m, shortErr(r)
}

// AttackVisualMsg tells clients to play an attack.
type AttackVisualMsg struct {
	Entity uint64
	Attack data.AttackID
	Offset grid.Vec3
}

func (m AttackVisualMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_ATTACK_VISUAL)
	w.WriteQ(m.Entity)
	w.WriteQ(uint64(m.Attack))
	writeSmallVec(w, m.Offset)
	return w.Bytes()
}

// IslandLeaveMsg sends the player back to the overworld.
type IslandLeaveMsg struct {
	Island uint64
	Reason uint8
}

func (m IslandLeaveMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_ISLAND_LEAVE)
	w.WriteQ(m.Island)
	w.WriteC(m.Reason)
	return w.Bytes()
}

// RemoveObjectMsg drops an entity from client views.
type RemoveObjectMsg struct {
	Entity uint64
}

func (m RemoveObjectMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_REMOVE_OBJECT)
	w.WriteQ(m.Entity)
	return w.Bytes()
}

// StunMsg announces a stun and its length.
type StunMsg struct {
	Entity     uint64
	DurationMs uint32
}

func (m StunMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_STUN)
	w.WriteQ(m.Entity)
	w.WriteDU(m.DurationMs)
	return w.Bytes()
}

// SpawnObjectMsg introduces an entity with its replicated fields.
type SpawnObjectMsg struct {
	Entity    uint64
	Kind      EntityKind
	Pos       grid.Vec3
	Facing    grid.Vec3
	HP        uint32
	MaxHP     uint32
	State     uint8
	Name      string
	Direction grid.Vec3
}

func (m SpawnObjectMsg) Encode() []byte {
	w := NewWriterWithOpcode(S_SPAWN_OBJECT)
	w.WriteQ(m.Entity)
	w.WriteC(byte(m.Kind))
	fields := ReplicatedFields[m.Kind]
	w.WriteC(byte(len(fields)))
	for _, f := range fields {
		w.WriteC(byte(f))
		switch f {
		case FieldPosition:
			writeVec(w, m.Pos)
		case FieldFacing:
			writeSmallVec(w, m.Facing)
		case FieldHealth:
			w.WriteDU(m.HP)
		case FieldMaxHealth:
			w.WriteDU(m.MaxHP)
		case FieldActionState:
			w.WriteC(m.State)
		case FieldName:
			w.WriteS(m.Name)
		case FieldDirection:
			writeSmallVec(w, m.Direction)
		}
	}
	return w.Bytes()
}

// DecodeSpawnObject reads a spawn message back; used by tests and tooling.
func DecodeSpawnObject(r *Reader) (SpawnObjectMsg, error) {
	m := SpawnObjectMsg{Entity: r.ReadQ(), Kind: EntityKind(r.ReadC())}
	n := int(r.ReadC())
	for i := 0; i < n && !r.Short(); i++ {
		switch Field(r.ReadC()) {
		case FieldPosition:
			m.Pos = readVec(r)
		case FieldFacing:
			m.Facing = readSmallVec(r)
		case FieldHealth:
			m.HP = uint32(r.ReadD())
		case FieldMaxHealth:
			m.MaxHP = uint32(r.ReadD())
		case FieldActionState:
			m.State = r.ReadC()
		case FieldName:
			m.Name = r.ReadS()
		case FieldDirection:
			m.Direction = readSmallVec(r)
		}
	}
	return m, shortErr(r)
}

// positions are full int32 per axis; steps and offsets fit a signed byte.

func writeVec(w *Writer, v grid.Vec3) {
	w.WriteD(v.X)
	w.WriteD(v.Y)
	w.WriteD(v.Z)
}

func readVec(r *Reader) grid.Vec3 {
	return grid.Vec3{X: r.ReadD(), Y: r.ReadD(), Z: r.ReadD()}
}

func writeSmallVec(w *Writer, v grid.Vec3) {
	w.WriteC(byte(int8(v.X)))
	w.WriteC(byte(int8(v.Y)))
	w.WriteC(byte(int8(v.Z)))
}

func readSmallVec(r *Reader) grid.Vec3 {
	return grid.Vec3{X: int32(int8(r.ReadC())), Y: int32(int8(r.ReadC())), Z: int32(int8(r.ReadC()))}
}

func shortErr(r *Reader) error {
	if r.Short() {
		return ErrShortPacket
	}
	return nil
}
