package packet

import (
	"errors"
	"testing"

	"github.com/isleclash/server/internal/data"
	"github.com/isleclash/server/internal/grid"
	"go.uber.org/zap/zaptest"
)

func TestDispatchStateGating(t *testing.T) {
	reg := NewRegistry(zaptest.NewLogger(t))
	var got []AttackIntent
	reg.Register(C_ATTACK, []SessionState{StateOnIsland}, func(_ any, r *Reader) {
		if m, err := DecodeAttack(r); err == nil {
			got = append(got, m)
		}
	})

	msg := AttackIntent{Attack: data.DeriveAttackID("BaseAttack"), Offset: grid.Vec3{X: -1}}.Encode()
	if err := reg.Dispatch(nil, StateLobby, msg); !errors.Is(err, ErrStateBlocked) {
		t.Fatalf("lobby dispatch err = %v", err)
	}
	if err := reg.Dispatch(nil, StateOnIsland, msg); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Offset != (grid.Vec3{X: -1}) || got[0].Attack != data.DeriveAttackID("BaseAttack") {
		t.Fatalf("decoded %+v", got)
	}
}

func TestDispatchUnknownAndEmpty(t *testing.T) {
	reg := NewRegistry(zaptest.NewLogger(t))
	if err := reg.Dispatch(nil, StateLobby, []byte{250}); err != nil {
		t.Fatalf("unknown opcode err = %v", err)
	}
	if err := reg.Dispatch(nil, StateLobby, nil); !errors.Is(err, ErrEmptyPacket) {
		t.Fatalf("empty err = %v", err)
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	reg := NewRegistry(zaptest.NewLogger(t))
	reg.Register(C_MOVE, []SessionState{StateOnIsland}, func(_ any, _ *Reader) {
		panic("boom")
	})
	if err := reg.Dispatch(nil, StateOnIsland, MoveIntent{Seq: 1, Step: grid.Vec3{X: 1}}.Encode()); err == nil {
		t.Fatalf("panic not reported")
	}
}

func TestTruncatedIntentIsReported(t *testing.T) {
	reg := NewRegistry(zaptest.NewLogger(t))
	called := false
	reg.Register(C_MOVE, []SessionState{StateOnIsland}, func(_ any, r *Reader) {
		if _, err := DecodeMove(r); err == nil {
			called = true
		}
	})
	full := MoveIntent{Seq: 3, Step: grid.Vec3{Z: -1}}.Encode()
	err := reg.Dispatch(nil, StateOnIsland, full[:3])
	if !errors.Is(err, ErrShortPacket) || called {
		t.Fatalf("err = %v, handler acted = %v", err, called)
	}
}
