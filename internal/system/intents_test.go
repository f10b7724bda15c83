package system

import "testing"

func TestPushMoveDropsStaleSequence(t *testing.T) {
	in := NewIntents()
	steps := []struct {
		seq  uint16
		want bool
	}{
		{5, true},
		{5, false},
		{4, false},
		{6, true},
		{65535, false}, // seven behind 6 modulo 2^16
		{100, true},
	}
	for _, s := range steps {
		if got := in.PushMove(MoveRequest{SessionID: 1, Seq: s.seq}); got != s.want {
			t.Fatalf("PushMove(seq %d) = %v, want %v", s.seq, got, s.want)
		}
	}
	if len(in.Moves) != 3 {
		t.Fatalf("queued %d moves, want 3", len(in.Moves))
	}

	// wrap-around is newer
	in = NewIntents()
	in.PushMove(MoveRequest{SessionID: 2, Seq: 65535})
	if !in.PushMove(MoveRequest{SessionID: 2, Seq: 0}) {
		t.Fatalf("seq 0 after 65535 rejected")
	}

	in.ForgetSession(2)
	if !in.PushMove(MoveRequest{SessionID: 2, Seq: 0}) {
		t.Fatalf("forgotten session still ordered")
	}
}
