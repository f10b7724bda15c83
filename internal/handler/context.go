package handler

import (
	"github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/system"
)

// RegisterAll registers all packet handlers into the registry. Handlers only
// decode and queue intents; the simulation systems apply them.
func RegisterAll(reg *packet.Registry, deps *system.Deps) {
	// Lobby: not on an island yet
	reg.Register(packet.C_ENTER_ISLAND,
		[]packet.SessionState{packet.StateLobby},
		func(sess any, r *packet.Reader) {
			HandleEnterIsland(sess.(*net.Session), r, deps)
		},
	)

	// On an island
	islandStates := []packet.SessionState{packet.StateOnIsland}

	reg.Register(packet.C_MOVE, islandStates,
		func(sess any, r *packet.Reader) {
			HandleMove(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_ATTACK, islandStates,
		func(sess any, r *packet.Reader) {
			HandleAttack(sess.(*net.Session), r, deps)
		},
	)
}

func rejected(deps *system.Deps, reason string) {
	if deps.Metrics != nil {
		deps.Metrics.Rejected(reason)
	}
}
