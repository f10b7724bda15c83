package handler

import (
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/system"
	"go.uber.org/zap"
)

// HandleMove processes C_MOVE: a sequenced one-cell step relative to the
// server-tracked position. Steps older than the last accepted one are dropped.
func HandleMove(sess *net.Session, r *packet.Reader, deps *system.Deps) {
	m, err := packet.DecodeMove(r)
	if err != nil {
		rejected(deps, metrics.RejectMalformed)
		deps.Log.Debug("移動封包格式錯誤", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	if !deps.Intents.PushMove(system.MoveRequest{SessionID: sess.ID, Seq: m.Seq, Step: m.Step}) {
		rejected(deps, metrics.RejectStale)
	}
}
