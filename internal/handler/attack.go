package handler

import (
	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/system"
	"go.uber.org/zap"
)

// HandleAttack processes C_ATTACK: attack id plus cast direction. Validation
// happens when CombatSystem casts it.
func HandleAttack(sess *net.Session, r *packet.Reader, deps *system.Deps) {
	m, err := packet.DecodeAttack(r)
	if err != nil {
		rejected(deps, metrics.RejectMalformed)
		deps.Log.Debug("攻擊封包格式錯誤", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	deps.Intents.Attacks = append(deps.Intents.Attacks, system.AttackRequest{
		SessionID: sess.ID,
		Attack:    m.Attack,
		Offset:    m.Offset,
	})
}
