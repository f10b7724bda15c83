package handler

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/isleclash/server/internal/metrics"
	"github.com/isleclash/server/internal/net"
	"github.com/isleclash/server/internal/net/packet"
	"github.com/isleclash/server/internal/system"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// maxNameRunes caps display names after normalization.
const maxNameRunes = 16

// HandleEnterIsland processes C_ENTER_ISLAND: the player asks to travel from
// the overworld to an island. The island is created on arrival if needed.
func HandleEnterIsland(sess *net.Session, r *packet.Reader, deps *system.Deps) {
	m, err := packet.DecodeEnterIsland(r)
	if err != nil {
		rejected(deps, metrics.RejectMalformed)
		deps.Log.Debug("進入島嶼封包格式錯誤", zap.Uint64("session", sess.ID), zap.Error(err))
		return
	}
	name := sanitizeName(m.Name)
	if name == "" {
		name = fmt.Sprintf("player-%d", sess.ID)
	}
	sess.Name = name
	deps.Intents.Enters = append(deps.Intents.Enters, system.EnterRequest{
		SessionID: sess.ID,
		Island:    m.Island,
		Name:      name,
	})
}

// sanitizeName NFC-normalizes a display name, drops control and invalid
// characters, and truncates it.
func sanitizeName(raw string) string {
	raw = norm.NFC.String(strings.TrimSpace(raw))
	var b strings.Builder
	n := 0
	for _, r := range raw {
		if r == utf8.RuneError || unicode.IsControl(r) {
			continue
		}
		if n == maxNameRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
