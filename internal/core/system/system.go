package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain session queues, decode intents
	PhasePreUpdate               // 1: advance timers, interrupts
	PhaseUpdate                  // 2: arrivals, movement, AI, casting
	PhasePostUpdate              // 3: projectiles, damage dispatch, action states
	PhaseOutput                  // 4: flush outboxes, gauges
	PhasePersist                 // 5: ledger hand-off
	PhaseCleanup                 // 6: island sweep, destroy queued entities
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
