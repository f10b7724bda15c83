package api

import "sync/atomic"

// IslandSnapshot is the read-only view of one island.
type IslandSnapshot struct {
	ID            uint64   `json:"id"`
	Players       int      `json:"players"`
	Enemies       int      `json:"enemies"`
	Chunks        int      `json:"chunks"`
	LeavePosition [3]int32 `json:"leave_position"`
}

// Snapshot is an immutable copy of the world published once per tick.
type Snapshot struct {
	Tick        uint64           `json:"tick"`
	Sessions    int              `json:"sessions"`
	Projectiles int              `json:"projectiles"`
	Islands     []IslandSnapshot `json:"islands"`
}

// SnapshotStore hands snapshots from the game loop to HTTP handlers without
// locking: the loop publishes a fresh value, readers load the latest one.
type SnapshotStore struct {
	v atomic.Pointer[Snapshot]
}

func (s *SnapshotStore) Publish(snap *Snapshot) { s.v.Store(snap) }

// Load returns the latest snapshot, or an empty one before the first tick.
func (s *SnapshotStore) Load() *Snapshot {
	if snap := s.v.Load(); snap != nil {
		return snap
	}
	return &Snapshot{}
}
