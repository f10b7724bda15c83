package ecs

import "slices"

// World is the top-level ECS container. It owns the entity pool, the component
// registry, parent/child links, and a deferred destruction queue flushed by
// CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	parent       map[EntityID]EntityID
	children     map[EntityID][]EntityID
	destroyQueue []EntityID
	queued       map[EntityID]bool
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		parent:       make(map[EntityID]EntityID, 64),
		children:     make(map[EntityID][]EntityID, 64),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]bool, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

// CreateChild allocates an entity linked under parent. Destroying the parent
// destroys the child too.
func (w *World) CreateChild(parent EntityID) EntityID {
	id := w.pool.Create()
	w.parent[id] = parent
	w.children[parent] = append(w.children[parent], id)
	return id
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Parent returns the entity id is attached under, if any.
func (w *World) Parent(id EntityID) (EntityID, bool) {
	p, ok := w.parent[id]
	return p, ok
}

// Children returns a copy of the entities attached under id, oldest first.
func (w *World) Children(id EntityID) []EntityID {
	return slices.Clone(w.children[id])
}

// MarkForDestruction queues an entity (and, at flush time, its children) for
// end-of-tick cleanup. Marking twice is harmless.
func (w *World) MarkForDestruction(id EntityID) {
	if w.queued[id] {
		return
	}
	w.queued[id] = true
	w.destroyQueue = append(w.destroyQueue, id)
}

// DestroyNow removes id and its subtree immediately. Used when an entity must
// not be observable later in the same tick (a consumed counter stance).
func (w *World) DestroyNow(id EntityID) {
	w.destroyRecursive(id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		n += w.destroyRecursive(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	clear(w.queued)
	return n
}

func (w *World) destroyRecursive(id EntityID) int {
	if !w.pool.Alive(id) {
		return 0
	}
	n := 0
	for _, c := range w.children[id] {
		n += w.destroyRecursive(c)
	}
	delete(w.children, id)
	if p, ok := w.parent[id]; ok {
		siblings := w.children[p]
		if i := slices.Index(siblings, id); i >= 0 {
			w.children[p] = slices.Delete(siblings, i, i+1)
		}
		delete(w.parent, id)
	}
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
	return n + 1
}
