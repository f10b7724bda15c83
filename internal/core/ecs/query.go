package ecs

// Each2 iterates over entities that have both component A and B, in id order.
// It walks the smaller store and checks the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	ids := sa.IDs()
	if sb.Len() < sa.Len() {
		ids = sb.IDs()
	}
	for _, id := range ids {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
	}
}
