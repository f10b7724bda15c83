package grid

import "fmt"

// Vec3 is an integer world coordinate. Y is up.
type Vec3 struct {
	X, Y, Z int32
}

var (
	Up   = Vec3{0, 1, 0}
	Down = Vec3{0, -1, 0}
)

func V(x, y, z int32) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(k int32) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

func (v Vec3) IsZero() bool { return v == Vec3{} }

// DistSq is the squared euclidean distance, used for aggro range checks.
func (v Vec3) DistSq(o Vec3) int64 {
	dx := int64(v.X - o.X)
	dy := int64(v.Y - o.Y)
	dz := int64(v.Z - o.Z)
	return dx*dx + dy*dy + dz*dz
}

// Manhattan returns |dx|+|dy|+|dz|.
func (v Vec3) Manhattan(o Vec3) int32 {
	return abs32(v.X-o.X) + abs32(v.Y-o.Y) + abs32(v.Z-o.Z)
}

// Less orders positions by Y, then Z, then X.
func (v Vec3) Less(o Vec3) bool {
	if v.Y != o.Y {
		return v.Y < o.Y
	}
	if v.Z != o.Z {
		return v.Z < o.Z
	}
	return v.X < o.X
}

func (v Vec3) String() string { return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z) }

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
