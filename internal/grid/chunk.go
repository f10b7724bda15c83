package grid

// ChunkSize is the edge length of a cubic chunk.
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

// Chunk is a dense block of tiles addressed by local coordinates.
type Chunk struct {
	tiles [chunkVolume]Tile
	used  int // non-empty tiles
}

func chunkIndex(local Vec3) int {
	return int(local.X) + ChunkSize*(int(local.Y)+ChunkSize*int(local.Z))
}

func (c *Chunk) get(local Vec3) Tile { return c.tiles[chunkIndex(local)] }

func (c *Chunk) set(local Vec3, t Tile) {
	i := chunkIndex(local)
	was := !c.tiles[i].IsEmpty()
	now := !t.IsEmpty()
	switch {
	case was && !now:
		c.used--
	case !was && now:
		c.used++
	}
	c.tiles[i] = t
}

// WorldToChunk returns the coordinate of the chunk containing p.
func WorldToChunk(p Vec3) Vec3 {
	return Vec3{divEuclid(p.X), divEuclid(p.Y), divEuclid(p.Z)}
}

// WorldToLocal returns p's offset inside its chunk, each axis in [0, ChunkSize).
func WorldToLocal(p Vec3) Vec3 {
	return Vec3{remEuclid(p.X), remEuclid(p.Y), remEuclid(p.Z)}
}

// ChunkToWorld is the inverse: chunk*ChunkSize + local.
func ChunkToWorld(chunk, local Vec3) Vec3 {
	return chunk.Scale(ChunkSize).Add(local)
}

func divEuclid(v int32) int32 {
	q := v / ChunkSize
	if v%ChunkSize < 0 {
		q--
	}
	return q
}

func remEuclid(v int32) int32 {
	r := v % ChunkSize
	if r < 0 {
		r += ChunkSize
	}
	return r
}
