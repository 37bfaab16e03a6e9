package board

// PawnEntry stores a cached pawn structure evaluation.
type PawnEntry struct {
	KeyA     uint64
	KeyB     uint64
	Material int8
	used     bool
	White    int32
	Black    int32
}

// PawnTable is a hash table for caching pawn structure evaluations, keyed
// by both pawn hash lanes and the stage material.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a new pawn hash table with the given size in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	// Each entry is 32 bytes, round to power of 2
	entrySize := 32
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	// Round down to power of 2
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a pawn structure evaluation.
// Returns the white and black pawn points if found.
func (pt *PawnTable) Probe(keyA, keyB uint64, material int) (white, black int, found bool) {
	entry := &pt.entries[keyA&pt.mask]
	if entry.used && entry.KeyA == keyA && entry.KeyB == keyB && int(entry.Material) == material {
		return int(entry.White), int(entry.Black), true
	}
	return 0, 0, false
}

// Store saves a pawn structure evaluation, replacing whatever shared its slot.
func (pt *PawnTable) Store(keyA, keyB uint64, material, white, black int) {
	entry := &pt.entries[keyA&pt.mask]
	entry.KeyA = keyA
	entry.KeyB = keyB
	entry.Material = int8(material)
	entry.used = true
	entry.White = int32(white)
	entry.Black = int32(black)
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
}
