package engine

import (
	"sync"
	"sync/atomic"

	"github.com/hailam/chesscore/internal/board"
)

// Number of shards for cache locking (power of 2 for fast modulo)
const cacheShardCount = 256
const cacheShardMask = cacheShardCount - 1

// CacheEntry is one cached evaluation.
type CacheEntry struct {
	KeyA  uint64 // HashA of the position, used for the slot
	KeyB  uint64 // HashB, verifies the slot belongs to this position
	State uint64 // Position.StateKey: castling, moved pieces, en passant
	Score int32
	Tag   uint8 // perspective and side to move, see cacheTag
	Age   uint8 // generation for replacement
	used  bool
}

// ScoreCache maps position hashes and state keys to Player.Score results.
// It is shared by concurrent analyses and uses sharded locking.
type ScoreCache struct {
	entries []CacheEntry
	shards  [cacheShardCount]sync.RWMutex
	size    uint64
	mask    uint64
	age     atomic.Uint32

	// Statistics (atomic for thread-safety)
	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewScoreCache creates a score cache with the given size in MB.
func NewScoreCache(sizeMB int) *ScoreCache {
	entrySize := uint64(40)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	if numEntries < cacheShardCount {
		numEntries = cacheShardCount
	}

	// Round down to power of 2 for fast modulo
	numEntries = roundDownToPowerOf2(numEntries)

	return &ScoreCache{
		entries: make([]CacheEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// cacheTag packs the scoring perspective and the side to move. The same
// placement scores differently for each.
func cacheTag(perspective, toMove board.Color) uint8 {
	return uint8(perspective)<<1 | uint8(toMove)
}

// shardIndex returns the shard index for a given entry index.
func (sc *ScoreCache) shardIndex(idx uint64) int {
	return int(idx & cacheShardMask)
}

// Probe looks up the score of a position from perspective's point of view.
func (sc *ScoreCache) Probe(keyA, keyB, state uint64, perspective, toMove board.Color) (int, bool) {
	sc.probes.Add(1)

	idx := keyA & sc.mask
	shard := sc.shardIndex(idx)

	sc.shards[shard].RLock()
	entry := sc.entries[idx]
	sc.shards[shard].RUnlock()

	if entry.used && entry.matches(keyA, keyB, state, cacheTag(perspective, toMove)) {
		sc.hits.Add(1)
		return int(entry.Score), true
	}
	return 0, false
}

func (e *CacheEntry) matches(keyA, keyB, state uint64, tag uint8) bool {
	return e.KeyA == keyA && e.KeyB == keyB && e.State == state && e.Tag == tag
}

// Store saves a score. An empty slot, the same position, or an entry from
// an older generation is replaced; an entry written earlier in the current
// generation is kept.
func (sc *ScoreCache) Store(keyA, keyB, state uint64, perspective, toMove board.Color, score int) {
	idx := keyA & sc.mask
	shard := sc.shardIndex(idx)
	tag := cacheTag(perspective, toMove)
	age := uint8(sc.age.Load())

	sc.shards[shard].Lock()
	defer sc.shards[shard].Unlock()

	entry := &sc.entries[idx]
	if entry.used && entry.Age == age && !entry.matches(keyA, keyB, state, tag) {
		return
	}
	entry.KeyA = keyA
	entry.KeyB = keyB
	entry.State = state
	entry.Score = clampScore(score)
	entry.Tag = tag
	entry.Age = age
	entry.used = true
}

// clampScore fits a score into the entry. Mate and bias scores are within
// int32 range.
func clampScore(s int) int32 {
	const lim = 1<<31 - 1
	if s > lim {
		return lim
	}
	if s < -lim {
		return -lim
	}
	return int32(s)
}

// NewGeneration increments the age counter.
func (sc *ScoreCache) NewGeneration() {
	sc.age.Add(1)
}

// Clear clears the cache.
func (sc *ScoreCache) Clear() {
	for i := range sc.shards {
		sc.shards[i].Lock()
	}
	for i := range sc.entries {
		sc.entries[i] = CacheEntry{}
	}
	for i := range sc.shards {
		sc.shards[i].Unlock()
	}
	sc.age.Store(0)
	sc.hits.Store(0)
	sc.probes.Store(0)
}

// HitRate returns the cache hit rate as a percentage.
func (sc *ScoreCache) HitRate() float64 {
	probes := sc.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(sc.hits.Load()) / float64(probes) * 100
}

// Hashfull returns the permille of sampled entries in use.
func (sc *ScoreCache) Hashfull() int {
	sample := uint64(1000)
	if sample > sc.size {
		sample = sc.size
	}
	used := 0
	for i := uint64(0); i < sample; i++ {
		shard := sc.shardIndex(i)
		sc.shards[shard].RLock()
		if sc.entries[i].used {
			used++
		}
		sc.shards[shard].RUnlock()
	}
	return used * 1000 / int(sample)
}
