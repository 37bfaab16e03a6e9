package board

// Hash seeds are per piece identity, not per piece type: the same starting
// piece contributes the same seed for a square for the whole game. Two lanes
// (A and B) are kept so external caches can verify keys with the second
// lane. Uses PRNG with fixed seed for reproducibility.
var (
	identitySeedA [MaxPieces][64]uint64
	identitySeedB [MaxPieces][64]uint64

	// Added to a promoted piece's contribution, one constant per
	// promoted-to kind, so a promoted queen never hashes like an original.
	promotionModA [numKinds]uint64
	promotionModB [numKinds]uint64
)

// Perturbation XORed into the live position hash while the current
// position is a three-fold repetition.
const (
	repetitionPerturbA uint64 = 31
	repetitionPerturbB uint64 = 29
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rngA := newPRNG(0x98F107A2BEEF1234)
	rngB := newPRNG(0x5D1CE0F3A7B26C49)

	for id := 0; id < MaxPieces; id++ {
		for i := 0; i < 64; i++ {
			identitySeedA[id][i] = rngA.next()
			identitySeedB[id][i] = rngB.next()
		}
	}

	for k := Knight; k <= Queen; k++ {
		promotionModA[k] = rngA.next()
		promotionModB[k] = rngB.next()
	}
}

// hashPair holds one value per hash lane.
type hashPair struct {
	a, b uint64
}

func (h hashPair) xor(o hashPair) hashPair {
	return hashPair{h.a ^ o.a, h.b ^ o.b}
}

// pieceState is the part of a piece that determines its hash contribution.
type pieceState struct {
	id       PieceID
	kind     Kind
	promoted bool
}

// contribution returns the value a piece in the given state XORs into the
// position accumulators while standing on sq.
func contribution(ps pieceState, sq Square) hashPair {
	i := sq.Index64()
	h := hashPair{identitySeedA[ps.id][i], identitySeedB[ps.id][i]}
	if ps.promoted {
		h.a += promotionModA[ps.kind]
		h.b += promotionModB[ps.kind]
	}
	return h
}
