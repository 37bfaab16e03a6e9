package board

// Board is the padded 128-cell grid plus the running hash accumulators.
// Cells hold piece identities; the pieces themselves live in the owning
// Position's arena.
type Board struct {
	cells [BoardCells]PieceID

	// Flipped is the display orientation. It has no effect on play.
	Flipped bool

	// Whole-position hash lanes.
	HashA uint64
	HashB uint64

	// Pawns-only hash lanes.
	PawnHashA uint64
	PawnHashB uint64
}

func newBoard() Board {
	var b Board
	for i := range b.cells {
		b.cells[i] = NoPiece
	}
	return b
}

// GetSquare validates an ordinal. Off-board ordinals return (NoSquare, false).
func (b *Board) GetSquare(ordinal int) (Square, bool) {
	sq := Square(ordinal)
	if !sq.OnBoard() {
		return NoSquare, false
	}
	return sq, true
}

// GetPiece returns the identity occupying sq, or NoPiece for an empty or
// off-board square.
func (b *Board) GetPiece(sq Square) PieceID {
	if !sq.OnBoard() {
		return NoPiece
	}
	return b.cells[sq]
}

// IsEmpty reports whether sq is a real, unoccupied square.
func (b *Board) IsEmpty(sq Square) bool {
	return sq.OnBoard() && b.cells[sq] == NoPiece
}

// Flip toggles the display orientation.
func (b *Board) Flip() {
	b.Flipped = !b.Flipped
}

func (b *Board) apply(full, pawns hashPair) {
	b.HashA ^= full.a
	b.HashB ^= full.b
	b.PawnHashA ^= pawns.a
	b.PawnHashB ^= pawns.b
}

func (b *Board) perturb() {
	b.HashA ^= repetitionPerturbA
	b.HashB ^= repetitionPerturbB
}

// PieceAt returns the piece on sq, or nil for an empty or off-board square.
func (pos *Position) PieceAt(sq Square) *Piece {
	id := pos.board.GetPiece(sq)
	if id == NoPiece {
		return nil
	}
	return &pos.pieces[id]
}

// PieceAtLabel returns the piece on the square named by label (e.g. "e4").
func (pos *Position) PieceAtLabel(label string) (*Piece, error) {
	sq, err := ParseSquare(label)
	if err != nil {
		return nil, err
	}
	return pos.PieceAt(sq), nil
}

// PieceAtCoords returns the piece on (file, rank), 0-indexed.
func (pos *Position) PieceAtCoords(file, rank int) *Piece {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return nil
	}
	return pos.PieceAt(NewSquare(file, rank))
}

// Board returns the position's board.
func (pos *Position) Board() *Board {
	return &pos.board
}

// computeHashes scans every occupied square and returns the accumulators a
// correct incremental update must produce, without the repetition
// perturbation.
func (pos *Position) computeHashes() (full, pawns hashPair) {
	for sq := A1; sq <= H8; sq++ {
		if !sq.OnBoard() {
			continue
		}
		id := pos.board.cells[sq]
		if id == NoPiece {
			continue
		}
		p := &pos.pieces[id]
		h := p.hashKeys()
		full = full.xor(h)
		if p.kind == Pawn {
			pawns = pawns.xor(h)
		}
	}
	return full, pawns
}

// EstablishHashKey recomputes all four accumulators from scratch. It is
// used after loading a position and as an oracle for the incremental
// updates performed by MakeMove and UnmakeMove.
func (pos *Position) EstablishHashKey() {
	full, pawns := pos.computeHashes()
	pos.board.HashA = full.a
	pos.board.HashB = full.b
	pos.board.PawnHashA = pawns.a
	pos.board.PawnHashB = pawns.b
	if n := len(pos.history); n > 0 && pos.history[n-1].Repeated {
		pos.board.perturb()
	}
}

// StateKey packs the position state that the hashes leave out but
// evaluation reads: which pieces have moved (castling rights, early queen
// moves), which sides have castled, and the en-passant victim. Caches keyed
// by HashA/HashB must also compare it.
func (pos *Position) StateKey() uint64 {
	var key uint64
	for i := range pos.pieces {
		if p := &pos.pieces[i]; p.inPlay && p.movesMade > 0 {
			key |= 1 << uint(i)
		}
	}
	for c := White; c <= Black; c++ {
		if pos.players[c].HasCastled() {
			key |= 1 << (32 + uint(c))
		}
	}
	ep := uint64(NoPiece)
	if v := pos.enPassantVictim(); v != nil {
		ep = uint64(v.id)
	}
	return key | ep<<34
}

// walkRay appends moves for p along dir: a quiet move for each empty
// square, and a capture if the first occupied square holds an enemy.
func (pos *Position) walkRay(p *Piece, dir int, ms *Moves) {
	for to := p.sq + Square(dir); to.OnBoard(); to += Square(dir) {
		id := pos.board.cells[to]
		if id == NoPiece {
			*ms = append(*ms, p.newMove(Standard, to))
			continue
		}
		if pos.pieces[id].color != p.color {
			m := p.newMove(Standard, to)
			m.Captured = id
			*ms = append(*ms, m)
		}
		return
	}
}

// rayMobility counts the squares p could move to along dir.
func (pos *Position) rayMobility(from Square, c Color, dir int) int {
	n := 0
	for to := from + Square(dir); to.OnBoard(); to += Square(dir) {
		id := pos.board.cells[to]
		if id == NoPiece {
			n++
			continue
		}
		if pos.pieces[id].color != c {
			n++
		}
		break
	}
	return n
}

// firstPieceOnLine returns the first piece met walking from sq along dir,
// or nil if the walk leaves the board.
func (pos *Position) firstPieceOnLine(sq Square, dir int) *Piece {
	for to := sq + Square(dir); to.OnBoard(); to += Square(dir) {
		if id := pos.board.cells[to]; id != NoPiece {
			return &pos.pieces[id]
		}
	}
	return nil
}

// lineIsClear reports whether every square strictly between from and to
// along dir is empty. The walk must reach to; leaving the board first is
// an invariant violation.
func (pos *Position) lineIsClear(from, to Square, dir int) bool {
	for sq := from + Square(dir); ; sq += Square(dir) {
		if !sq.OnBoard() {
			panic("board: ray from " + from.String() + " left the board before reaching " + to.String())
		}
		if sq == to {
			return true
		}
		if pos.board.cells[sq] != NoPiece {
			return false
		}
	}
}

// leaperAttacks reports whether a piece of kind k owned by c stands a leap
// away from target.
func (pos *Position) leaperAttacks(c Color, k Kind, target Square, leaps []int) bool {
	for _, d := range leaps {
		from := target + Square(d)
		if !from.OnBoard() {
			continue
		}
		id := pos.board.cells[from]
		if id == NoPiece {
			continue
		}
		p := &pos.pieces[id]
		if p.color == c && p.kind == k {
			return true
		}
	}
	return false
}

// sliderAttacks reports whether the first piece along any of dirs from
// target belongs to c and is of kind k.
func (pos *Position) sliderAttacks(c Color, k Kind, target Square, dirs []int) bool {
	for _, d := range dirs {
		p := pos.firstPieceOnLine(target, d)
		if p != nil && p.color == c && p.kind == k {
			return true
		}
	}
	return false
}
