package board

func generateKingMoves(p *Piece, ms *Moves) {
	generateLeaperMoves(p, queenVectors[:], ms)
	if canCastle(p, true) {
		*ms = append(*ms, p.newMove(CastleKingSide, p.sq+2*East))
	}
	if canCastle(p, false) {
		*ms = append(*ms, p.newMove(CastleQueenSide, p.sq+2*West))
	}
}

func kingCanAttack(p *Piece, target Square) bool {
	d := int(target - p.sq)
	for _, v := range queenVectors {
		if d == v {
			return true
		}
	}
	return false
}

func kingAttacks(pos *Position, c Color, target Square) bool {
	return pos.leaperAttacks(c, King, target, queenVectors[:])
}

func backRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// castlingRook returns the unmoved rook in the corner on the given side if
// the king is also unmoved on its home square.
func castlingRook(k *Piece, kingSide bool) *Piece {
	if k.kind != King || !k.inPlay || k.movesMade != 0 {
		return nil
	}
	rank := backRank(k.color)
	if k.sq != NewSquare(4, rank) {
		return nil
	}
	file := 0
	if kingSide {
		file = 7
	}
	r := k.pos.PieceAt(NewSquare(file, rank))
	if r == nil || r.color != k.color || r.kind != Rook || r.movesMade != 0 {
		return nil
	}
	return r
}

// canCastle applies the full castling rule: unmoved king and rook, empty
// squares between them, and the king neither in check nor crossing or
// landing on an attacked square.
func canCastle(k *Piece, kingSide bool) bool {
	if castlingRook(k, kingSide) == nil {
		return false
	}
	pos := k.pos
	var between, transit []Square
	if kingSide {
		between = []Square{k.sq + East, k.sq + 2*East}
		transit = between
	} else {
		between = []Square{k.sq + West, k.sq + 2*West, k.sq + 3*West}
		transit = between[:2]
	}
	for _, sq := range between {
		if !pos.board.IsEmpty(sq) {
			return false
		}
	}
	opp := k.color.Other()
	if pos.IsSquareAttacked(k.sq, opp) {
		return false
	}
	for _, sq := range transit {
		if pos.IsSquareAttacked(sq, opp) {
			return false
		}
	}
	return true
}

var kingMiddlePST = [64]int{
	-300, -400, -400, -500, -500, -400, -400, -300,
	-300, -400, -400, -500, -500, -400, -400, -300,
	-300, -400, -400, -500, -500, -400, -400, -300,
	-300, -400, -400, -500, -500, -400, -400, -300,
	-200, -300, -300, -400, -400, -300, -300, -200,
	-100, -200, -200, -200, -200, -200, -200, -100,
	200, 200, 0, 0, 0, 0, 200, 200,
	200, 300, 100, 0, 0, 100, 300, 200,
}

var kingEndPST = [64]int{
	-500, -400, -300, -200, -200, -300, -400, -500,
	-300, -200, -100, 0, 0, -100, -200, -300,
	-300, -100, 200, 300, 300, 200, -100, -300,
	-300, -100, 300, 400, 400, 300, -100, -300,
	-300, -100, 300, 400, 400, 300, -100, -300,
	-300, -100, 200, 300, 300, 200, -100, -300,
	-300, -300, 0, 0, 0, 0, -300, -300,
	-500, -300, -300, -300, -300, -300, -300, -500,
}

const (
	kingOpennessCap    = 12
	kingOpennessWeight = 40
)

func kingPoints(p *Piece, ec *evalContext) int {
	i := pstIndex(p.sq, p.color)
	if ec.stage == End {
		return kingEndPST[i]
	}
	return kingMiddlePST[i] - kingOpenness(p)*kingOpennessWeight
}

// kingOpenness probes forward-left, forward and forward-right from the
// king, counting squares until a friendly pawn or rook shelters it.
func kingOpenness(k *Piece) int {
	pos := k.pos
	adv := pawnAdvance(k.color)
	n := 0
	for _, d := range [...]int{adv + West, adv, adv + East} {
		for sq := k.sq + Square(d); sq.OnBoard(); sq += Square(d) {
			if id := pos.board.cells[sq]; id != NoPiece {
				q := &pos.pieces[id]
				if q.color == k.color && (q.kind == Pawn || q.kind == Rook) {
					break
				}
			}
			n++
		}
	}
	return min(n, kingOpennessCap)
}
