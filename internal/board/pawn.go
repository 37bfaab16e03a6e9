package board

// pawnAdvance returns the square offset of a single pawn step for c.
func pawnAdvance(c Color) int {
	if c == White {
		return North
	}
	return South
}

// pawnCaptureDirs returns the two diagonal capture offsets for c.
func pawnCaptureDirs(c Color) [2]int {
	if c == White {
		return [2]int{NorthWest, NorthEast}
	}
	return [2]int{SouthWest, SouthEast}
}

func generatePawnMoves(p *Piece, ms *Moves) {
	pos := p.pos
	adv := Square(pawnAdvance(p.color))

	one := p.sq + adv
	if pos.board.IsEmpty(one) {
		if one.RelativeRank(p.color) == 7 {
			addPromotions(p, one, NoPiece, ms)
		} else {
			*ms = append(*ms, p.newMove(Standard, one))
			if p.sq.RelativeRank(p.color) == 1 {
				if two := one + adv; pos.board.IsEmpty(two) {
					*ms = append(*ms, p.newMove(Standard, two))
				}
			}
		}
	}

	for _, d := range pawnCaptureDirs(p.color) {
		to := p.sq + Square(d)
		if !to.OnBoard() {
			continue
		}
		id := pos.board.cells[to]
		if id == NoPiece || pos.pieces[id].color == p.color {
			continue
		}
		if to.RelativeRank(p.color) == 7 {
			addPromotions(p, to, id, ms)
			continue
		}
		m := p.newMove(Standard, to)
		m.Captured = id
		*ms = append(*ms, m)
	}

	if victim := pos.enPassantVictim(); victim != nil && victim.color != p.color {
		if d := victim.sq - p.sq; d == East || d == West {
			to := victim.sq + adv
			if pos.board.IsEmpty(to) {
				m := p.newMove(EnPassant, to)
				m.Captured = victim.id
				*ms = append(*ms, m)
			}
		}
	}
}

// addPromotions appends the promotion choices for a pawn reaching to.
// Only queen and knight are offered: rook and bishop are never better than
// the queen except for stalemate tricks.
func addPromotions(p *Piece, to Square, captured PieceID, ms *Moves) {
	for _, k := range [...]MoveKind{PromoteQueen, PromoteKnight} {
		m := p.newMove(k, to)
		m.Captured = captured
		*ms = append(*ms, m)
	}
}

func pawnCanAttack(p *Piece, target Square) bool {
	for _, d := range pawnCaptureDirs(p.color) {
		if p.sq+Square(d) == target {
			return true
		}
	}
	return false
}

func pawnAttacks(pos *Position, c Color, target Square) bool {
	for _, d := range pawnCaptureDirs(c) {
		from := target - Square(d)
		if !from.OnBoard() {
			continue
		}
		if id := pos.board.cells[from]; id != NoPiece {
			if p := &pos.pieces[id]; p.color == c && p.kind == Pawn {
				return true
			}
		}
	}
	return false
}

// enPassantVictim returns the pawn that may be captured en passant in the
// current position, or nil.
func (pos *Position) enPassantVictim() *Piece {
	n := len(pos.history)
	if n == 0 {
		if pos.rootEnPassant == NoPiece {
			return nil
		}
		p := &pos.pieces[pos.rootEnPassant]
		if !p.inPlay {
			return nil
		}
		return p
	}
	m := pos.history[n-1]
	if m.Kind != Standard || abs(int(m.To-m.From)) != 2*North {
		return nil
	}
	p := &pos.pieces[m.Piece]
	if p.kind != Pawn {
		return nil
	}
	return p
}

// Pawn structure weights.
var (
	pawnFileBonus    = [8]int{0, 12, 27, 56, 56, 27, 12, 0}
	pawnAdvanceBonus = [8]int{0, 0, 60, 120, 240, 480, 960, 0}
	passedPawnBonus  = [8]int{0, 50, 100, 200, 350, 600, 1000, 0}
)

const (
	isolatedPawnPenalty = 150
	doubledPawnPenalty  = 200
	backwardPawnPenalty = 100
)

// aheadMask returns the rank bits strictly in front of rank for a pawn of c.
func aheadMask(c Color, rank int) uint8 {
	if c == White {
		return uint8(0xFF << (rank + 1))
	}
	return uint8(1<<rank) - 1
}

// adjacentFiles returns the OR of the rank masks on the files beside file.
func adjacentFiles(masks *[8]uint8, file int) uint8 {
	var m uint8
	if file > 0 {
		m |= masks[file-1]
	}
	if file < 7 {
		m |= masks[file+1]
	}
	return m
}

// pawnPoints scores one pawn's place in its side's structure. It reads
// only pawn placement and the stage scale, so the sum over a side can be
// cached under the pawn hash.
func pawnPoints(p *Piece, ec *evalContext) int {
	file, rank := p.sq.File(), p.sq.Rank()
	rel := p.sq.RelativeRank(p.color)
	own := &ec.pawnRanks[p.color]
	enemy := &ec.pawnRanks[p.color.Other()]
	ahead := aheadMask(p.color, rank)

	pts := pawnFileBonus[file]
	pts += pawnAdvanceBonus[rel] * ec.advanceScale / MaxMaterial

	beside := adjacentFiles(own, file)
	switch {
	case beside == 0:
		pts -= isolatedPawnPenalty
	case beside&^ahead == 0:
		// Every neighbour is in front; backward if the stop square is
		// covered by an enemy pawn.
		stop := p.sq + Square(pawnAdvance(p.color))
		if stop.OnBoard() && pawnAttacks(ec.pos, p.color.Other(), stop) {
			pts -= backwardPawnPenalty
		}
	}

	if own[file]&ahead != 0 {
		pts -= doubledPawnPenalty
	}

	if (enemy[file]|adjacentFiles(enemy, file))&ahead == 0 {
		pts += passedPawnBonus[rel]
	}
	return pts
}
