package board

// Undefended is returned by DefensePoints when no piece guards a square.
const Undefended = 20000

// rayDirection[to-from+119] is the unit step from one square toward another
// when they share a rank, file or diagonal, and zero otherwise. The 0x88
// layout makes the difference of two squares unique per geometric relation.
var rayDirection [239]int

func init() {
	for from := A1; from <= H8; from++ {
		if !from.OnBoard() {
			continue
		}
		for _, d := range queenVectors {
			for to := from + Square(d); to.OnBoard(); to += Square(d) {
				rayDirection[int(to-from)+119] = d
			}
		}
	}
}

// directionBetween returns the unit step leading from one square to
// another, or 0 if no straight line joins them.
func directionBetween(from, to Square) int {
	return rayDirection[int(to-from)+119]
}

func isDiagonal(d int) bool {
	return d == NorthEast || d == NorthWest || d == SouthEast || d == SouthWest
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (pos *Position) IsSquareAttacked(sq Square, by Color) bool {
	for k := Pawn; k <= King; k++ {
		if kinds[k].attackedBy(pos, by, sq) {
			return true
		}
	}
	return false
}

// DefensePoints returns the guard value of the cheapest piece of color c
// that attacks sq, or Undefended if none does.
func (pos *Position) DefensePoints(sq Square, c Color) int {
	for k := Pawn; k <= King; k++ {
		if kinds[k].attackedBy(pos, c, sq) {
			return kinds[k].guardValue
		}
	}
	return Undefended
}

const hangingPenalty = 150

// hangingPoints penalises a piece that is attacked and not defended.
func hangingPoints(p *Piece, ec *evalContext) int {
	pos := ec.pos
	if pos.IsSquareAttacked(p.sq, p.color.Other()) && pos.DefensePoints(p.sq, p.color) == Undefended {
		return -hangingPenalty
	}
	return 0
}
