package board

func generateKnightMoves(p *Piece, ms *Moves) {
	generateLeaperMoves(p, knightLeaps[:], ms)
}

// generateLeaperMoves appends a move to every leap target that is empty or
// holds an enemy.
func generateLeaperMoves(p *Piece, leaps []int, ms *Moves) {
	pos := p.pos
	for _, d := range leaps {
		to := p.sq + Square(d)
		if !to.OnBoard() {
			continue
		}
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
	}
}

func knightCanAttack(p *Piece, target Square) bool {
	d := int(target - p.sq)
	for _, l := range knightLeaps {
		if d == l {
			return true
		}
	}
	return false
}

func knightAttacks(pos *Position, c Color, target Square) bool {
	return pos.leaperAttacks(c, Knight, target, knightLeaps[:])
}

const knightOutpostBonus = 150

var knightPST = [64]int{
	-500, -400, -300, -300, -300, -300, -400, -500,
	-400, -200, 0, 0, 0, 0, -200, -400,
	-300, 0, 100, 150, 150, 100, 0, -300,
	-300, 50, 150, 200, 200, 150, 50, -300,
	-300, 0, 150, 200, 200, 150, 0, -300,
	-300, 50, 100, 150, 150, 100, 50, -300,
	-400, -200, 0, 50, 50, 0, -200, -400,
	-500, -400, -300, -300, -300, -300, -400, -500,
}

func knightPoints(p *Piece, ec *evalContext) int {
	pts := knightPST[pstIndex(p.sq, p.color)]
	if p.sq.RelativeRank(p.color) >= 4 && pawnAttacks(ec.pos, p.color, p.sq) {
		pts += knightOutpostBonus
	}
	return pts + hangingPoints(p, ec)
}
