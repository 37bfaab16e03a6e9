package board

func generateBishopMoves(p *Piece, ms *Moves) {
	for _, d := range diagonals {
		p.pos.walkRay(p, d, ms)
	}
}

func bishopCanAttack(p *Piece, target Square) bool {
	d := directionBetween(p.sq, target)
	if !isDiagonal(d) {
		return false
	}
	return p.pos.lineIsClear(p.sq, target, d)
}

func bishopAttacks(pos *Position, c Color, target Square) bool {
	return pos.sliderAttacks(c, Bishop, target, diagonals[:])
}

const (
	bishopMobilityWeight     = 40
	undevelopedBishopPenalty = 150
)

var bishopPST = [64]int{
	-200, -100, -100, -100, -100, -100, -100, -200,
	-100, 0, 0, 0, 0, 0, 0, -100,
	-100, 0, 50, 100, 100, 50, 0, -100,
	-100, 50, 50, 100, 100, 50, 50, -100,
	-100, 0, 100, 100, 100, 100, 0, -100,
	-100, 100, 100, 100, 100, 100, 100, -100,
	-100, 50, 0, 0, 0, 0, 50, -100,
	-200, -100, -100, -100, -100, -100, -100, -200,
}

func bishopPoints(p *Piece, ec *evalContext) int {
	pos := ec.pos
	pts := bishopPST[pstIndex(p.sq, p.color)]
	for _, d := range diagonals {
		pts += pos.rayMobility(p.sq, p.color, d) * bishopMobilityWeight
	}
	if ec.stage == Opening && p.sq.RelativeRank(p.color) == 0 {
		pts -= undevelopedBishopPenalty
	}
	return pts + hangingPoints(p, ec)
}
