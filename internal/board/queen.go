package board

func generateQueenMoves(p *Piece, ms *Moves) {
	for _, d := range queenVectors {
		p.pos.walkRay(p, d, ms)
	}
}

func queenCanAttack(p *Piece, target Square) bool {
	d := directionBetween(p.sq, target)
	if d == 0 {
		return false
	}
	return p.pos.lineIsClear(p.sq, target, d)
}

func queenAttacks(pos *Position, c Color, target Square) bool {
	return pos.sliderAttacks(c, Queen, target, queenVectors[:])
}

const (
	queenMobilityWeight = 15
	queenTropismWeight  = 40
	earlyQueenPenalty   = 200
)

func queenPoints(p *Piece, ec *evalContext) int {
	pos := ec.pos
	pts := 0
	for _, d := range queenVectors {
		pts += pos.rayMobility(p.sq, p.color, d) * queenMobilityWeight
	}
	if k := ec.kingSq[p.color.Other()]; k != NoSquare {
		pts += queenTropismWeight * (7 - chebyshevDistance(p.sq, k))
	}
	if ec.stage == Opening && p.movesMade > 0 {
		pts -= earlyQueenPenalty
	}
	return pts + hangingPoints(p, ec)
}
