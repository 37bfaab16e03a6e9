package board

func generateRookMoves(p *Piece, ms *Moves) {
	for _, d := range orthogonals {
		p.pos.walkRay(p, d, ms)
	}
}

func rookCanAttack(p *Piece, target Square) bool {
	d := directionBetween(p.sq, target)
	if d == 0 || isDiagonal(d) {
		return false
	}
	return p.pos.lineIsClear(p.sq, target, d)
}

func rookAttacks(pos *Position, c Color, target Square) bool {
	return pos.sliderAttacks(c, Rook, target, orthogonals[:])
}

const (
	rookMobilityWeight = 30
	rookOpenFile       = 200
	rookSemiOpenFile   = 100
	rookSeventhRank    = 250
)

func rookPoints(p *Piece, ec *evalContext) int {
	pos := ec.pos
	pts := 0
	for _, d := range orthogonals {
		pts += pos.rayMobility(p.sq, p.color, d) * rookMobilityWeight
	}

	file := p.sq.File()
	switch {
	case ec.pawnRanks[p.color][file] == 0 && ec.pawnRanks[p.color.Other()][file] == 0:
		pts += rookOpenFile
	case ec.pawnRanks[p.color][file] == 0:
		pts += rookSemiOpenFile
	}

	if p.sq.RelativeRank(p.color) == 6 {
		pts += rookSeventhRank
	}
	return pts + hangingPoints(p, ec)
}
