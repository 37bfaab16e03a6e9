package board

// Stage is the phase of the game, derived from the lower of the two sides'
// non-pawn material.
type Stage uint8

const (
	Opening Stage = iota
	Middle
	End
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case Opening:
		return "Opening"
	case Middle:
		return "Middle"
	default:
		return "End"
	}
}

// MaxMaterial is one side's non-pawn material at the start of a game.
const MaxMaterial = 31

const (
	openingMaterial = 25
	middleMaterial  = 12
)

// Score bounds. A mate scores MateScore; every other evaluation is clamped
// inside it.
const (
	MateScore = 999_999_999
	MaxScore  = 1_000_000_000
)

// Player-level positional weights.
const (
	castledBonus        = 250
	lostCastlingPenalty = 300
	castleRightBonus    = 50
	bishopPairBonus     = 500
	rookPairBonus       = 100
)

// Policy holds scoring choices made by the application rather than by the
// rules. When the side to move is HumanColor and the position is a
// three-fold repetition, Score returns RepetitionBias for the human and its
// negation for the computer, steering the computer away from drawing by
// repetition.
type Policy struct {
	HumanColor     Color
	RepetitionBias int
}

// DefaultPolicy has no human player.
func DefaultPolicy() Policy {
	return Policy{HumanColor: NoColor, RepetitionBias: MaxScore}
}

// LowestMaterial returns the smaller of the two sides' non-pawn material.
func (pos *Position) LowestMaterial() int {
	return min(pos.players[White].material, pos.players[Black].material)
}

// Stage returns the current game stage.
func (pos *Position) Stage() Stage {
	switch low := pos.LowestMaterial(); {
	case low >= openingMaterial:
		return Opening
	case low >= middleMaterial:
		return Middle
	default:
		return End
	}
}

// evalContext carries what the per-piece scorers share for one evaluation.
type evalContext struct {
	pos    *Position
	stage  Stage
	lowest int

	// advanceScale weights pawn advancement up as material comes off.
	advanceScale int

	// pawnRanks[c][file] has bit r set when c has a pawn on rank r.
	pawnRanks [2][8]uint8

	kingSq [2]Square
}

func (pos *Position) newEvalContext() *evalContext {
	ec := &evalContext{
		pos:    pos,
		stage:  pos.Stage(),
		lowest: min(pos.LowestMaterial(), MaxMaterial),
		kingSq: [2]Square{NoSquare, NoSquare},
	}
	ec.advanceScale = (MaxMaterial - ec.lowest) * 2
	for _, pl := range pos.players {
		if k := pl.King(); k != nil {
			ec.kingSq[pl.color] = k.sq
		}
		for _, id := range pl.pieces {
			p := &pos.pieces[id]
			if p.kind == Pawn {
				ec.pawnRanks[p.color][p.sq.File()] |= 1 << p.sq.Rank()
			}
		}
	}
	return ec
}

// pstIndex maps a square to a piece-square table laid out with rank 8 in
// the first row, as seen by c.
func pstIndex(sq Square, c Color) int {
	if c == White {
		return (7-sq.Rank())*8 + sq.File()
	}
	return sq.Rank()*8 + sq.File()
}

// pawnStructure sums the pawn points of one side.
func (ec *evalContext) pawnStructure(c Color) int {
	pos := ec.pos
	pts := 0
	for _, id := range pos.players[c].pieces {
		if p := &pos.pieces[id]; p.kind == Pawn {
			pts += kinds[Pawn].points(p, ec)
		}
	}
	return pts
}

// pawnPoints returns one side's pawn structure points, through the pawn
// table when one is attached.
func (ec *evalContext) pawnPoints(c Color) int {
	pos := ec.pos
	pt := pos.pawnTable
	if pt == nil {
		return ec.pawnStructure(c)
	}
	b := &pos.board
	w, bl, ok := pt.Probe(b.PawnHashA, b.PawnHashB, ec.lowest)
	if !ok {
		w, bl = ec.pawnStructure(White), ec.pawnStructure(Black)
		pt.Store(b.PawnHashA, b.PawnHashB, ec.lowest, w, bl)
	}
	if c == White {
		return w
	}
	return bl
}

// PositionPoints returns the player's positional points: pawn structure,
// the per-kind terms of every other piece, piece pairs and castling.
func (pl *Player) PositionPoints() int {
	return pl.positionPoints(pl.pos.newEvalContext())
}

func (pl *Player) positionPoints(ec *evalContext) int {
	pos := pl.pos
	pts := ec.pawnPoints(pl.color)
	bishops, rooks := 0, 0
	for _, id := range pl.pieces {
		p := &pos.pieces[id]
		switch p.kind {
		case Pawn:
			continue
		case Bishop:
			bishops++
		case Rook:
			rooks++
		}
		pts += kinds[p.kind].points(p, ec)
	}
	if bishops >= 2 {
		pts += bishopPairBonus
	}
	if rooks >= 2 {
		pts += rookPairBonus
	}
	return pts + pl.castlingPoints(ec)
}

func (pl *Player) castlingPoints(ec *evalContext) int {
	if ec.stage == End {
		return 0
	}
	k := pl.King()
	switch {
	case k == nil:
		return 0
	case pl.HasCastled():
		return castledBonus
	case k.movesMade > 0:
		return -lostCastlingPenalty
	}
	pts := 0
	if castlingRook(k, true) != nil {
		pts += castleRightBonus
	}
	if castlingRook(k, false) != nil {
		pts += castleRightBonus
	}
	return pts
}

// TotalPieceValue sums the material value of the player's pieces in play.
func (pl *Player) TotalPieceValue() int {
	v := 0
	for _, id := range pl.pieces {
		v += kinds[pl.pos.pieces[id].kind].value
	}
	return v
}

// Points returns material plus positional points.
func (pl *Player) Points() int {
	return pl.PositionPoints() + pl.TotalPieceValue()
}

// Score evaluates the position from the player's point of view: a mate
// scores MateScore either way and everything else is the points
// difference, clamped strictly inside the mate scores.
func (pl *Player) Score() int {
	pos := pl.pos
	opp := pl.Opponent()

	if h := pos.policy.HumanColor; h != NoColor && pos.SideToMove() == h && pos.IsThreeFoldRepetition() {
		if pl.color == h {
			return pos.policy.RepetitionBias
		}
		return -pos.policy.RepetitionBias
	}

	if pl.IsInCheck() && !pl.CanMove() {
		return -MateScore
	}
	if opp.IsInCheck() && !opp.CanMove() {
		return MateScore
	}

	ec := pos.newEvalContext()
	s := pl.positionPoints(ec) + pl.TotalPieceValue() - opp.positionPoints(ec) - opp.TotalPieceValue()
	return max(-(MateScore - 1), min(MateScore-1, s))
}
