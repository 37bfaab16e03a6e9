package board

// MoveKind distinguishes the side effects a move has when executed.
type MoveKind uint8

const (
	Standard MoveKind = iota
	CastleKingSide
	CastleQueenSide
	EnPassant
	PromoteQueen
	PromoteRook
	PromoteBishop
	PromoteKnight
	NullMove
)

// String returns the move kind name.
func (k MoveKind) String() string {
	switch k {
	case Standard:
		return "Standard"
	case CastleKingSide:
		return "CastleKingSide"
	case CastleQueenSide:
		return "CastleQueenSide"
	case EnPassant:
		return "EnPassant"
	case PromoteQueen:
		return "PromoteQueen"
	case PromoteRook:
		return "PromoteRook"
	case PromoteBishop:
		return "PromoteBishop"
	case PromoteKnight:
		return "PromoteKnight"
	case NullMove:
		return "NullMove"
	default:
		return "Unknown"
	}
}

// Promotion returns the kind a promotion move produces, or NoKind.
func (k MoveKind) Promotion() Kind {
	switch k {
	case PromoteQueen:
		return Queen
	case PromoteRook:
		return Rook
	case PromoteBishop:
		return Bishop
	case PromoteKnight:
		return Knight
	default:
		return NoKind
	}
}

// IsPromotion returns true if this kind promotes a pawn.
func (k MoveKind) IsPromotion() bool {
	return k.Promotion() != NoKind
}

// IsCastle returns true for either castling kind.
func (k MoveKind) IsCastle() bool {
	return k == CastleKingSide || k == CastleQueenSide
}

// Move records one ply. Generated moves carry Kind, Piece, From, To and,
// for captures, Captured. The copy appended to the history by MakeMove also
// carries the turn, the captured piece's list index, the resulting hashes
// and the check flags.
type Move struct {
	Turn  int
	Kind  MoveKind
	Piece PieceID
	From  Square
	To    Square

	// Captured is the captured piece, NoPiece if none. CapturedIndex is its
	// index in its owner's piece list at the time of capture, so undo can
	// reinsert it where it was.
	Captured      PieceID
	CapturedIndex int

	// Score is assigned by callers for ordering.
	Score int

	MoverInCheck        bool
	OpponentInCheck     bool
	MoverInCheckMate    bool
	OpponentInCheckMate bool

	// Position hashes after the move, before any repetition perturbation.
	HashA     uint64
	HashB     uint64
	PawnHashA uint64
	PawnHashB uint64

	// Repeated is set when the move produced a three-fold repetition and
	// the live hash was perturbed.
	Repeated bool

	irreversible      bool
	priorLastTurn     int
	rookPriorLastTurn int
	deltaFull         hashPair
	deltaPawns        hashPair
}

// IsCapture reports whether the move takes a piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPiece
}

// IsIrreversible reports whether the executed move was a pawn move or a
// capture. Only meaningful on history entries.
func (m Move) IsIrreversible() bool {
	return m.irreversible
}

// Same reports whether two moves describe the same action.
func (m Move) Same(o Move) bool {
	return m.Kind == o.Kind && m.Piece == o.Piece && m.From == o.From && m.To == o.To
}

// String returns coordinate notation (e.g., "e2e4", "e7e8q", "0000").
func (m Move) String() string {
	if m.Kind == NullMove {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if k := m.Kind.Promotion(); k != NoKind {
		s += string(k.Abbreviation() + 'a' - 'A')
	}
	return s
}

// Moves is an ordered list of moves.
type Moves []Move

// Contains returns true if the list holds a move describing the same action.
func (ms Moves) Contains(m Move) bool {
	for i := range ms {
		if ms[i].Same(m) {
			return true
		}
	}
	return false
}

// Find returns the move whose coordinate notation is s.
func (ms Moves) Find(s string) (Move, bool) {
	for _, m := range ms {
		if m.String() == s {
			return m, true
		}
	}
	return Move{}, false
}

// Strings returns the coordinate notation of every move.
func (ms Moves) Strings() []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

// SortByScore sorts the list in place by descending Score. The order of
// equal scores is unspecified.
func (ms Moves) SortByScore() {
	quickSort(ms, 0, len(ms)-1)
}

func quickSort(ms Moves, lo, hi int) {
	for lo < hi {
		p := partition(ms, lo, hi)
		// Recurse into the smaller side to bound stack depth.
		if p-lo < hi-p {
			quickSort(ms, lo, p-1)
			lo = p + 1
		} else {
			quickSort(ms, p+1, hi)
			hi = p - 1
		}
	}
}

// partition uses ms[lo] as the pivot and leaves every score >= pivot left
// of the returned index and every smaller score right of it.
func partition(ms Moves, lo, hi int) int {
	pivot := ms[lo].Score
	i, j := lo+1, hi
	for {
		for i <= j && ms[i].Score >= pivot {
			i++
		}
		for i <= j && ms[j].Score < pivot {
			j--
		}
		if i > j {
			break
		}
		ms[i], ms[j] = ms[j], ms[i]
		i++
		j--
	}
	ms[lo], ms[j] = ms[j], ms[lo]
	return j
}
