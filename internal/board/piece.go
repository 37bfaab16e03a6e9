package board

import "fmt"

// Color represents the color of a piece, square or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// Kind is the current behaviour of a piece. A piece keeps its identity
// when its kind changes at promotion.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoKind Kind = 6
)

const numKinds = int(NoKind)

// Material values in points. A pawn is worth 1000.
const (
	PawnValue   = 1000
	KnightValue = 3250
	BishopValue = 3250
	RookValue   = 5000
	QueenValue  = 9750
	KingValue   = 15000
)

// kindInfo is the dispatch table entry for one kind.
type kindInfo struct {
	name       string
	abbrev     byte
	value      int // counted in TotalPieceValue
	basicValue int // material units for stage and draw decisions
	guardValue int // value used when the piece defends a square

	// generate appends the piece's pseudo-legal moves.
	generate func(p *Piece, ms *Moves)
	// canAttack reports whether the piece attacks target from where it stands.
	canAttack func(p *Piece, target Square) bool
	// attackedBy reports whether some piece of this kind owned by c attacks target.
	attackedBy func(pos *Position, c Color, target Square) bool
	// points returns the piece's positional points.
	points func(p *Piece, ec *evalContext) int
}

var kinds [numKinds]kindInfo

func init() {
	kinds = [numKinds]kindInfo{
		Pawn: {
			name: "Pawn", abbrev: 'P', value: PawnValue, basicValue: 1, guardValue: PawnValue,
			generate: generatePawnMoves, canAttack: pawnCanAttack, attackedBy: pawnAttacks,
			points: pawnPoints,
		},
		Knight: {
			name: "Knight", abbrev: 'N', value: KnightValue, basicValue: 3, guardValue: KnightValue,
			generate: generateKnightMoves, canAttack: knightCanAttack, attackedBy: knightAttacks,
			points: knightPoints,
		},
		Bishop: {
			name: "Bishop", abbrev: 'B', value: BishopValue, basicValue: 3, guardValue: BishopValue,
			generate: generateBishopMoves, canAttack: bishopCanAttack, attackedBy: bishopAttacks,
			points: bishopPoints,
		},
		Rook: {
			name: "Rook", abbrev: 'R', value: RookValue, basicValue: 5, guardValue: RookValue,
			generate: generateRookMoves, canAttack: rookCanAttack, attackedBy: rookAttacks,
			points: rookPoints,
		},
		Queen: {
			name: "Queen", abbrev: 'Q', value: QueenValue, basicValue: 9, guardValue: QueenValue,
			generate: generateQueenMoves, canAttack: queenCanAttack, attackedBy: queenAttacks,
			points: queenPoints,
		},
		King: {
			name: "King", abbrev: 'K', value: 0, basicValue: 15, guardValue: KingValue,
			generate: generateKingMoves, canAttack: kingCanAttack, attackedBy: kingAttacks,
			points: kingPoints,
		},
	}
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= NoKind {
		return "None"
	}
	return kinds[k].name
}

// Abbreviation returns the upper-case letter for the kind.
func (k Kind) Abbreviation() byte {
	if k >= NoKind {
		return ' '
	}
	return kinds[k].abbrev
}

// Value returns the kind's material value in points.
func (k Kind) Value() int {
	if k >= NoKind {
		return 0
	}
	return kinds[k].value
}

// BasicValue returns the kind's material units (pawn=1, queen=9).
func (k Kind) BasicValue() int {
	if k >= NoKind {
		return 0
	}
	return kinds[k].basicValue
}

// KindFromChar converts a piece letter of either case to a Kind.
func KindFromChar(c byte) Kind {
	switch c {
	case 'P', 'p':
		return Pawn
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'Q', 'q':
		return Queen
	case 'K', 'k':
		return King
	default:
		return NoKind
	}
}

// PieceID is a piece's identity: fixed for the whole game and used to
// seed its hash contribution.
type PieceID uint8

// NoPiece marks an empty cell or absent piece.
const NoPiece PieceID = 0xFF

// MaxPieces is the number of identities available (16 per side).
const MaxPieces = 32

const piecesPerSide = MaxPieces / 2

// Piece is one piece of the game. It lives in its Position's arena for the
// whole game, in play or captured.
type Piece struct {
	pos *Position

	id       PieceID
	color    Color
	sq       Square
	kind     Kind
	promoted bool
	inPlay   bool

	movesMade     int
	lastTurnMoved int
}

// ID returns the piece identity.
func (p *Piece) ID() PieceID { return p.id }

// Color returns the owner's color.
func (p *Piece) Color() Color { return p.color }

// Player returns the owning player.
func (p *Piece) Player() *Player { return p.pos.players[p.color] }

// Square returns the square the piece stands on (its last square when captured).
func (p *Piece) Square() Square { return p.sq }

// Kind returns the current kind.
func (p *Piece) Kind() Kind { return p.kind }

// IsPromoted reports whether the piece started as a pawn and was promoted.
func (p *Piece) IsPromoted() bool { return p.promoted }

// InPlay reports whether the piece is on the board.
func (p *Piece) InPlay() bool { return p.inPlay }

// MovesMade returns how many times the piece has moved.
func (p *Piece) MovesMade() int { return p.movesMade }

// LastTurnMoved returns the turn number of the piece's most recent move.
func (p *Piece) LastTurnMoved() int { return p.lastTurnMoved }

// Value returns the piece's material value in points.
func (p *Piece) Value() int { return kinds[p.kind].value }

// BasicValue returns the piece's material units.
func (p *Piece) BasicValue() int { return kinds[p.kind].basicValue }

// Abbreviation returns the FEN letter: upper case for White.
func (p *Piece) Abbreviation() byte {
	c := kinds[p.kind].abbrev
	if p.color == Black {
		c += 'a' - 'A'
	}
	return c
}

// ImageIndex returns the index of the piece's glyph in a 12-entry sprite sheet.
func (p *Piece) ImageIndex() int {
	return int(p.kind)*2 + int(p.color)
}

// String returns e.g. "White Knight g1".
func (p *Piece) String() string {
	return fmt.Sprintf("%s %s %s", p.color, p.kind, p.sq)
}

func (p *Piece) state() pieceState {
	return pieceState{id: p.id, kind: p.kind, promoted: p.promoted}
}

// hashKeys returns the piece's current contribution to the position hash.
func (p *Piece) hashKeys() hashPair {
	return contribution(p.state(), p.sq)
}

// LazyMoves returns the piece's pseudo-legal moves.
func (p *Piece) LazyMoves() Moves {
	var ms Moves
	p.generateLazyMoves(&ms)
	return ms
}

func (p *Piece) generateLazyMoves(ms *Moves) {
	if !p.inPlay {
		return
	}
	kinds[p.kind].generate(p, ms)
}

// LegalMoves returns the piece's moves that do not leave its own king attacked.
func (p *Piece) LegalMoves() Moves {
	return p.pos.filterLegal(p.LazyMoves())
}

// CanAttack reports whether the piece attacks target from where it stands.
func (p *Piece) CanAttack(target Square) bool {
	if !p.inPlay || !target.OnBoard() || target == p.sq {
		return false
	}
	return kinds[p.kind].canAttack(p, target)
}

// promote changes a pawn into k. The identity is unchanged.
func (p *Piece) promote(k Kind) {
	if p.kind != Pawn {
		panic(fmt.Sprintf("board: promote %s: not a pawn", p))
	}
	if p.promoted {
		panic(fmt.Sprintf("board: promote %s: already promoted", p))
	}
	if k < Knight || k > Queen {
		panic(fmt.Sprintf("board: promote %s: cannot promote to %s", p, k))
	}
	owner := p.Player()
	owner.pawnCount--
	owner.material += kinds[k].basicValue
	p.kind = k
	p.promoted = true
}

// demote reverses promote.
func (p *Piece) demote() {
	if !p.promoted {
		panic(fmt.Sprintf("board: demote %s: never promoted", p))
	}
	owner := p.Player()
	owner.material -= kinds[p.kind].basicValue
	owner.pawnCount++
	p.kind = Pawn
	p.promoted = false
}

func (p *Piece) newMove(kind MoveKind, to Square) Move {
	return Move{
		Kind:     kind,
		Piece:    p.id,
		From:     p.sq,
		To:       to,
		Captured: NoPiece,
	}
}
