package board

import (
	"fmt"
	"strings"

	uuid "github.com/satori/go.uuid"
)

// Position is one game: the board, both players, every piece ever in play
// and the move history. Pieces and players refer back to it; nothing here
// is safe for concurrent use.
type Position struct {
	// ID identifies the game in logs and persisted analysis.
	ID uuid.UUID

	board   Board
	pieces  [MaxPieces]Piece
	players [2]*Player

	turn    int
	history Moves

	policy    Policy
	pawnTable *PawnTable

	// State of the loaded position, before any recorded move.
	rootSide          Color
	rootHalfMoveClock int
	rootHash          hashPair
	rootEnPassant     PieceID
}

func newPosition() *Position {
	pos := &Position{
		ID:            uuid.NewV4(),
		board:         newBoard(),
		policy:        DefaultPolicy(),
		rootEnPassant: NoPiece,
	}
	for i := range pos.pieces {
		pos.pieces[i] = Piece{pos: pos, id: PieceID(i), sq: NoSquare, kind: NoKind}
	}
	pos.players[White] = newPlayer(pos, White)
	pos.players[Black] = newPlayer(pos, Black)
	return pos
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// addPiece places a new piece of c on sq, giving it the next free identity
// of its side.
func (pos *Position) addPiece(c Color, k Kind, sq Square) error {
	pl := pos.players[c]
	n := len(pl.pieces)
	if n >= piecesPerSide {
		return fmt.Errorf("%w: more than %d %s pieces", ErrInvalidFEN, piecesPerSide, c)
	}
	if k == King && pl.king != NoPiece {
		return fmt.Errorf("%w: %s has more than one king", ErrInvalidFEN, c)
	}
	id := PieceID(int(c)*piecesPerSide + n)
	p := &pos.pieces[id]
	p.color = c
	p.kind = k
	p.sq = sq
	p.inPlay = true
	p.promoted = false
	p.movesMade = 0
	p.lastTurnMoved = 0

	pl.pieces = append(pl.pieces, id)
	switch k {
	case Pawn:
		pl.pawnCount++
	case King:
		pl.king = id
	default:
		pl.material += kinds[k].basicValue
	}
	pos.board.cells[sq] = id
	return nil
}

// Turn returns the number of plies played since the start of the game.
func (pos *Position) Turn() int { return pos.turn }

// SideToMove returns the color to move.
func (pos *Position) SideToMove() Color {
	if len(pos.history)%2 == 0 {
		return pos.rootSide
	}
	return pos.rootSide.Other()
}

// PlayerToMove returns the player to move.
func (pos *Position) PlayerToMove() *Player { return pos.players[pos.SideToMove()] }

// Player returns the player of color c.
func (pos *Position) Player(c Color) *Player { return pos.players[c] }

// White returns the white player.
func (pos *Position) White() *Player { return pos.players[White] }

// Black returns the black player.
func (pos *Position) Black() *Player { return pos.players[Black] }

// History returns the moves made since the position was loaded. The slice
// is shared with the position and must not be modified.
func (pos *Position) History() Moves { return pos.history }

// LastMove returns the most recent history entry.
func (pos *Position) LastMove() (Move, bool) {
	if len(pos.history) == 0 {
		return Move{}, false
	}
	return pos.history[len(pos.history)-1], true
}

// Piece returns the piece with identity id, in play or not.
func (pos *Position) Piece(id PieceID) *Piece {
	if int(id) >= MaxPieces {
		return nil
	}
	return &pos.pieces[id]
}

// Policy returns the scoring policy.
func (pos *Position) Policy() Policy { return pos.policy }

// SetPolicy replaces the scoring policy.
func (pos *Position) SetPolicy(p Policy) { pos.policy = p }

// SetPawnTable attaches a pawn-structure cache. Nil disables caching.
func (pos *Position) SetPawnTable(pt *PawnTable) { pos.pawnTable = pt }

// Validate checks that each side has exactly one king and that no pawn
// stands on the first or last rank.
func (pos *Position) Validate() error {
	for _, pl := range pos.players {
		if pl.king == NoPiece {
			return fmt.Errorf("%w: %s has no king", ErrInvalidFEN, pl.color)
		}
		for _, id := range pl.pieces {
			p := &pos.pieces[id]
			if p.kind == Pawn && (p.sq.Rank() == 0 || p.sq.Rank() == 7) {
				return fmt.Errorf("%w: pawn on %s", ErrInvalidFEN, p.sq)
			}
		}
	}
	return nil
}

// String returns a board diagram with the game state.
func (pos *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			if p := pos.PieceAtCoords(file, rank); p != nil {
				sb.WriteByte(p.Abbreviation())
			} else {
				sb.WriteByte('.')
			}
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", pos.SideToMove())
	fmt.Fprintf(&sb, "Turn: %d\n", pos.turn)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", pos.HalfMoveClock())
	fmt.Fprintf(&sb, "Hash: %016x %016x\n", pos.board.HashA, pos.board.HashB)
	return sb.String()
}
