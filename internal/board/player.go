package board

// Player is one side of a game. It owns an ordered list of the identities
// of its pieces in play and the list of enemy pieces it has captured.
type Player struct {
	pos   *Position
	color Color

	pieces   []PieceID
	captured []PieceID
	king     PieceID

	// material sums the basic values of non-pawn, non-king pieces in play.
	material  int
	pawnCount int
}

func newPlayer(pos *Position, c Color) *Player {
	return &Player{
		pos:      pos,
		color:    c,
		pieces:   make([]PieceID, 0, piecesPerSide),
		captured: make([]PieceID, 0, piecesPerSide),
		king:     NoPiece,
	}
}

// Color returns the player's color.
func (pl *Player) Color() Color { return pl.color }

// Opponent returns the other player.
func (pl *Player) Opponent() *Player { return pl.pos.players[pl.color.Other()] }

// Advance returns the square offset of a single pawn step.
func (pl *Player) Advance() int { return pawnAdvance(pl.color) }

// CaptureOffsets returns the two diagonal pawn capture offsets.
func (pl *Player) CaptureOffsets() [2]int { return pawnCaptureDirs(pl.color) }

// King returns the player's king.
func (pl *Player) King() *Piece {
	if pl.king == NoPiece {
		return nil
	}
	return &pl.pos.pieces[pl.king]
}

// Pieces returns the player's pieces in play, in list order.
func (pl *Player) Pieces() []*Piece {
	out := make([]*Piece, len(pl.pieces))
	for i, id := range pl.pieces {
		out[i] = &pl.pos.pieces[id]
	}
	return out
}

// CapturedEnemyPieces returns the enemy pieces this player has taken, oldest first.
func (pl *Player) CapturedEnemyPieces() []*Piece {
	out := make([]*Piece, len(pl.captured))
	for i, id := range pl.captured {
		out[i] = &pl.pos.pieces[id]
	}
	return out
}

// MaterialCount returns the basic value of the player's pieces other than
// pawns and the king.
func (pl *Player) MaterialCount() int { return pl.material }

// PawnCount returns the number of pawns in play.
func (pl *Player) PawnCount() int { return pl.pawnCount }

// LazyMoves returns every pseudo-legal move of the player's pieces, in
// piece-list order.
func (pl *Player) LazyMoves() Moves {
	ms := make(Moves, 0, 48)
	for _, id := range pl.pieces {
		pl.pos.pieces[id].generateLazyMoves(&ms)
	}
	return ms
}

// LegalMoves returns the pseudo-legal moves that do not leave the player's
// king attacked.
func (pl *Player) LegalMoves() Moves {
	return pl.pos.filterLegal(pl.LazyMoves())
}

// CanMove reports whether the player has at least one legal move. It stops
// at the first one found.
func (pl *Player) CanMove() bool {
	var ms Moves
	for _, id := range pl.pieces {
		ms = ms[:0]
		pl.pos.pieces[id].generateLazyMoves(&ms)
		for _, m := range ms {
			rec := pl.pos.MakeMove(m)
			pl.pos.UnmakeMove()
			if !rec.MoverInCheck {
				return true
			}
		}
	}
	return false
}

// IsInCheck reports whether the player's king is attacked.
func (pl *Player) IsInCheck() bool {
	k := pl.King()
	if k == nil {
		return false
	}
	return pl.pos.IsSquareAttacked(k.sq, pl.color.Other())
}

// IsInCheckMate reports whether the player is in check with no legal move.
func (pl *Player) IsInCheckMate() bool {
	return pl.IsInCheck() && !pl.CanMove()
}

// IsInStalemate reports whether the player is to move, not in check, and
// has no legal move.
func (pl *Player) IsInStalemate() bool {
	return pl.pos.SideToMove() == pl.color && !pl.IsInCheck() && !pl.CanMove()
}

// CanCastleKingSide reports whether castling short is legal right now.
func (pl *Player) CanCastleKingSide() bool {
	k := pl.King()
	return k != nil && canCastle(k, true)
}

// CanCastleQueenSide reports whether castling long is legal right now.
func (pl *Player) CanCastleQueenSide() bool {
	k := pl.King()
	return k != nil && canCastle(k, false)
}

// HasCastled reports whether the player castled during the recorded history.
func (pl *Player) HasCastled() bool {
	for _, m := range pl.pos.history {
		if m.Kind.IsCastle() && m.Piece == pl.king {
			return true
		}
	}
	return false
}

// CanAttack reports whether any of the player's pieces attacks sq.
func (pl *Player) CanAttack(sq Square) bool {
	for _, id := range pl.pieces {
		if pl.pos.pieces[id].CanAttack(sq) {
			return true
		}
	}
	return false
}

// String returns the color name.
func (pl *Player) String() string {
	return pl.color.String()
}
