package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. Identities are
// assigned in scan order from a8: White gets 0-15 and Black 16-31.
// Castling rights and the en-passant square are expressed through the
// pieces' move counters.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := newPosition()

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.rootSide = White
	case "b":
		pos.rootSide = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, parts[4])
		}
		pos.rootHalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	fullMove := 1
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, parts[5])
		}
		fullMove = fmn
	}
	pos.turn = (fullMove-1)*2 + int(pos.rootSide)

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		if err := parseEnPassant(pos, parts[3]); err != nil {
			return nil, err
		}
	}

	pos.EstablishHashKey()
	pos.rootHash = hashPair{pos.board.HashA, pos.board.HashB}
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			k := KindFromChar(byte(c))
			if k == NoKind {
				return fmt.Errorf("%w: piece character %q", ErrInvalidFEN, c)
			}
			color := White
			if c >= 'a' {
				color = Black
			}
			sq := NewSquare(file, rank)
			if err := pos.addPiece(color, k, sq); err != nil {
				return err
			}
			if k == Pawn && sq.RelativeRank(color) != 1 {
				pos.pieces[pos.board.cells[sq]].movesMade = 1
			}
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights marks the king or corner rooks as moved where the
// FEN withholds a right.
func parseCastlingRights(pos *Position, castling string) error {
	var rights [2][2]bool // [color][kingSide]
	if castling != "-" {
		for _, c := range castling {
			switch c {
			case 'K':
				rights[White][1] = true
			case 'Q':
				rights[White][0] = true
			case 'k':
				rights[Black][1] = true
			case 'q':
				rights[Black][0] = true
			default:
				return fmt.Errorf("%w: castling character %q", ErrInvalidFEN, c)
			}
		}
	}

	for _, pl := range pos.players {
		c := pl.color
		rank := backRank(c)
		k := pl.King()
		if k.sq != NewSquare(4, rank) || (!rights[c][0] && !rights[c][1]) {
			k.movesMade = 1
		}
		// Any rook away from a corner, or on a corner without the right,
		// counts as moved.
		for _, id := range pl.pieces {
			r := &pos.pieces[id]
			if r.kind != Rook {
				continue
			}
			switch {
			case r.sq == NewSquare(7, rank) && rights[c][1]:
			case r.sq == NewSquare(0, rank) && rights[c][0]:
			default:
				r.movesMade = 1
			}
		}
	}
	return nil
}

// parseEnPassant records the pawn that just double-stepped past label.
func parseEnPassant(pos *Position, label string) error {
	sq, err := ParseSquare(label)
	if err != nil {
		return fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, label)
	}
	victimColor := pos.rootSide.Other()
	victim := pos.PieceAt(sq + Square(pawnAdvance(victimColor)))
	if victim == nil || victim.kind != Pawn || victim.color != victimColor || sq.RelativeRank(victimColor) != 2 {
		return fmt.Errorf("%w: no pawn to capture en passant on %s", ErrInvalidFEN, label)
	}
	victim.movesMade = 1
	victim.lastTurnMoved = pos.turn
	pos.rootEnPassant = victim.id
	return nil
}

// FEN returns the FEN representation of the position.
func (pos *Position) FEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := pos.PieceAtCoords(file, rank)
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.Abbreviation())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	if pos.SideToMove() == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	// Castling rights
	castling := ""
	for _, c := range [...]Color{White, Black} {
		k := pos.players[c].King()
		if k == nil {
			continue
		}
		if castlingRook(k, true) != nil {
			castling += string(rune(pieceLetter(c, 'K')))
		}
		if castlingRook(k, false) != nil {
			castling += string(rune(pieceLetter(c, 'Q')))
		}
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)

	// En passant
	sb.WriteByte(' ')
	if v := pos.enPassantVictim(); v != nil {
		sb.WriteString((v.sq - Square(pawnAdvance(v.color))).String())
	} else {
		sb.WriteByte('-')
	}

	fmt.Fprintf(&sb, " %d %d", pos.HalfMoveClock(), pos.turn/2+1)
	return sb.String()
}

func pieceLetter(c Color, upper byte) byte {
	if c == Black {
		return upper + 'a' - 'A'
	}
	return upper
}
