// Package board implements the chess position model on a 0x88 board:
// squares, pieces and their kinds, move execution and undo with
// incremental hashing, attack queries, draw rules and evaluation.
package board

import "fmt"

// Square is an ordinal on the padded 16x8 board. Rank r, file f lives at
// r*16+f, so every real square satisfies sq&0x88 == 0 and a step that
// walks off a rank edge sets one of those bits.
type Square int

// Square constants for all 64 real squares.
const (
	A1 Square = 0x00 + iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

const (
	A2 Square = 0x10 + iota
	B2
	C2
	D2
	E2
	F2
	G2
	H2
)

const (
	A3 Square = 0x20 + iota
	B3
	C3
	D3
	E3
	F3
	G3
	H3
)

const (
	A4 Square = 0x30 + iota
	B4
	C4
	D4
	E4
	F4
	G4
	H4
)

const (
	A5 Square = 0x40 + iota
	B5
	C5
	D5
	E5
	F5
	G5
	H5
)

const (
	A6 Square = 0x50 + iota
	B6
	C6
	D6
	E6
	F6
	G6
	H6
)

const (
	A7 Square = 0x60 + iota
	B7
	C7
	D7
	E7
	F7
	G7
	H7
)

const (
	A8 Square = 0x70 + iota
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// NoSquare marks an absent square.
const NoSquare Square = -1

// BoardCells is the size of the padded board array.
const BoardCells = 128

// Direction offsets on the 0x88 board.
const (
	North     = 16
	South     = -16
	East      = 1
	West      = -1
	NorthEast = 17
	NorthWest = 15
	SouthEast = -15
	SouthWest = -17
)

var (
	orthogonals  = [4]int{North, South, East, West}
	diagonals    = [4]int{NorthEast, NorthWest, SouthEast, SouthWest}
	queenVectors = [8]int{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}
	knightLeaps  = [8]int{33, 31, 18, 14, -14, -18, -31, -33}
)

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank<<4 | file)
}

// OnBoard reports whether the ordinal addresses one of the 64 real squares.
func (sq Square) OnBoard() bool {
	return sq >= 0 && sq < BoardCells && sq&0x88 == 0
}

// File returns the file of the square (0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank of the square (0=1st, 7=8th).
func (sq Square) Rank() int {
	return int(sq) >> 4
}

// Index64 maps the square to 0..63, a1=0, h8=63.
func (sq Square) Index64() int {
	return sq.Rank()*8 + sq.File()
}

// Color returns the colour of the square itself. a1 is dark.
func (sq Square) Color() Color {
	if sq.File()%2 == sq.Rank()%2 {
		return Black
	}
	return White
}

// RelativeRank returns the rank counted from the given colour's side.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// String returns the algebraic label for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.OnBoard() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// ParseSquare parses an algebraic label (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}

	return NewSquare(file, rank), nil
}

// squareFrom64 is the inverse of Index64.
func squareFrom64(i int) Square {
	return NewSquare(i&7, i>>3)
}
