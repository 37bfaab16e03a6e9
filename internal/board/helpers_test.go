package board

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// snapshot is the observable state compared before and after make/unmake.
type snapshot struct {
	FEN       string
	HashA     uint64
	HashB     uint64
	PawnHashA uint64
	PawnHashB uint64
	Turn      int
	White     []PieceID
	Black     []PieceID
	Captured  [2][]PieceID
	Material  [2]int
	Pawns     [2]int
	Pieces    [MaxPieces]pieceSnap
}

type pieceSnap struct {
	Sq            Square
	Kind          Kind
	Promoted      bool
	InPlay        bool
	MovesMade     int
	LastTurnMoved int
}

func takeSnapshot(pos *Position) snapshot {
	s := snapshot{
		FEN:       pos.FEN(),
		HashA:     pos.board.HashA,
		HashB:     pos.board.HashB,
		PawnHashA: pos.board.PawnHashA,
		PawnHashB: pos.board.PawnHashB,
		Turn:      pos.turn,
		White:     append([]PieceID(nil), pos.players[White].pieces...),
		Black:     append([]PieceID(nil), pos.players[Black].pieces...),
	}
	for c := White; c <= Black; c++ {
		pl := pos.players[c]
		s.Captured[c] = append([]PieceID(nil), pl.captured...)
		s.Material[c] = pl.material
		s.Pawns[c] = pl.pawnCount
	}
	for i := range pos.pieces {
		p := &pos.pieces[i]
		s.Pieces[i] = pieceSnap{p.sq, p.kind, p.promoted, p.inPlay, p.movesMade, p.lastTurnMoved}
	}
	return s
}

func mustParseFEN(t *testing.T, fen string) *Position {
	t.Helper()
	pos, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func mustSquare(t *testing.T, label string) Square {
	t.Helper()
	sq, err := ParseSquare(label)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", label, err)
	}
	return sq
}

// play finds the legal move with coordinate notation s and makes it.
func play(t *testing.T, pos *Position, s string) Move {
	t.Helper()
	m, ok := pos.PlayerToMove().LegalMoves().Find(s)
	if !ok {
		t.Fatalf("move %s is not legal in %s", s, pos.FEN())
	}
	return pos.MakeMove(m)
}

// assertHashesMatch checks the incremental accumulators against a full
// recomputation.
func assertHashesMatch(t *testing.T, pos *Position) {
	t.Helper()
	full, pawns := pos.computeHashes()
	if n := len(pos.history); n > 0 && pos.history[n-1].Repeated {
		full = full.xor(hashPair{repetitionPerturbA, repetitionPerturbB})
	}
	got := [4]uint64{pos.board.HashA, pos.board.HashB, pos.board.PawnHashA, pos.board.PawnHashB}
	want := [4]uint64{full.a, full.b, pawns.a, pawns.b}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hash drift after %d plies (-want +got):\n%s", len(pos.history), diff)
	}
}
