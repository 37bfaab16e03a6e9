package board

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/slices"
)

func TestPawnStartMovesAndUndo(t *testing.T) {
	pos := NewPosition()
	pawn := pos.PieceAt(E2)
	if pawn == nil || pawn.Kind() != Pawn {
		t.Fatalf("e2 holds %v", pawn)
	}

	got := pawn.LazyMoves().Strings()
	if diff := cmp.Diff([]string{"e2e3", "e2e4"}, got); diff != "" {
		t.Fatalf("e2 moves (-want +got):\n%s", diff)
	}

	before := takeSnapshot(pos)
	rec := play(t, pos, "e2e4")
	if rec.Turn != 1 || rec.IsCapture() || !rec.IsIrreversible() {
		t.Errorf("record = %+v", rec)
	}
	if pos.PieceAt(E4) != pawn || pos.PieceAt(E2) != nil {
		t.Fatal("pawn did not move to e4")
	}
	if pos.board.HashA == before.HashA {
		t.Error("hash unchanged by e2e4")
	}
	assertHashesMatch(t, pos)

	pos.UnmakeMove()
	if pos.PieceAt(E2) != pawn {
		t.Error("e2 does not hold the original pawn after undo")
	}
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}
}

func TestCaptureReinsertsAtIndex(t *testing.T) {
	pos := NewPosition()
	play(t, pos, "e2e4")
	play(t, pos, "d7d5")
	before := takeSnapshot(pos)

	victim := pos.PieceAt(D5)
	rec := play(t, pos, "e4d5")
	if rec.Captured != victim.ID() {
		t.Fatalf("captured %d, want %d", rec.Captured, victim.ID())
	}
	if rec.CapturedIndex != 11 {
		t.Errorf("CapturedIndex = %d, want 11", rec.CapturedIndex)
	}
	if victim.InPlay() {
		t.Error("victim still in play")
	}
	if got := pos.White().CapturedEnemyPieces(); len(got) != 1 || got[0] != victim {
		t.Errorf("white captured %v", got)
	}
	if pos.Black().PawnCount() != 7 {
		t.Errorf("black pawns = %d", pos.Black().PawnCount())
	}
	assertHashesMatch(t, pos)

	pos.UnmakeMove()
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}
}

func TestCastlingMakeUnmake(t *testing.T) {
	pos := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	before := takeSnapshot(pos)

	rec := play(t, pos, "e1g1")
	if rec.Kind != CastleKingSide {
		t.Fatalf("kind = %s", rec.Kind)
	}
	if p := pos.PieceAt(F1); p == nil || p.Kind() != Rook {
		t.Errorf("f1 holds %v", p)
	}
	if pos.PieceAt(H1) != nil {
		t.Error("h1 not vacated")
	}
	if !pos.White().HasCastled() {
		t.Error("HasCastled = false")
	}
	assertHashesMatch(t, pos)

	play(t, pos, "e8c8")
	if p := pos.PieceAt(D8); p == nil || p.Kind() != Rook {
		t.Errorf("d8 holds %v", p)
	}
	assertHashesMatch(t, pos)

	pos.UnmakeMove()
	pos.UnmakeMove()
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}
}

func TestEnPassantMakeUnmake(t *testing.T) {
	pos := mustParseFEN(t, "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	before := takeSnapshot(pos)
	victim := pos.PieceAt(F5)

	rec := play(t, pos, "e5f6")
	if rec.Kind != EnPassant || rec.Captured != victim.ID() {
		t.Fatalf("record = %+v", rec)
	}
	if pos.PieceAt(F5) != nil {
		t.Error("f5 not cleared")
	}
	assertHashesMatch(t, pos)

	pos.UnmakeMove()
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}

	// d5 double-stepped earlier, so only f5 can be taken.
	if _, ok := pos.White().LegalMoves().Find("e5d6"); ok {
		t.Error("e5d6 offered without a fresh double step")
	}
}

func TestPromotionMakeUnmake(t *testing.T) {
	pos := mustParseFEN(t, "1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	before := takeSnapshot(pos)
	pawn := pos.PieceAt(A7)

	moves := pos.White().LegalMoves().Strings()
	for _, want := range []string{"a7a8q", "a7a8n", "a7b8q", "a7b8n"} {
		if !contains(moves, want) {
			t.Errorf("%s missing from %v", want, moves)
		}
	}
	for _, never := range []string{"a7a8r", "a7a8b"} {
		if contains(moves, never) {
			t.Errorf("%s offered", never)
		}
	}

	play(t, pos, "a7b8q")
	if pawn.Kind() != Queen || !pawn.IsPromoted() || pos.PieceAt(B8) != pawn {
		t.Fatalf("after promotion: %s promoted=%v", pawn, pawn.IsPromoted())
	}
	if got := pos.White().MaterialCount(); got != 9 {
		t.Errorf("white material = %d, want 9", got)
	}
	if got := pos.White().PawnCount(); got != 0 {
		t.Errorf("white pawns = %d, want 0", got)
	}
	assertHashesMatch(t, pos)

	pos.UnmakeMove()
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}
}

func TestPromotedPieceHashesDifferently(t *testing.T) {
	ps := pieceState{id: 3, kind: Pawn}
	promoted := pieceState{id: 3, kind: Queen, promoted: true}
	if contribution(ps, E8) == contribution(promoted, E8) {
		t.Error("promoted piece hashes like its pawn")
	}
	other := pieceState{id: 3, kind: Knight, promoted: true}
	if contribution(promoted, E8) == contribution(other, E8) {
		t.Error("queen and knight promotions hash alike")
	}
}

func TestPromotionPanics(t *testing.T) {
	pos := mustParseFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	king := pos.White().King()
	pawn := pos.PieceAt(A7)

	mustPanic(t, "promote king", func() { king.promote(Queen) })
	mustPanic(t, "demote unpromoted", func() { pawn.demote() })
	mustPanic(t, "promote to king", func() { pawn.promote(King) })

	pawn.promote(Queen)
	mustPanic(t, "promote twice", func() { pawn.promote(Queen) })
	pawn.demote()
	if pawn.Kind() != Pawn || pawn.IsPromoted() {
		t.Errorf("after demote: %s", pawn)
	}
}

func TestRayWalkOffBoardPanics(t *testing.T) {
	pos := NewPosition()
	mustPanic(t, "line past target", func() { pos.lineIsClear(E4, A5, East) })
}

func TestHashConsistencyDuringPlayout(t *testing.T) {
	pos := mustParseFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	before := takeSnapshot(pos)

	plies := 0
	for ; plies < 120; plies++ {
		moves := pos.PlayerToMove().LegalMoves()
		if len(moves) == 0 {
			break
		}
		pos.MakeMove(moves[(plies*7+3)%len(moves)])
		assertHashesMatch(t, pos)
	}
	for ; plies > 0; plies-- {
		pos.UnmakeMove()
		assertHashesMatch(t, pos)
	}
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("unwind mismatch (-before +after):\n%s", diff)
	}
}

func TestRepetitionPerturbsHash(t *testing.T) {
	pos := NewPosition()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	for _, s := range shuffle {
		play(t, pos, s)
	}
	if pos.IsThreeFoldRepetition() {
		t.Fatal("two occurrences reported as three-fold")
	}
	for _, s := range shuffle[:3] {
		play(t, pos, s)
	}
	beforeHash := pos.board.HashA

	rec := play(t, pos, "f6g8")
	if !rec.Repeated || !pos.IsThreeFoldRepetition() {
		t.Fatalf("third occurrence not detected: %+v", rec)
	}
	if got, want := pos.board.HashA, rec.HashA^repetitionPerturbA; got != want {
		t.Errorf("HashA = %x, want stored %x ^ 31", got, rec.HashA)
	}
	if got, want := pos.board.HashB, rec.HashB^repetitionPerturbB; got != want {
		t.Errorf("HashB = %x, want stored %x ^ 29", got, rec.HashB)
	}
	if rec.HashA != pos.rootHash.a {
		t.Error("stored hash differs from the start position's")
	}
	assertHashesMatch(t, pos)

	pos.EstablishHashKey()
	if pos.board.HashA != rec.HashA^repetitionPerturbA {
		t.Error("EstablishHashKey dropped the perturbation")
	}

	pos.UnmakeMove()
	if pos.board.HashA != beforeHash {
		t.Errorf("HashA after undo = %x, want %x", pos.board.HashA, beforeHash)
	}
	if pos.IsThreeFoldRepetition() {
		t.Error("still three-fold after undo")
	}
}

func TestMovesAfterRepetition(t *testing.T) {
	pos := NewPosition()
	for i := 0; i < 2; i++ {
		for _, s := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
			play(t, pos, s)
		}
	}
	if last, _ := pos.LastMove(); !last.Repeated {
		t.Fatal("third occurrence not marked")
	}
	perturbed := takeSnapshot(pos)

	rec := play(t, pos, "g1f3")
	assertHashesMatch(t, pos)
	if !rec.Repeated {
		t.Error("third g1f3 position not marked")
	}
	if first := pos.history[0]; rec.HashA != first.HashA || rec.HashB != first.HashB {
		t.Errorf("stored hash %x, want unperturbed %x", rec.HashA, first.HashA)
	}

	rec = play(t, pos, "e7e5")
	assertHashesMatch(t, pos)
	if rec.Repeated {
		t.Error("new position marked as repeated")
	}
	full, _ := pos.computeHashes()
	if rec.HashA != full.a || rec.HashB != full.b {
		t.Errorf("stored hash %x carries a perturbation, want %x", rec.HashA, full.a)
	}

	pos.UnmakeMove()
	assertHashesMatch(t, pos)
	pos.UnmakeMove()
	assertHashesMatch(t, pos)
	if diff := cmp.Diff(perturbed, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}
}

func TestNullMoveAfterRepetition(t *testing.T) {
	pos := NewPosition()
	for i := 0; i < 2; i++ {
		for _, s := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
			play(t, pos, s)
		}
	}
	before := takeSnapshot(pos)

	rec := pos.MakeMove(Move{Kind: NullMove})
	assertHashesMatch(t, pos)
	if rec.HashA != pos.rootHash.a {
		t.Errorf("null move stored %x, want %x", rec.HashA, pos.rootHash.a)
	}
	pos.UnmakeMove()
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}
}

func TestNullMove(t *testing.T) {
	pos := NewPosition()
	before := takeSnapshot(pos)

	rec := pos.MakeMove(Move{Kind: NullMove})
	if rec.String() != "0000" || pos.SideToMove() != Black || pos.Turn() != 1 {
		t.Errorf("after null move: %+v side=%s", rec, pos.SideToMove())
	}
	pos.UnmakeMove()
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("undo mismatch (-before +after):\n%s", diff)
	}
}

func TestResolveMates(t *testing.T) {
	pos := mustParseFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	rec := play(t, pos, "a1a8")
	if !rec.OpponentInCheck || rec.MoverInCheck {
		t.Fatalf("check flags = %+v", rec)
	}
	pos.ResolveMates()
	last, _ := pos.LastMove()
	if !last.OpponentInCheckMate || last.MoverInCheckMate {
		t.Errorf("mate flags = %v/%v", last.MoverInCheckMate, last.OpponentInCheckMate)
	}
}

func TestResolveMatesWithFullHistory(t *testing.T) {
	pos := mustParseFEN(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	play(t, pos, "a1a8")
	// No spare capacity: legal move generation inside ResolveMates
	// reallocates the history.
	pos.history = slices.Clip(pos.history)

	pos.ResolveMates()
	last, _ := pos.LastMove()
	if !last.OpponentInCheckMate || last.MoverInCheckMate {
		t.Errorf("mate flags = %v/%v", last.MoverInCheckMate, last.OpponentInCheckMate)
	}
	if len(pos.history) != 1 {
		t.Errorf("history length = %d, want 1", len(pos.history))
	}
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
