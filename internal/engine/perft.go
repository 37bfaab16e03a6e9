package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hailam/chesscore/internal/board"
)

// ErrPositionDrift reports that a make/unmake pair did not restore the
// position, or that incremental hashes disagree with a recomputation.
var ErrPositionDrift = errors.New("position drift")

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.PlayerToMove().LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		pos.MakeMove(m)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove()
	}
	return nodes
}

// DivideEntry is the perft count below one root move.
type DivideEntry struct {
	Move  string
	Nodes uint64
}

// Divide returns the perft count below each root move, sorted by move, and
// the total.
func Divide(pos *board.Position, depth int) ([]DivideEntry, uint64) {
	if depth < 1 {
		return nil, 1
	}
	var entries []DivideEntry
	var total uint64
	for _, m := range pos.PlayerToMove().LegalMoves() {
		pos.MakeMove(m)
		n := Perft(pos, depth-1)
		pos.UnmakeMove()
		entries = append(entries, DivideEntry{Move: m.String(), Nodes: n})
		total += n
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Move < entries[j].Move })
	return entries, total
}

type nodeState struct {
	fen                          string
	hashA, hashB, pawnA, pawnB   uint64
	whitePieces, blackPieces     int
	whiteMaterial, blackMaterial int
}

func captureState(pos *board.Position) nodeState {
	b := pos.Board()
	return nodeState{
		fen:           pos.FEN(),
		hashA:         b.HashA,
		hashB:         b.HashB,
		pawnA:         b.PawnHashA,
		pawnB:         b.PawnHashB,
		whitePieces:   len(pos.White().Pieces()),
		blackPieces:   len(pos.Black().Pieces()),
		whiteMaterial: pos.White().MaterialCount(),
		blackMaterial: pos.Black().MaterialCount(),
	}
}

// PerftVerify is Perft with checks at every node: after each move the
// incremental hashes must equal a full recomputation, and after each undo
// the position must be identical to before the move.
func PerftVerify(ctx context.Context, pos *board.Position, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var nodes uint64
	for _, m := range pos.PlayerToMove().LegalMoves() {
		before := captureState(pos)

		pos.MakeMove(m)
		if err := verifyHashes(pos); err != nil {
			return nodes, fmt.Errorf("after %s from %s: %w", m, before.fen, err)
		}
		n, err := PerftVerify(ctx, pos, depth-1)
		nodes += n
		if err != nil {
			return nodes, err
		}
		pos.UnmakeMove()

		if after := captureState(pos); after != before {
			return nodes, fmt.Errorf("%w: undo %s from %s left %s", ErrPositionDrift, m, before.fen, after.fen)
		}
	}
	return nodes, nil
}

// verifyHashes recomputes the accumulators and compares them with the
// incrementally maintained ones. The recomputation leaves a correct
// position unchanged.
func verifyHashes(pos *board.Position) error {
	b := pos.Board()
	inc := [4]uint64{b.HashA, b.HashB, b.PawnHashA, b.PawnHashB}
	pos.EstablishHashKey()
	full := [4]uint64{b.HashA, b.HashB, b.PawnHashA, b.PawnHashB}
	if inc != full {
		return fmt.Errorf("%w: incremental %016x recomputed %016x", ErrPositionDrift, inc[0], full[0])
	}
	return nil
}
