package board

import (
	"fmt"

	"github.com/apex/log"
	"golang.org/x/exp/slices"
)

// DebugHashValidation makes MakeMove and UnmakeMove compare the
// incremental hashes against a full recomputation and log any drift.
var DebugHashValidation = false

// castleRookSquares returns the rook's origin and destination for a
// castling king landing on kingTo.
func castleRookSquares(kingTo Square, kind MoveKind) (from, to Square) {
	if kind == CastleKingSide {
		return kingTo + East, kingTo + West
	}
	return kingTo + 2*West, kingTo + East
}

// hashDelta returns the value to XOR into the position and pawn
// accumulators for a move, computed from the pieces' state before the move.
// captured.id is NoPiece when nothing is taken; rook is only read for
// castling moves.
func hashDelta(mover pieceState, from, to Square, captured pieceState, capturedSq Square, kind MoveKind, rook pieceState) (full, pawns hashPair) {
	out := contribution(mover, from)
	full = full.xor(out)
	if mover.kind == Pawn {
		pawns = pawns.xor(out)
	}

	if captured.id != NoPiece {
		h := contribution(captured, capturedSq)
		full = full.xor(h)
		if captured.kind == Pawn {
			pawns = pawns.xor(h)
		}
	}

	after := mover
	if k := kind.Promotion(); k != NoKind {
		after.kind = k
		after.promoted = true
	}
	in := contribution(after, to)
	full = full.xor(in)
	if after.kind == Pawn {
		pawns = pawns.xor(in)
	}

	if kind.IsCastle() {
		rf, rt := castleRookSquares(to, kind)
		full = full.xor(contribution(rook, rf)).xor(contribution(rook, rt))
	}
	return full, pawns
}

// MakeMove executes a move produced by the move generator and returns the
// history record. Moves the generator did not produce must not be passed.
func (pos *Position) MakeMove(m Move) Move {
	if m.Kind == NullMove {
		return pos.makeNullMove()
	}

	p := pos.PieceAt(m.From)
	if p == nil || p.id != m.Piece {
		panic(fmt.Sprintf("board: make %s: piece %d is not on %s", m, m.Piece, m.From))
	}
	mover := pos.players[p.color]

	rec := m
	rec.Captured = NoPiece
	rec.CapturedIndex = -1
	rec.Repeated = false

	capturedSq := m.To
	if m.Kind == EnPassant {
		capturedSq = m.To - Square(mover.Advance())
	}
	captured := pieceState{id: NoPiece}
	if c := pos.PieceAt(capturedSq); c != nil {
		if c.color == p.color {
			panic(fmt.Sprintf("board: make %s: captures own %s", m, c))
		}
		captured = c.state()
	}

	rook := pieceState{id: NoPiece}
	var rookFrom, rookTo Square
	var rookPiece *Piece
	if m.Kind.IsCastle() {
		rookFrom, rookTo = castleRookSquares(m.To, m.Kind)
		rookPiece = pos.PieceAt(rookFrom)
		if rookPiece == nil || rookPiece.kind != Rook || rookPiece.color != p.color {
			panic(fmt.Sprintf("board: make %s: no rook on %s", m, rookFrom))
		}
		rook = rookPiece.state()
	}

	rec.irreversible = p.kind == Pawn || captured.id != NoPiece
	rec.deltaFull, rec.deltaPawns = hashDelta(p.state(), m.From, m.To, captured, capturedSq, m.Kind, rook)

	if captured.id != NoPiece {
		rec.Captured = captured.id
		rec.CapturedIndex = pos.removeFromPlay(captured.id)
	}

	pos.turn++
	rec.Turn = pos.turn
	rec.priorLastTurn = p.lastTurnMoved

	pos.board.cells[m.From] = NoPiece
	pos.board.cells[m.To] = p.id
	p.sq = m.To
	p.movesMade++
	p.lastTurnMoved = pos.turn

	switch {
	case rookPiece != nil:
		rec.rookPriorLastTurn = rookPiece.lastTurnMoved
		pos.board.cells[rookFrom] = NoPiece
		pos.board.cells[rookTo] = rookPiece.id
		rookPiece.sq = rookTo
		rookPiece.movesMade++
		rookPiece.lastTurnMoved = pos.turn
	case m.Kind.IsPromotion():
		p.promote(m.Kind.Promotion())
	}

	pos.toggleRepetitionMark()
	pos.board.apply(rec.deltaFull, rec.deltaPawns)

	rec.HashA = pos.board.HashA
	rec.HashB = pos.board.HashB
	rec.PawnHashA = pos.board.PawnHashA
	rec.PawnHashB = pos.board.PawnHashB
	rec.MoverInCheck = mover.IsInCheck()
	rec.OpponentInCheck = mover.Opponent().IsInCheck()
	rec.MoverInCheckMate = false
	rec.OpponentInCheckMate = false

	pos.history = append(pos.history, rec)
	if pos.repetitionCount() >= 3 {
		pos.board.perturb()
		rec.Repeated = true
		pos.history[len(pos.history)-1].Repeated = true
	}

	if DebugHashValidation {
		pos.validateHashes("make", rec)
	}
	return rec
}

func (pos *Position) makeNullMove() Move {
	mover := pos.PlayerToMove()
	pos.toggleRepetitionMark()
	pos.turn++
	rec := Move{
		Turn:            pos.turn,
		Kind:            NullMove,
		Piece:           NoPiece,
		From:            NoSquare,
		To:              NoSquare,
		Captured:        NoPiece,
		CapturedIndex:   -1,
		HashA:           pos.board.HashA,
		HashB:           pos.board.HashB,
		PawnHashA:       pos.board.PawnHashA,
		PawnHashB:       pos.board.PawnHashB,
		MoverInCheck:    mover.IsInCheck(),
		OpponentInCheck: mover.Opponent().IsInCheck(),
	}
	pos.history = append(pos.history, rec)
	return rec
}

// UnmakeMove reverses the most recent MakeMove and pops it from history.
func (pos *Position) UnmakeMove() {
	n := len(pos.history)
	if n == 0 {
		panic("board: unmake with empty history")
	}
	rec := pos.history[n-1]
	pos.history = pos.history[:n-1]

	if rec.Repeated {
		pos.board.perturb()
	}
	if rec.Kind == NullMove {
		pos.turn--
		pos.toggleRepetitionMark()
		return
	}

	p := &pos.pieces[rec.Piece]
	pos.board.apply(rec.deltaFull, rec.deltaPawns)

	switch {
	case rec.Kind.IsCastle():
		rookFrom, rookTo := castleRookSquares(rec.To, rec.Kind)
		rook := &pos.pieces[pos.board.cells[rookTo]]
		pos.board.cells[rookTo] = NoPiece
		pos.board.cells[rookFrom] = rook.id
		rook.sq = rookFrom
		rook.movesMade--
		rook.lastTurnMoved = rec.rookPriorLastTurn
	case rec.Kind.IsPromotion():
		p.demote()
	}

	pos.board.cells[rec.To] = NoPiece
	pos.board.cells[rec.From] = p.id
	p.sq = rec.From
	p.movesMade--
	p.lastTurnMoved = rec.priorLastTurn

	if rec.Captured != NoPiece {
		pos.reinsert(rec.Captured, rec.CapturedIndex)
	}
	pos.turn--
	pos.toggleRepetitionMark()

	if DebugHashValidation {
		pos.validateHashes("unmake", rec)
	}
}

// lastRepeated reports whether the live hash carries the repetition
// perturbation of the latest history entry.
func (pos *Position) lastRepeated() bool {
	n := len(pos.history)
	return n > 0 && pos.history[n-1].Repeated
}

// toggleRepetitionMark XORs the latest entry's perturbation into the live
// hash. MakeMove strips it before applying a move on top and UnmakeMove puts
// it back after popping, so stored snapshots stay unperturbed.
func (pos *Position) toggleRepetitionMark() {
	if pos.lastRepeated() {
		pos.board.perturb()
	}
}

// removeFromPlay takes a piece off the board, moves it to the opponent's
// captured list and returns its former index in its owner's piece list.
func (pos *Position) removeFromPlay(id PieceID) int {
	p := &pos.pieces[id]
	owner := pos.players[p.color]
	idx := slices.Index(owner.pieces, id)
	if idx < 0 {
		panic(fmt.Sprintf("board: capture %s: not in its owner's piece list", p))
	}
	owner.pieces = slices.Delete(owner.pieces, idx, idx+1)
	taker := pos.players[p.color.Other()]
	taker.captured = append(taker.captured, id)

	switch p.kind {
	case Pawn:
		owner.pawnCount--
	case King:
	default:
		owner.material -= kinds[p.kind].basicValue
	}
	p.inPlay = false
	if pos.board.cells[p.sq] == id {
		pos.board.cells[p.sq] = NoPiece
	}
	return idx
}

// reinsert puts a captured piece back at idx in its owner's piece list and
// on its square.
func (pos *Position) reinsert(id PieceID, idx int) {
	p := &pos.pieces[id]
	owner := pos.players[p.color]
	taker := pos.players[p.color.Other()]
	last := len(taker.captured) - 1
	if last < 0 || taker.captured[last] != id {
		panic(fmt.Sprintf("board: reinsert %s: not the most recent capture", p))
	}
	taker.captured = taker.captured[:last]
	owner.pieces = slices.Insert(owner.pieces, idx, id)

	switch p.kind {
	case Pawn:
		owner.pawnCount++
	case King:
	default:
		owner.material += kinds[p.kind].basicValue
	}
	p.inPlay = true
	pos.board.cells[p.sq] = id
}

// filterLegal keeps the moves that do not leave the mover's king attacked.
func (pos *Position) filterLegal(ms Moves) Moves {
	legal := ms[:0]
	for _, m := range ms {
		rec := pos.MakeMove(m)
		ok := !rec.MoverInCheck
		pos.UnmakeMove()
		if ok {
			legal = append(legal, m)
		}
	}
	return legal
}

// ResolveMates fills the checkmate flags of the most recent history entry.
// MakeMove leaves them unset because deciding mate needs legal move
// generation, which itself calls MakeMove.
func (pos *Position) ResolveMates() {
	n := len(pos.history)
	if n == 0 {
		return
	}
	last := pos.history[n-1]
	mover := pos.PlayerToMove().Opponent()
	moverMated := last.MoverInCheck && !mover.CanMove()
	opponentMated := last.OpponentInCheck && !mover.Opponent().CanMove()

	// CanMove appends to history, so index it afresh.
	rec := &pos.history[len(pos.history)-1]
	rec.MoverInCheckMate = moverMated
	rec.OpponentInCheckMate = opponentMated
}

func (pos *Position) validateHashes(op string, m Move) {
	full, pawns := pos.computeHashes()
	if n := len(pos.history); n > 0 && pos.history[n-1].Repeated {
		full = full.xor(hashPair{repetitionPerturbA, repetitionPerturbB})
	}
	b := &pos.board
	if full.a == b.HashA && full.b == b.HashB && pawns.a == b.PawnHashA && pawns.b == b.PawnHashB {
		return
	}
	log.WithFields(log.Fields{
		"game":      pos.ID.String(),
		"op":        op,
		"move":      m.String(),
		"hashA":     fmt.Sprintf("%016x", b.HashA),
		"wantHashA": fmt.Sprintf("%016x", full.a),
		"pawnHashA": fmt.Sprintf("%016x", b.PawnHashA),
		"wantPawnA": fmt.Sprintf("%016x", pawns.a),
	}).Error("incremental hash drift")
}
