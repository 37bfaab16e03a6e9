package board

// fiftyMovePlies is the number of reversible plies after which a draw may
// be claimed.
const fiftyMovePlies = 100

// HalfMoveClock returns the number of plies since the last pawn move or
// capture, counting the clock the position was loaded with.
func (pos *Position) HalfMoveClock() int {
	n := 0
	for i := len(pos.history) - 1; i >= 0; i-- {
		if pos.history[i].irreversible {
			return n
		}
		n++
	}
	return n + pos.rootHalfMoveClock
}

// repetitionCount returns how many times the current position has occurred,
// looking back no further than the last irreversible move. Positions are
// compared by both hash lanes, and only at plies with the same side to move.
func (pos *Position) repetitionCount() int {
	n := len(pos.history)
	if n == 0 {
		return 1
	}
	cur := pos.history[n-1]
	want := hashPair{cur.HashA, cur.HashB}
	count := 1
	for i := n - 1; i >= 0; i-- {
		if pos.history[i].irreversible {
			break
		}
		j := i - 1 // position after history[j]; -1 is the loaded position
		if (n-1-j)%2 != 0 {
			continue
		}
		if pos.hashAfter(j) == want {
			count++
		}
	}
	return count
}

func (pos *Position) hashAfter(j int) hashPair {
	if j < 0 {
		return pos.rootHash
	}
	m := pos.history[j]
	return hashPair{m.HashA, m.HashB}
}

// IsThreeFoldRepetition reports whether the current position has occurred
// at least three times.
func (pos *Position) IsThreeFoldRepetition() bool {
	return pos.repetitionCount() >= 3
}

// CanClaimFiftyMoveDraw reports whether fifty moves by each side have
// passed without a pawn move or capture.
func (pl *Player) CanClaimFiftyMoveDraw() bool {
	return pl.pos.HalfMoveClock() >= fiftyMovePlies
}

// CanClaimThreeMoveRepetitionDraw reports whether the current position has
// occurred three times.
func (pl *Player) CanClaimThreeMoveRepetitionDraw() bool {
	return pl.pos.IsThreeFoldRepetition()
}

// CanClaimInsufficientMaterialDraw reports whether neither side can mate:
// king against king, or king against king and a single minor piece.
func (pl *Player) CanClaimInsufficientMaterialDraw() bool {
	a, b := pl, pl.Opponent()
	if a.pawnCount > 0 || b.pawnCount > 0 {
		return false
	}
	na, nb := len(a.pieces)-1, len(b.pieces)-1
	switch {
	case na == 0 && nb == 0:
		return true
	case na == 0 && nb == 1:
		return b.hasLoneMinor()
	case nb == 0 && na == 1:
		return a.hasLoneMinor()
	}
	return false
}

func (pl *Player) hasLoneMinor() bool {
	for _, id := range pl.pieces {
		switch pl.pos.pieces[id].kind {
		case Knight, Bishop:
			return true
		}
	}
	return false
}

// CanClaimDraw reports whether any draw claim is available.
func (pl *Player) CanClaimDraw() bool {
	return pl.CanClaimFiftyMoveDraw() ||
		pl.CanClaimThreeMoveRepetitionDraw() ||
		pl.CanClaimInsufficientMaterialDraw()
}
