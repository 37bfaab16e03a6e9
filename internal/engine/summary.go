package engine

import (
	"errors"

	"github.com/hailam/chesscore/internal/board"
	"github.com/montanaflynn/stats"
)

// ErrNoMoves is returned when summarizing an empty move list.
var ErrNoMoves = errors.New("no moves")

// Summary describes the spread of scores in an analyzed move list.
type Summary struct {
	Count  int
	Best   int
	Worst  int
	Mean   float64
	Median float64
	StdDev float64

	// P80 is the score at the 80th percentile; moves at or above it are
	// the candidate set.
	P80 float64
}

// Summarize computes score statistics for a move list.
func Summarize(moves board.Moves) (Summary, error) {
	if len(moves) == 0 {
		return Summary{}, ErrNoMoves
	}

	scores := make([]int, 0, len(moves))
	for _, m := range moves {
		scores = append(scores, m.Score)
	}
	data := stats.LoadRawData(scores)

	s := Summary{Count: len(scores)}
	var err error
	var v float64
	if v, err = stats.Max(data); err != nil {
		return Summary{}, err
	}
	s.Best = int(v)
	if v, err = stats.Min(data); err != nil {
		return Summary{}, err
	}
	s.Worst = int(v)
	if s.Mean, err = stats.Mean(data); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return Summary{}, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return Summary{}, err
	}
	if s.P80, err = stats.Percentile(data, 80); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// Candidates returns the moves scoring at or above the 80th percentile.
// moves must be sorted by descending score.
func Candidates(moves board.Moves, s Summary) board.Moves {
	n := 0
	for n < len(moves) && float64(moves[n].Score) >= s.P80 {
		n++
	}
	return moves[:n]
}
