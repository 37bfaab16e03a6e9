package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/hailam/chesscore/internal/board"
	uuid "github.com/satori/go.uuid"
)

// Default table sizes in MB.
const (
	DefaultCacheMB = 16
	pawnTableMB    = 1
)

// Analysis is the result of scoring every legal move in a position.
type Analysis struct {
	ID      uuid.UUID // position ID
	FEN     string
	HashA   uint64
	HashB   uint64
	Side    board.Color
	Moves   board.Moves // best first, Score from Side's point of view
	Summary Summary
	Nodes   uint64
	Time    time.Duration

	// Terminal state of the position when Moves is empty.
	Checkmate bool
	Stalemate bool
}

// Best returns the highest scoring move.
func (a Analysis) Best() (board.Move, bool) {
	if len(a.Moves) == 0 {
		return board.Move{}, false
	}
	return a.Moves[0], true
}

// Engine scores positions one ply deep. Scores are shared through a
// ScoreCache so batches of related positions reuse work.
type Engine struct {
	cache  *ScoreCache
	policy board.Policy

	mu    sync.Mutex // guards policy, and pawns for Analyze
	pawns *board.PawnTable

	// OnAnalysis is called after each analysis. AnalyzeBatch calls it
	// from its worker goroutines concurrently.
	OnAnalysis func(Analysis)
}

// NewEngine creates a new engine with the given score cache size in MB.
func NewEngine(cacheMB int) *Engine {
	return &Engine{
		cache:  NewScoreCache(cacheMB),
		policy: board.DefaultPolicy(),
		pawns:  board.NewPawnTable(pawnTableMB),
	}
}

// SetPolicy sets the scoring policy. Cached scores depend on it, so the
// cache is cleared.
func (e *Engine) SetPolicy(p board.Policy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = p
	e.cache.Clear()
}

// Policy returns the scoring policy.
func (e *Engine) Policy() board.Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy
}

// Cache returns the engine's score cache.
func (e *Engine) Cache() *ScoreCache {
	return e.cache
}

// Clear clears the score cache and pawn table.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Clear()
	e.pawns.Clear()
}

// Analyze scores every legal move of the side to move and returns them best
// first. The position is restored before returning.
func (e *Engine) Analyze(ctx context.Context, pos *board.Position) (Analysis, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.analyze(ctx, pos, e.policy, e.pawns)
}

func (e *Engine) analyze(ctx context.Context, pos *board.Position, policy board.Policy, pawns *board.PawnTable) (Analysis, error) {
	start := time.Now()
	e.cache.NewGeneration()
	pos.SetPolicy(policy)
	pos.SetPawnTable(pawns)

	mover := pos.PlayerToMove()
	b := pos.Board()
	a := Analysis{
		ID:    pos.ID,
		FEN:   pos.FEN(),
		HashA: b.HashA,
		HashB: b.HashB,
		Side:  mover.Color(),
	}

	moves := mover.LegalMoves()
	for i := range moves {
		if err := ctx.Err(); err != nil {
			return Analysis{}, err
		}
		pos.MakeMove(moves[i])
		moves[i].Score = e.score(pos, mover)
		pos.UnmakeMove()
		a.Nodes++
	}
	moves.SortByScore()
	a.Moves = moves
	a.Time = time.Since(start)

	if len(moves) == 0 {
		a.Checkmate = mover.IsInCheck()
		a.Stalemate = !a.Checkmate
	} else {
		s, err := Summarize(moves)
		if err != nil {
			return Analysis{}, err
		}
		a.Summary = s
	}

	if e.OnAnalysis != nil {
		e.OnAnalysis(a)
	}
	return a, nil
}

// score returns pl's score for the current position, from the cache when
// possible.
func (e *Engine) score(pos *board.Position, pl *board.Player) int {
	b := pos.Board()
	state := pos.StateKey()
	toMove := pos.SideToMove()
	if s, ok := e.cache.Probe(b.HashA, b.HashB, state, pl.Color(), toMove); ok {
		return s
	}
	s := pl.Score()
	e.cache.Store(b.HashA, b.HashB, state, pl.Color(), toMove, s)
	return s
}

// BatchResult is the outcome of analyzing one FEN in a batch.
type BatchResult struct {
	FEN      string
	Analysis Analysis
	Err      error
}

// ErrNoWorkers is returned by AnalyzeBatch for a non-positive worker count.
var ErrNoWorkers = errors.New("at least one worker required")

// AnalyzeBatch analyzes each FEN on its own position, using up to workers
// goroutines. Results are returned in input order. A FEN that fails to
// parse or analyze records its error in its result; only context
// cancellation fails the whole batch. The policy in effect when the batch
// starts applies to every FEN.
func (e *Engine) AnalyzeBatch(ctx context.Context, fens []string, workers int) ([]BatchResult, error) {
	if workers < 1 {
		return nil, ErrNoWorkers
	}
	policy := e.Policy()
	if workers > len(fens) {
		workers = len(fens)
	}

	results := make([]BatchResult, len(fens))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			// Pawn tables are not safe for concurrent use.
			pawns := board.NewPawnTable(pawnTableMB)
			for i := range jobs {
				results[i] = e.analyzeFEN(ctx, fens[i], policy, pawns)
				log.WithFields(log.Fields{
					"worker": id,
					"fen":    fens[i],
					"moves":  len(results[i].Analysis.Moves),
				}).Debug("analyzed")
			}
		}(w)
	}

feed:
	for i := range fens {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) analyzeFEN(ctx context.Context, fen string, policy board.Policy, pawns *board.PawnTable) BatchResult {
	r := BatchResult{FEN: fen}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		r.Err = err
		return r
	}
	r.Analysis, r.Err = e.analyze(ctx, pos, policy, pawns)
	return r
}

// ScoreToString converts a score to a human-readable string in pawns.
func ScoreToString(score int) string {
	switch {
	case score >= board.MaxScore:
		return "Repetition (favoured)"
	case score <= -board.MaxScore:
		return "Repetition (avoided)"
	case score >= board.MateScore:
		return "Mate"
	case score <= -board.MateScore:
		return "Mated"
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / board.PawnValue
	hundredths := (score % board.PawnValue) / 10

	frac := itoa(hundredths)
	if hundredths < 10 {
		frac = "0" + frac
	}
	return sign + itoa(pawns) + "." + frac
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
