package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestPerft(t *testing.T) {
	pos := board.NewPosition()
	want := []uint64{1, 20, 400, 8902}
	for depth, n := range want {
		if got := Perft(pos, depth); got != n {
			t.Errorf("Perft(%d) = %d, want %d", depth, got, n)
		}
	}
}

func TestDivide(t *testing.T) {
	pos := board.NewPosition()
	entries, total := Divide(pos, 2)
	if total != 400 {
		t.Errorf("Divide total = %d, want 400", total)
	}
	if len(entries) != 20 {
		t.Fatalf("Divide returned %d root moves, want 20", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Move >= entries[i].Move {
			t.Errorf("entries not sorted: %s before %s", entries[i-1].Move, entries[i].Move)
		}
	}
	for _, e := range entries {
		if e.Nodes != 20 {
			t.Errorf("%s: %d nodes, want 20", e.Move, e.Nodes)
		}
	}
}

func TestPerftVerify(t *testing.T) {
	pos := mustParse(t, kiwipete)
	before := pos.FEN()

	nodes, err := PerftVerify(context.Background(), pos, 2)
	if err != nil {
		t.Fatalf("PerftVerify: %v", err)
	}
	if nodes != 2039 {
		t.Errorf("PerftVerify nodes = %d, want 2039", nodes)
	}
	if pos.FEN() != before {
		t.Errorf("position changed: %s", pos.FEN())
	}
}

func TestPerftVerifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PerftVerify(ctx, board.NewPosition(), 3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzeMateInOne(t *testing.T) {
	pos := mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	before := pos.FEN()

	eng := NewEngine(1)
	a, err := eng.Analyze(context.Background(), pos)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	best, ok := a.Best()
	if !ok {
		t.Fatal("no best move")
	}
	if best.String() != "a1a8" {
		t.Errorf("best move = %s, want a1a8", best)
	}
	if best.Score != board.MateScore {
		t.Errorf("best score = %d, want %d", best.Score, board.MateScore)
	}
	if a.Summary.Best != board.MateScore {
		t.Errorf("summary best = %d, want %d", a.Summary.Best, board.MateScore)
	}
	for i := 1; i < len(a.Moves); i++ {
		if a.Moves[i].Score > a.Moves[i-1].Score {
			t.Errorf("moves not sorted at %d: %d > %d", i, a.Moves[i].Score, a.Moves[i-1].Score)
		}
	}
	if pos.FEN() != before {
		t.Errorf("position changed: %s", pos.FEN())
	}
	if a.Side != board.White || a.FEN != before || a.ID != pos.ID {
		t.Errorf("analysis header = %s %q %s", a.Side, a.FEN, a.ID)
	}
}

func TestAnalyzeTerminal(t *testing.T) {
	tests := []struct {
		fen       string
		checkmate bool
		stalemate bool
	}{
		{"R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1", true, false},
		{"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, true},
	}

	eng := NewEngine(1)
	for _, tc := range tests {
		a, err := eng.Analyze(context.Background(), mustParse(t, tc.fen))
		if err != nil {
			t.Fatalf("%s: %v", tc.fen, err)
		}
		if len(a.Moves) != 0 {
			t.Errorf("%s: %d moves, want 0", tc.fen, len(a.Moves))
		}
		if a.Checkmate != tc.checkmate || a.Stalemate != tc.stalemate {
			t.Errorf("%s: checkmate %v stalemate %v", tc.fen, a.Checkmate, a.Stalemate)
		}
		if _, ok := a.Best(); ok {
			t.Errorf("%s: Best reported a move", tc.fen)
		}
	}
}

func TestAnalyzeUsesCache(t *testing.T) {
	eng := NewEngine(1)
	pos := board.NewPosition()

	first, err := eng.Analyze(context.Background(), pos)
	if err != nil {
		t.Fatal(err)
	}
	if eng.Cache().HitRate() != 0 {
		t.Errorf("hit rate after first analysis = %.1f, want 0", eng.Cache().HitRate())
	}

	second, err := eng.Analyze(context.Background(), pos)
	if err != nil {
		t.Fatal(err)
	}
	if eng.Cache().HitRate() < 45 {
		t.Errorf("hit rate after second analysis = %.1f, want about 50", eng.Cache().HitRate())
	}
	for i := range first.Moves {
		if !first.Moves[i].Same(second.Moves[i]) || first.Moves[i].Score != second.Moves[i].Score {
			t.Errorf("move %d differs: %s %d vs %s %d", i,
				first.Moves[i], first.Moves[i].Score, second.Moves[i], second.Moves[i].Score)
		}
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pos := board.NewPosition()
	if _, err := NewEngine(1).Analyze(ctx, pos); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if pos.FEN() != board.StartFEN {
		t.Errorf("position changed: %s", pos.FEN())
	}
}

func TestAnalyzeCallback(t *testing.T) {
	eng := NewEngine(1)
	calls := 0
	eng.OnAnalysis = func(a Analysis) {
		calls++
		if len(a.Moves) != 20 {
			t.Errorf("callback got %d moves, want 20", len(a.Moves))
		}
	}
	if _, err := eng.Analyze(context.Background(), board.NewPosition()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"not a fen",
		kiwipete,
		"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1",
	}

	eng := NewEngine(4)
	results, err := eng.AnalyzeBatch(context.Background(), fens, 3)
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(results) != len(fens) {
		t.Fatalf("got %d results, want %d", len(results), len(fens))
	}

	wantMoves := []int{20, 0, 48, 0}
	for i, r := range results {
		if r.FEN != fens[i] {
			t.Errorf("result %d is for %q, want %q", i, r.FEN, fens[i])
		}
		if i == 1 {
			if !errors.Is(r.Err, board.ErrInvalidFEN) {
				t.Errorf("invalid FEN error = %v", r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("%s: %v", r.FEN, r.Err)
			continue
		}
		if i != 3 && len(r.Analysis.Moves) != wantMoves[i] {
			t.Errorf("%s: %d moves, want %d", r.FEN, len(r.Analysis.Moves), wantMoves[i])
		}
	}

	if best, ok := results[3].Analysis.Best(); !ok || best.String() != "a1a8" {
		t.Errorf("batch mate-in-one best = %v", best)
	}

	single, err := NewEngine(1).Analyze(context.Background(), board.NewPosition())
	if err != nil {
		t.Fatal(err)
	}
	batched := results[0].Analysis.Moves
	for i := range single.Moves {
		if single.Moves[i].Score != batched[i].Score {
			t.Errorf("score %d: single %d, batched %d", i, single.Moves[i].Score, batched[i].Score)
		}
	}
}

func TestAnalyzeBatchErrors(t *testing.T) {
	eng := NewEngine(1)
	if _, err := eng.AnalyzeBatch(context.Background(), []string{board.StartFEN}, 0); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("zero workers err = %v, want ErrNoWorkers", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.AnalyzeBatch(ctx, []string{board.StartFEN, kiwipete}, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled err = %v, want context.Canceled", err)
	}
}

func TestScoreCache(t *testing.T) {
	sc := NewScoreCache(1)

	if _, ok := sc.Probe(1, 2, 0, board.White, board.Black); ok {
		t.Error("expected miss on empty cache")
	}
	sc.Store(1, 2, 0, board.White, board.Black, -1234)

	if s, ok := sc.Probe(1, 2, 0, board.White, board.Black); !ok || s != -1234 {
		t.Errorf("Probe = %d, %v; want -1234, true", s, ok)
	}
	if _, ok := sc.Probe(1, 2, 0, board.Black, board.Black); ok {
		t.Error("hit for the other perspective")
	}
	if _, ok := sc.Probe(1, 2, 0, board.White, board.White); ok {
		t.Error("hit for the other side to move")
	}
	if _, ok := sc.Probe(1, 3, 0, board.White, board.Black); ok {
		t.Error("hit with a different second key")
	}
	if _, ok := sc.Probe(1, 2, 9, board.White, board.Black); ok {
		t.Error("hit with a different state key")
	}

	sc.Store(5, 6, 0, board.Black, board.White, board.MaxScore)
	if s, _ := sc.Probe(5, 6, 0, board.Black, board.White); s != board.MaxScore {
		t.Errorf("bias score = %d, want %d", s, board.MaxScore)
	}

	if sc.Hashfull() == 0 {
		t.Error("Hashfull = 0 after stores")
	}
	sc.Clear()
	if _, ok := sc.Probe(1, 2, 0, board.White, board.Black); ok {
		t.Error("hit after Clear")
	}
	if sc.Hashfull() != 0 {
		t.Errorf("Hashfull = %d after Clear", sc.Hashfull())
	}
}

func TestSetPolicyClearsCache(t *testing.T) {
	eng := NewEngine(1)
	eng.Cache().Store(7, 8, 0, board.White, board.White, 42)

	p := board.Policy{HumanColor: board.Black, RepetitionBias: 500}
	eng.SetPolicy(p)
	if eng.Policy() != p {
		t.Errorf("Policy = %+v, want %+v", eng.Policy(), p)
	}
	if _, ok := eng.Cache().Probe(7, 8, 0, board.White, board.White); ok {
		t.Error("cache kept an entry across a policy change")
	}
}

func TestSummarize(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, ErrNoMoves) {
		t.Errorf("empty err = %v, want ErrNoMoves", err)
	}

	moves := board.Moves{{Score: 5}, {Score: 4}, {Score: 3}, {Score: 2}, {Score: 1}}
	s, err := Summarize(moves)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 5 || s.Best != 5 || s.Worst != 1 {
		t.Errorf("count/best/worst = %d/%d/%d", s.Count, s.Best, s.Worst)
	}
	if s.Mean != 3 || s.Median != 3 {
		t.Errorf("mean/median = %v/%v, want 3/3", s.Mean, s.Median)
	}
	if s.StdDev <= 1.4 || s.StdDev >= 1.5 {
		t.Errorf("stddev = %v, want ~1.414", s.StdDev)
	}
	if s.P80 < 1 || s.P80 > 5 {
		t.Errorf("P80 = %v out of range", s.P80)
	}

	c := Candidates(moves, s)
	if len(c) == 0 || c[0].Score != 5 {
		t.Errorf("candidates = %v", c.Strings())
	}
	for _, m := range c {
		if float64(m.Score) < s.P80 {
			t.Errorf("candidate %d below P80 %v", m.Score, s.P80)
		}
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{1500, "1.50"},
		{-250, "-0.25"},
		{5, "0.00"},
		{12345, "12.34"},
		{board.MateScore, "Mate"},
		{-board.MateScore, "Mated"},
		{board.MaxScore, "Repetition (favoured)"},
		{-board.MaxScore, "Repetition (avoided)"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestScoreCacheReplacement(t *testing.T) {
	sc := NewScoreCache(1)
	other := uint64(1) + sc.size // same slot as key 1

	sc.NewGeneration()
	sc.Store(1, 2, 0, board.White, board.White, 10)
	sc.Store(other, 2, 0, board.White, board.White, 20)
	if s, ok := sc.Probe(1, 2, 0, board.White, board.White); !ok || s != 10 {
		t.Errorf("same generation: Probe = %d, %v; want the first entry kept", s, ok)
	}

	sc.Store(1, 2, 0, board.White, board.White, 11)
	if s, _ := sc.Probe(1, 2, 0, board.White, board.White); s != 11 {
		t.Errorf("same position not updated: %d", s)
	}

	sc.NewGeneration()
	sc.Store(other, 2, 0, board.White, board.White, 20)
	if s, ok := sc.Probe(other, 2, 0, board.White, board.White); !ok || s != 20 {
		t.Errorf("new generation: Probe = %d, %v; want 20, true", s, ok)
	}
	if _, ok := sc.Probe(1, 2, 0, board.White, board.White); ok {
		t.Error("old entry survived replacement")
	}
}

func TestBatchKeepsCastlingStatesApart(t *testing.T) {
	const (
		withRights = "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPP1PPP/R1BQK2R w KQkq - 0 1"
		noRights   = "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPP1PPP/R1BQK2R w - - 0 1"
	)

	fresh, err := NewEngine(1).Analyze(context.Background(), mustParse(t, noRights))
	if err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(1)
	if _, err := eng.Analyze(context.Background(), mustParse(t, withRights)); err != nil {
		t.Fatal(err)
	}
	shared, err := eng.Analyze(context.Background(), mustParse(t, noRights))
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]int{}
	for _, m := range fresh.Moves {
		want[m.String()] = m.Score
	}
	for _, m := range shared.Moves {
		if want[m.String()] != m.Score {
			t.Errorf("%s scored %d after another castling state, want %d", m, m.Score, want[m.String()])
		}
	}

	results, err := eng.AnalyzeBatch(context.Background(), []string{withRights, noRights}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range results[1].Analysis.Moves {
		if want[m.String()] != m.Score {
			t.Errorf("batch: %s scored %d, want %d", m, m.Score, want[m.String()])
		}
	}
}

func TestAnalyzeBatchUsesPolicyAtStart(t *testing.T) {
	eng := NewEngine(1)
	p := board.Policy{HumanColor: board.White, RepetitionBias: 700}
	eng.SetPolicy(p)

	var mu sync.Mutex
	seen := 0
	eng.OnAnalysis = func(Analysis) {
		mu.Lock()
		seen++
		mu.Unlock()
	}
	fens := []string{board.StartFEN, kiwipete, board.StartFEN, kiwipete}
	if _, err := eng.AnalyzeBatch(context.Background(), fens, 4); err != nil {
		t.Fatal(err)
	}
	if seen != len(fens) {
		t.Errorf("OnAnalysis called %d times, want %d", seen, len(fens))
	}
	if eng.Policy() != p {
		t.Errorf("Policy = %+v, want %+v", eng.Policy(), p)
	}
}
