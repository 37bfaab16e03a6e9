// Command chesscore loads positions, checks move generation and prints
// one-ply analyses.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	fenFlag     = flag.String("fen", board.StartFEN, "position to load")
	fileFlag    = flag.String("file", "", "analyze every FEN in this file, one per line")
	movesFlag   = flag.String("moves", "", "space separated moves to play before analysis")
	perftFlag   = flag.Int("perft", 0, "run perft to this depth instead of analyzing")
	divideFlag  = flag.Bool("divide", false, "print per-move perft counts")
	verifyFlag  = flag.Bool("verify", false, "check hashes and undo at every perft node")
	dbFlag      = flag.String("db", "", "database directory (default: platform data dir, \"none\" disables)")
	humanFlag   = flag.String("human", "", "colour of the human player (white, black, none)")
	workersFlag = flag.Int("workers", 0, "batch analysis workers (default from preferences)")
	cacheFlag   = flag.Int("cache", 0, "score cache size in MB (default from preferences)")
	saveFlag    = flag.Bool("save", false, "store flags as preferences")
	verbose     = flag.Bool("v", false, "verbose logging")
)

func main() {
	flag.Parse()

	log.SetHandler(cli.Default)
	if *verbose {
		log.SetLevel(log.DebugLevel)
		board.DebugHashValidation = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		log.WithError(err).Fatal("chesscore")
	}
}

func run(ctx context.Context, out io.Writer) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	prefs := storage.DefaultPreferences()
	if store != nil {
		if prefs, err = store.LoadPreferences(); err != nil {
			return err
		}
	}
	applyFlags(prefs)
	if store != nil && *saveFlag {
		if err := store.SavePreferences(prefs); err != nil {
			return err
		}
		log.Info("preferences saved")
	}

	policy, err := prefs.Policy()
	if err != nil {
		return err
	}
	eng := engine.NewEngine(prefs.CacheMB)
	eng.SetPolicy(policy)

	if *fileFlag != "" {
		return runBatch(ctx, out, eng, store, prefs.Workers)
	}

	pos, err := board.ParseFEN(*fenFlag)
	if err != nil {
		return err
	}
	if err := playMoves(pos, *movesFlag); err != nil {
		return err
	}

	if *perftFlag > 0 {
		return runPerft(ctx, out, pos, *perftFlag)
	}

	a, err := eng.Analyze(ctx, pos)
	if err != nil {
		return err
	}
	printAnalysis(out, pos, a)
	printClaims(out, pos)
	return saveRecord(store, a)
}

func openStorage() (*storage.Storage, error) {
	switch *dbFlag {
	case "none":
		return nil, nil
	case "":
		return storage.NewStorage()
	default:
		return storage.Open(*dbFlag)
	}
}

func applyFlags(prefs *storage.Preferences) {
	if *humanFlag != "" {
		prefs.HumanColor = *humanFlag
	}
	if *workersFlag > 0 {
		prefs.Workers = *workersFlag
	}
	if *cacheFlag > 0 {
		prefs.CacheMB = *cacheFlag
	}
}

func playMoves(pos *board.Position, moves string) error {
	for _, s := range strings.Fields(moves) {
		m, ok := pos.PlayerToMove().LegalMoves().Find(s)
		if !ok {
			return fmt.Errorf("illegal move %q in %s", s, pos.FEN())
		}
		pos.MakeMove(m)
	}
	return nil
}

func runPerft(ctx context.Context, out io.Writer, pos *board.Position, depth int) error {
	start := time.Now()
	var nodes uint64

	switch {
	case *verifyFlag:
		var err error
		if nodes, err = engine.PerftVerify(ctx, pos, depth); err != nil {
			return err
		}
	case *divideFlag:
		var entries []engine.DivideEntry
		entries, nodes = engine.Divide(pos, depth)
		for _, e := range entries {
			fmt.Fprintf(out, "%s: %d\n", e.Move, e.Nodes)
		}
	default:
		nodes = engine.Perft(pos, depth)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(out, "perft(%d) = %d\n", depth, nodes)
	log.WithFields(log.Fields{
		"depth":   depth,
		"nodes":   nodes,
		"elapsed": elapsed,
		"nps":     int64(float64(nodes) / elapsed.Seconds()),
	}).Info("perft")
	return nil
}

func runBatch(ctx context.Context, out io.Writer, eng *engine.Engine, store *storage.Storage, workers int) error {
	fens, err := readFENs(*fileFlag)
	if err != nil {
		return err
	}

	results, err := eng.AnalyzeBatch(ctx, fens, workers)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.WithError(r.Err).WithField("fen", r.FEN).Warn("skipped")
			continue
		}
		best := "(none)"
		if m, ok := r.Analysis.Best(); ok {
			best = m.String() + " " + engine.ScoreToString(m.Score)
		}
		fmt.Fprintf(out, "%s\t%s\n", r.FEN, best)
		if err := saveRecord(store, r.Analysis); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"positions": len(results),
		"failed":    failed,
		"hit_rate":  fmt.Sprintf("%.1f%%", eng.Cache().HitRate()),
	}).Info("batch complete")
	return nil
}

func readFENs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fens []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fens = append(fens, line)
	}
	return fens, sc.Err()
}

func saveRecord(store *storage.Storage, a engine.Analysis) error {
	if store == nil {
		return nil
	}
	return store.SaveAnalysis(storage.NewAnalysisRecord(a))
}

func printAnalysis(out io.Writer, pos *board.Position, a engine.Analysis) {
	fmt.Fprintln(out, pos)
	fmt.Fprintf(out, "FEN: %s\n", a.FEN)
	fmt.Fprintf(out, "Stage: %s  Side: %s\n", pos.Stage(), a.Side)

	switch {
	case a.Checkmate:
		fmt.Fprintf(out, "%s is checkmated\n", a.Side)
		return
	case a.Stalemate:
		fmt.Fprintf(out, "%s is stalemated\n", a.Side)
		return
	}

	for i, m := range a.Moves {
		mark := " "
		if float64(m.Score) >= a.Summary.P80 {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %2d. %-6s %s\n", mark, i+1, m, engine.ScoreToString(m.Score))
	}
	fmt.Fprintf(out, "mean %s  median %s  stddev %.0f\n",
		engine.ScoreToString(int(a.Summary.Mean)),
		engine.ScoreToString(int(a.Summary.Median)),
		a.Summary.StdDev)
}

func printClaims(out io.Writer, pos *board.Position) {
	pl := pos.PlayerToMove()
	var claims []string
	if pl.CanClaimFiftyMoveDraw() {
		claims = append(claims, "fifty-move")
	}
	if pl.CanClaimThreeMoveRepetitionDraw() {
		claims = append(claims, "repetition")
	}
	if pl.CanClaimInsufficientMaterialDraw() {
		claims = append(claims, "insufficient material")
	}
	if len(claims) > 0 {
		fmt.Fprintf(out, "%s may claim a draw: %s\n", pl.Color(), strings.Join(claims, ", "))
	}
}
