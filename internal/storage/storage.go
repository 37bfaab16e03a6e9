package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	uuid "github.com/satori/go.uuid"
)

// Storage keys
const (
	keyPreferences    = "preferences"
	keyAnalysisPrefix = "analysis/"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPreference is returned for preferences that cannot be
	// converted to an evaluation policy.
	ErrInvalidPreference = errors.New("invalid preference")
)

// Preferences stores user settings for analysis.
type Preferences struct {
	HumanColor     string    `json:"human_color"` // "white", "black" or "none"
	RepetitionBias int       `json:"repetition_bias"`
	CacheMB        int       `json:"cache_mb"`
	Workers        int       `json:"workers"`
	LastUsed       time.Time `json:"last_used"`
}

// DefaultPreferences returns default preferences.
func DefaultPreferences() *Preferences {
	p := board.DefaultPolicy()
	return &Preferences{
		HumanColor:     "none",
		RepetitionBias: p.RepetitionBias,
		CacheMB:        engine.DefaultCacheMB,
		Workers:        4,
	}
}

// ParseColor parses a colour name.
func ParseColor(s string) (board.Color, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return board.NoColor, nil
	case "white", "w":
		return board.White, nil
	case "black", "b":
		return board.Black, nil
	}
	return board.NoColor, fmt.Errorf("%w: colour %q", ErrInvalidPreference, s)
}

// Policy converts the preferences to an evaluation policy.
func (p *Preferences) Policy() (board.Policy, error) {
	c, err := ParseColor(p.HumanColor)
	if err != nil {
		return board.Policy{}, err
	}
	if p.RepetitionBias < 0 {
		return board.Policy{}, fmt.Errorf("%w: negative repetition bias %d", ErrInvalidPreference, p.RepetitionBias)
	}
	pol := board.DefaultPolicy()
	pol.HumanColor = c
	if p.RepetitionBias != 0 {
		pol.RepetitionBias = p.RepetitionBias
	}
	return pol, nil
}

// ScoredMove is one move of a stored analysis.
type ScoredMove struct {
	Move  string `json:"move"`
	Score int    `json:"score"`
}

// AnalysisRecord is a persisted analysis, keyed by position hash.
type AnalysisRecord struct {
	ID        uuid.UUID    `json:"id"`
	Position  uuid.UUID    `json:"position"`
	HashA     uint64       `json:"hash_a"`
	HashB     uint64       `json:"hash_b"`
	FEN       string       `json:"fen"`
	Side      string       `json:"side"`
	Moves     []ScoredMove `json:"moves"`
	Mean      float64      `json:"mean"`
	Median    float64      `json:"median"`
	StdDev    float64      `json:"stddev"`
	P80       float64      `json:"p80"`
	Checkmate bool         `json:"checkmate"`
	Stalemate bool         `json:"stalemate"`
	Created   time.Time    `json:"created"`
}

// NewAnalysisRecord builds a record from an analysis.
func NewAnalysisRecord(a engine.Analysis) *AnalysisRecord {
	r := &AnalysisRecord{
		ID:        uuid.NewV4(),
		Position:  a.ID,
		HashA:     a.HashA,
		HashB:     a.HashB,
		FEN:       a.FEN,
		Side:      a.Side.String(),
		Mean:      a.Summary.Mean,
		Median:    a.Summary.Median,
		StdDev:    a.Summary.StdDev,
		P80:       a.Summary.P80,
		Checkmate: a.Checkmate,
		Stalemate: a.Stalemate,
		Created:   time.Now(),
	}
	for _, m := range a.Moves {
		r.Moves = append(r.Moves, ScoredMove{Move: m.String(), Score: m.Score})
	}
	return r
}

// Best returns the best stored move.
func (r *AnalysisRecord) Best() (ScoredMove, bool) {
	if len(r.Moves) == 0 {
		return ScoredMove{}, false
	}
	return r.Moves[0], true
}

func analysisKey(hashA, hashB uint64) []byte {
	k := make([]byte, len(keyAnalysisPrefix)+16)
	copy(k, keyAnalysisPrefix)
	binary.BigEndian.PutUint64(k[len(keyAnalysisPrefix):], hashA)
	binary.BigEndian.PutUint64(k[len(keyAnalysisPrefix)+8:], hashB)
	return k
}

// badgerLogger routes badger's log output through apex/log.
type badgerLogger struct {
	log.Interface
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Interface.Warnf(format, args...)
}

// Infof is demoted to debug; badger is chatty at info level.
func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Interface.Debugf(format, args...)
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the storage in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens the storage in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a storage that is discarded on Close.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = badgerLogger{log.WithField("component", "badger")}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// get decodes the value at key into v. It returns ErrNotFound when the key
// is absent.
func (s *Storage) get(key []byte, v interface{}) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SavePreferences saves preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	if _, err := prefs.Policy(); err != nil {
		return err
	}
	prefs.LastUsed = time.Now()
	return s.put([]byte(keyPreferences), prefs)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.get([]byte(keyPreferences), prefs)
	if errors.Is(err, ErrNotFound) {
		return prefs, nil
	}
	return prefs, err
}

// SaveAnalysis stores a record, replacing any record for the same position.
func (s *Storage) SaveAnalysis(r *AnalysisRecord) error {
	if err := s.put(analysisKey(r.HashA, r.HashB), r); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"id":    r.ID,
		"fen":   r.FEN,
		"moves": len(r.Moves),
	}).Debug("saved analysis")
	return nil
}

// LoadAnalysis returns the record for a position hash.
func (s *Storage) LoadAnalysis(hashA, hashB uint64) (*AnalysisRecord, error) {
	r := &AnalysisRecord{}
	if err := s.get(analysisKey(hashA, hashB), r); err != nil {
		return nil, fmt.Errorf("analysis %016x%016x: %w", hashA, hashB, err)
	}
	return r, nil
}

// DeleteAnalysis removes the record for a position hash.
func (s *Storage) DeleteAnalysis(hashA, hashB uint64) error {
	key := analysisKey(hashA, hashB)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// ListAnalyses returns every stored record in key order.
func (s *Storage) ListAnalyses() ([]*AnalysisRecord, error) {
	var records []*AnalysisRecord
	prefix := []byte(keyAnalysisPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			r := &AnalysisRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, r)
			})
			if err != nil {
				return err
			}
			records = append(records, r)
		}
		return nil
	})
	return records, err
}
