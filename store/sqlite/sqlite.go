/*
Package sqlite provides the SQLite-backed vote ledger.

PURPOSE:
  Implements the durable side of the system: canonical user and candidate
  records, the append-only votes table, and the voices table holding the
  durable (candidate, keyword) projection. The tally engine reads from
  here only at initialization and at the moment a vote is recorded; all
  hot-path aggregation happens against the in-memory counter store.

KEY TABLES:
  users:      Registered voters with their fixed vote budget
  candidates: The candidate roster
  votes:      Immutable vote facts (append-only, reset only wholesale)
  voices:     Upsert-increment keyword tallies, kept converged with the
              in-memory tally so keyword state survives a restart

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements touch votes, with one exception: the
  administrative reset, which clears votes and voices wholesale.

WAL MODE:
  SQLite is opened with WAL so readers do not block the single writer.

SEE ALSO:
  - tally/engine.go: The only writer
  - seed.go: YAML fixture loading
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/vote-engine/tally"
)

// Store implements the vote ledger on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a ledger at the given path. Use ":memory:" for
// an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		mynumber TEXT NOT NULL UNIQUE,
		votes INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_identity
		ON users(name, address, mynumber);

	CREATE TABLE IF NOT EXISTS candidates (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		political_party TEXT NOT NULL,
		sex TEXT NOT NULL
	);

	-- Vote facts (append-only)
	CREATE TABLE IF NOT EXISTS votes (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		candidate_id INTEGER NOT NULL,
		keyword TEXT NOT NULL,
		count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_votes_candidate
		ON votes(candidate_id);

	-- Durable keyword projection (upsert-increment)
	CREATE TABLE IF NOT EXISTS voices (
		candidate_id INTEGER NOT NULL,
		keyword TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (candidate_id, keyword)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

// LookupUser matches the three identity fields against the users table.
// Returns nil (no error) when no user matches.
func (s *Store) LookupUser(ctx context.Context, name, address, mynumber string) (*tally.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u tally.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, address, mynumber, votes FROM users WHERE name = ? AND address = ? AND mynumber = ?",
		name, address, mynumber,
	).Scan(&u.ID, &u.Name, &u.Address, &u.MyNumber, &u.Votes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// =============================================================================
// CANDIDATES
// =============================================================================

// ListCandidates returns the full roster in id order. This is the
// discovery order used for ranking tie-breaks.
func (s *Store) ListCandidates(ctx context.Context) ([]tally.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, political_party, sex FROM candidates ORDER BY id ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []tally.Candidate
	for rows.Next() {
		var c tally.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Party, &c.Sex); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// =============================================================================
// VOTES (append-only)
// =============================================================================

// AppendVote records one accepted vote fact and folds its keyword into the
// durable voices projection, atomically. The store assigns the fact id and
// timestamp.
func (s *Store) AppendVote(ctx context.Context, fact tally.VoteFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx,
		"INSERT INTO votes (id, user_id, candidate_id, keyword, count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), fact.UserID, fact.CandidateID, fact.Keyword, fact.Count,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append vote: %w", err)
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO voices (candidate_id, keyword, count) VALUES (?, ?, ?)
		ON CONFLICT(candidate_id, keyword) DO UPDATE SET
			count = voices.count + excluded.count
	`, fact.CandidateID, fact.Keyword, fact.Count)
	if err != nil {
		return fmt.Errorf("failed to increment voice: %w", err)
	}

	return sqlTx.Commit()
}

// CountVotes returns the total accepted vote units (sum of per-fact
// counts). Used to verify the counter/ledger sum invariant.
func (s *Store) CountVotes(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(count), 0) FROM votes",
	).Scan(&total)
	return total, err
}

// CandidateVoteTotals returns accepted vote units per candidate, weighted
// by count. Used to rebuild the counter store after a restart.
func (s *Store) CandidateVoteTotals(ctx context.Context) (map[tally.CandidateID]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT candidate_id, SUM(count) FROM votes GROUP BY candidate_id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[tally.CandidateID]int64)
	for rows.Next() {
		var id tally.CandidateID
		var total int64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		totals[id] = total
	}
	return totals, rows.Err()
}

// RemainingBudgets returns budget minus consumed units for every user who
// has cast at least one vote. Users who never voted are absent; their
// budget counter is lazily seeded on first vote instead.
func (s *Store) RemainingBudgets(ctx context.Context) (map[tally.UserID]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.votes - SUM(v.count)
		FROM users u
		JOIN votes v ON v.user_id = u.id
		GROUP BY u.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make(map[tally.UserID]int64)
	for rows.Next() {
		var id tally.UserID
		var remaining int64
		if err := rows.Scan(&id, &remaining); err != nil {
			return nil, err
		}
		budgets[id] = remaining
	}
	return budgets, rows.Err()
}

// AllVoices dumps the durable keyword projection, largest tallies first.
func (s *Store) AllVoices(ctx context.Context) ([]tally.Voice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT candidate_id, keyword, count FROM voices ORDER BY count DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var voices []tally.Voice
	for rows.Next() {
		var v tally.Voice
		if err := rows.Scan(&v.CandidateID, &v.Keyword, &v.Count); err != nil {
			return nil, err
		}
		voices = append(voices, v)
	}
	return voices, rows.Err()
}

// TopKeywords returns up to limit keywords for the given candidates from
// the durable projection, descending by cumulative count. This is the
// recovery path; the hot path reads the in-memory tally instead.
func (s *Store) TopKeywords(ctx context.Context, ids []tally.CandidateID, limit int) ([]tally.KeywordCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`
		SELECT keyword, SUM(count) AS total
		FROM voices
		WHERE candidate_id IN (%s)
		GROUP BY keyword
		ORDER BY total DESC
		LIMIT ?
	`, placeholders)

	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []tally.KeywordCount
	for rows.Next() {
		var kc tally.KeywordCount
		if err := rows.Scan(&kc.Keyword, &kc.Count); err != nil {
			return nil, err
		}
		keywords = append(keywords, kc)
	}
	return keywords, rows.Err()
}

// ResetVotes deletes all vote facts and the voices projection. Users and
// candidates are untouched. Administrative; see Engine.Initialize for the
// exclusivity contract.
func (s *Store) ResetVotes(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"votes", "voices"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
