// Package scores persists each player's best solve.
//
// A player is either an account id or the anonymous cookie id of a guest.
// A solve is better when it is faster; equal times prefer fewer hints.
package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoScore is returned by Best for a player without a recorded solve.
var ErrNoScore = errors.New("scores: no score recorded")

// Result is one finished puzzle.
type Result struct {
	PlayerID  string
	ElapsedMs int64
	HintsUsed int
	Words     int
	Daily     string
}

// Best is a player's best solve plus their solve count.
type Best struct {
	PlayerID   string    `json:"playerId"`
	ElapsedMs  int64     `json:"elapsedMs"`
	HintsUsed  int       `json:"hintsUsed"`
	Words      int       `json:"words"`
	Daily      string    `json:"daily,omitempty"`
	Solves     int       `json:"solves"`
	AchievedAt time.Time `json:"achievedAt"`
}

// Store reads and writes the best_scores table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func better(elapsed int64, hints int, than Best) bool {
	if elapsed != than.ElapsedMs {
		return elapsed < than.ElapsedMs
	}
	return hints < than.HintsUsed
}

// Record counts a solve and keeps it if it beats the stored best.
// It reports whether r became the new best.
func (s *Store) Record(ctx context.Context, r Result) (bool, error) {
	if r.PlayerID == "" {
		return false, errors.New("scores: empty player id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := scanBest(tx.QueryRowContext(ctx, selectBest, r.PlayerID))
	now := s.now().Format(time.RFC3339)
	switch {
	case errors.Is(err, ErrNoScore):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO best_scores (player_id, elapsed_ms, hints_used, words, daily, solves, achieved_at)
			VALUES (?, ?, ?, ?, ?, 1, ?)`,
			r.PlayerID, r.ElapsedMs, r.HintsUsed, r.Words, r.Daily, now)
		if err != nil {
			return false, fmt.Errorf("insert best: %w", err)
		}
		return true, tx.Commit()
	case err != nil:
		return false, err
	}

	improved := better(r.ElapsedMs, r.HintsUsed, cur)
	if improved {
		_, err = tx.ExecContext(ctx, `
			UPDATE best_scores
			SET elapsed_ms=?, hints_used=?, words=?, daily=?, achieved_at=?, solves=solves+1
			WHERE player_id=?`,
			r.ElapsedMs, r.HintsUsed, r.Words, r.Daily, now, r.PlayerID)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE best_scores SET solves=solves+1 WHERE player_id=?`, r.PlayerID)
	}
	if err != nil {
		return false, fmt.Errorf("update best: %w", err)
	}
	return improved, tx.Commit()
}

// Best returns the stored best for playerID, or ErrNoScore.
func (s *Store) Best(ctx context.Context, playerID string) (Best, error) {
	return scanBest(s.db.QueryRowContext(ctx, selectBest, playerID))
}

// Claim moves a guest's best onto an account after signup or login.
// The better of the two survives and solve counts are summed.
func (s *Store) Claim(ctx context.Context, fromID, toID string) error {
	if fromID == "" || toID == "" || fromID == toID {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	guest, err := scanBest(tx.QueryRowContext(ctx, selectBest, fromID))
	if errors.Is(err, ErrNoScore) {
		return nil
	}
	if err != nil {
		return err
	}
	owner, err := scanBest(tx.QueryRowContext(ctx, selectBest, toID))
	switch {
	case errors.Is(err, ErrNoScore):
		_, err = tx.ExecContext(ctx, `UPDATE best_scores SET player_id=? WHERE player_id=?`, toID, fromID)
	case err != nil:
		return err
	case better(guest.ElapsedMs, guest.HintsUsed, owner):
		_, err = tx.ExecContext(ctx, `
			UPDATE best_scores
			SET elapsed_ms=?, hints_used=?, words=?, daily=?, achieved_at=?, solves=solves+?
			WHERE player_id=?`,
			guest.ElapsedMs, guest.HintsUsed, guest.Words, guest.Daily,
			guest.AchievedAt.Format(time.RFC3339), guest.Solves, toID)
		if err == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM best_scores WHERE player_id=?`, fromID)
		}
	default:
		_, err = tx.ExecContext(ctx, `UPDATE best_scores SET solves=solves+? WHERE player_id=?`, guest.Solves, toID)
		if err == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM best_scores WHERE player_id=?`, fromID)
		}
	}
	if err != nil {
		return fmt.Errorf("claim scores: %w", err)
	}
	return tx.Commit()
}

const selectBest = `
	SELECT player_id, elapsed_ms, hints_used, words, daily, solves, achieved_at
	FROM best_scores WHERE player_id=?`

func scanBest(row *sql.Row) (Best, error) {
	var b Best
	var achieved string
	err := row.Scan(&b.PlayerID, &b.ElapsedMs, &b.HintsUsed, &b.Words, &b.Daily, &b.Solves, &achieved)
	if errors.Is(err, sql.ErrNoRows) {
		return Best{}, ErrNoScore
	}
	if err != nil {
		return Best{}, err
	}
	b.AchievedAt, _ = time.Parse(time.RFC3339, achieved)
	return b, nil
}
