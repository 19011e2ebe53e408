package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/seabattle/internal/services/match/storage"
)

// PutOutcome records the result of a finished match. Writing the same match
// twice keeps the first result.
func (s *Store) PutOutcome(ctx context.Context, outcome storage.Outcome) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(outcome.MatchID) == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(outcome.WinnerID) == "" {
		return fmt.Errorf("winner id is required")
	}
	if strings.TrimSpace(outcome.LoserID) == "" {
		return fmt.Errorf("loser id is required")
	}
	if strings.TrimSpace(string(outcome.Reason)) == "" {
		return fmt.Errorf("reason is required")
	}
	if outcome.FinishedAt.IsZero() {
		return fmt.Errorf("finished at is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO match_outcomes (match_id, winner_id, loser_id, reason, finished_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(match_id) DO NOTHING
`,
		strings.TrimSpace(outcome.MatchID),
		strings.TrimSpace(outcome.WinnerID),
		strings.TrimSpace(outcome.LoserID),
		string(outcome.Reason),
		toMillis(outcome.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("put outcome: %w", err)
	}
	return nil
}

// GetOutcome returns the recorded outcome of a match.
func (s *Store) GetOutcome(ctx context.Context, matchID string) (storage.Outcome, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Outcome{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT match_id, winner_id, loser_id, reason, finished_at
FROM match_outcomes
WHERE match_id = ?
`, strings.TrimSpace(matchID))

	outcome, err := scanOutcome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Outcome{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Outcome{}, fmt.Errorf("get outcome: %w", err)
	}
	return outcome, nil
}

// ListOutcomesByPlayer returns up to limit outcomes the player took part in,
// newest first.
func (s *Store) ListOutcomesByPlayer(ctx context.Context, playerID string, limit int) ([]storage.Outcome, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("player id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT match_id, winner_id, loser_id, reason, finished_at
FROM match_outcomes
WHERE winner_id = ? OR loser_id = ?
ORDER BY finished_at DESC, match_id ASC
LIMIT ?
`, playerID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []storage.Outcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}
	return outcomes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutcome(row rowScanner) (storage.Outcome, error) {
	var (
		outcome    storage.Outcome
		reason     string
		finishedAt int64
	)
	if err := row.Scan(&outcome.MatchID, &outcome.WinnerID, &outcome.LoserID, &reason, &finishedAt); err != nil {
		return storage.Outcome{}, err
	}
	outcome.Reason = storage.OutcomeReason(reason)
	outcome.FinishedAt = fromMillis(finishedAt)
	return outcome, nil
}
