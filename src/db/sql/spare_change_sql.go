package db

import (
	"context"
	"time"

	"jandon-server/src/models"

	"github.com/shopspring/decimal"
)

// InsertSpareChange records the round-up for one transaction. (user_id, tx_id)
// is the primary key, so a duplicate insert from a retried or concurrent run
// collapses into a no-op.
func (t *accountTx) InsertSpareChange(ctx context.Context, sc models.SpareChange) (bool, error) {
	query := `
		INSERT INTO spare_change (user_id, tx_id, round_up, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, tx_id) DO NOTHING
	`
	tag, err := t.tx.Exec(ctx, query, sc.UserID, sc.TxID, sc.RoundUp)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListSpareChanges(ctx context.Context, userID int64) ([]models.SpareChange, error) {
	query := `
		SELECT user_id, tx_id, round_up, created_at
		FROM spare_change
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []models.SpareChange
	for rows.Next() {
		var sc models.SpareChange
		err := rows.Scan(&sc.UserID, &sc.TxID, &sc.RoundUp, &sc.CreatedAt)
		if err != nil {
			return nil, err
		}
		changes = append(changes, sc)
	}

	return changes, rows.Err()
}

// SpareChangeSummary sums a user's round-ups accrued in [start, end).
func (s *Store) SpareChangeSummary(ctx context.Context, userID int64, start, end time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(round_up), 0)
		FROM spare_change
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`
	var total decimal.Decimal
	err := s.Pool.QueryRow(ctx, query, userID, start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
