package db

import (
	"context"

	"jandon-server/src/models"
)

// InsertTransaction inserts one ledger entry, keyed by the derived identity.
// A conflicting id means the event was already ingested by an earlier or
// concurrent run; the insert becomes a no-op and false is returned.
func (t *accountTx) InsertTransaction(ctx context.Context, txn models.Transaction) (bool, error) {
	query := `
		INSERT INTO transactions (id, user_id, account_id, amount, tx_type, memo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := t.tx.Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.AccountID,
		txn.Amount,
		txn.TxType,
		txn.Memo,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) GetTransactionsByAccount(ctx context.Context, userID, accountID int64) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, amount, tx_type, memo, created_at
		FROM transactions
		WHERE user_id = $1 AND account_id = $2
		ORDER BY created_at DESC
	`
	rows, err := s.Pool.Query(ctx, query, userID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(&txn.ID, &txn.UserID, &txn.AccountID, &txn.Amount, &txn.TxType, &txn.Memo, &txn.CreatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}
