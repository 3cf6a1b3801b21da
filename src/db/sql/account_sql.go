package db

import (
	"context"
	"errors"

	"jandon-server/src/models"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	query := `
		SELECT id, user_id, institution_code, account_number, account_password_enc, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := s.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(&account.ID, &account.UserID, &account.InstitutionCode, &account.AccountNumber, &account.AccountPasswordEnc, &account.CreatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// FindInternetBanking looks up the credential bundle for (user, institution).
// A missing row is not an error: the caller skips the account for the cycle.
func (s *Store) FindInternetBanking(ctx context.Context, userID int64, institutionCode string) (*models.InternetBanking, error) {
	query := `
		SELECT id, user_id, institution_code, banking_id, banking_password_enc, created_at
		FROM internet_banking
		WHERE user_id = $1 AND institution_code = $2
	`
	var ib models.InternetBanking
	err := s.Pool.QueryRow(ctx, query, userID, institutionCode).Scan(
		&ib.ID,
		&ib.UserID,
		&ib.InstitutionCode,
		&ib.BankingID,
		&ib.BankingPasswordEnc,
		&ib.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ib, nil
}
