package db

import (
	"context"
	"errors"
	"fmt"

	"jandon-server/src/models"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, email, round_up_unit, created_at
		FROM users
		ORDER BY id
	`
	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.RoundUpUnit, &user.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (s *Store) GetRoundUpUnit(ctx context.Context, userID int64) (int, error) {
	query := `SELECT round_up_unit FROM users WHERE id = $1`
	var unit int
	err := s.Pool.QueryRow(ctx, query, userID).Scan(&unit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("user %d not found", userID)
		}
		return 0, err
	}
	return unit, nil
}

// UpdateRoundUpUnit changes the user's rounding unit. The change is not
// retroactive: spare change already accrued keeps the unit in force when it
// was computed.
func (s *Store) UpdateRoundUpUnit(ctx context.Context, userID int64, unit int) error {
	query := `UPDATE users SET round_up_unit = $1 WHERE id = $2`
	tag, err := s.Pool.Exec(ctx, query, unit, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}
