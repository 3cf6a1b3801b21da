package syncer

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"jandon-server/src/codef"
	"jandon-server/src/models"

	"github.com/shopspring/decimal"
)

var (
	txDatePattern = regexp.MustCompile(`^\d{8}$`)
	txTimePattern = regexp.MustCompile(`^\d{6}$`)
)

// ingestItem records one provider item: the transaction itself, and for
// withdrawals the round-up accrued against it. Both inserts are conflict-safe,
// so re-ingesting the same logical event is a no-op.
func (s *Service) ingestItem(ctx context.Context, ing Ingester, user models.User, acc models.Account, item codef.RawTransaction) error {
	txID, err := deriveTxID(acc.ID, item.TrDate, item.TrTime)
	if err != nil {
		return err
	}

	amount, txType, err := classify(item)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", txID, err)
	}
	if txType == models.TxTypeDeposit && amount.IsZero() {
		// Neither debit nor credit amount present. Recorded anyway, but loudly:
		// the provider should not be sending these.
		log.Printf("WARN: transaction %s carries no debit or credit amount, recording zero-amount deposit", txID)
	}

	inserted, err := ing.InsertTransaction(ctx, models.Transaction{
		ID:        txID,
		UserID:    user.ID,
		AccountID: acc.ID,
		Amount:    amount,
		TxType:    txType,
		Memo:      buildMemo(item),
	})
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", txID, err)
	}
	if !inserted {
		log.Printf("INFO: transaction %s already ingested", txID)
	}

	if txType != models.TxTypeWithdraw {
		return nil
	}

	unit := resolveUnit(user.RoundUpUnit, s.defaultUnit)
	if _, err := ing.InsertSpareChange(ctx, models.SpareChange{
		UserID:  user.ID,
		TxID:    txID,
		RoundUp: RoundUp(amount, unit),
	}); err != nil {
		return fmt.Errorf("inserting spare change for %s: %w", txID, err)
	}
	return nil
}

// deriveTxID builds the idempotency key "{account_id}-{date}{time}". The
// provider supplies no transaction id of its own, so the key is only stable if
// date and time come back fixed-width and zero-padded; anything else is
// rejected rather than ingested under a drifting identity.
func deriveTxID(accountID int64, date, clock string) (string, error) {
	if !txDatePattern.MatchString(date) {
		return "", fmt.Errorf("malformed transaction date %q: want 8 digits", date)
	}
	if !txTimePattern.MatchString(clock) {
		return "", fmt.Errorf("malformed transaction time %q: want 6 digits", clock)
	}
	return fmt.Sprintf("%d-%s%s", accountID, date, clock), nil
}

// classify picks the direction: a non-zero "out" amount makes a withdrawal,
// otherwise the "in" amount makes a deposit (zero if absent).
func classify(item codef.RawTransaction) (decimal.Decimal, string, error) {
	out, err := parseAmount(item.Out)
	if err != nil {
		return decimal.Zero, "", err
	}
	in, err := parseAmount(item.In)
	if err != nil {
		return decimal.Zero, "", err
	}
	if !out.IsZero() {
		return out, models.TxTypeWithdraw, nil
	}
	return in, models.TxTypeDeposit, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q", s)
	}
	return d, nil
}

// buildMemo joins the four description fields with ";", dropping empty ones.
// All empty -> nil.
func buildMemo(item codef.RawTransaction) *string {
	parts := make([]string, 0, 4)
	for _, desc := range []string{item.Desc1, item.Desc2, item.Desc3, item.Desc4} {
		if desc != "" {
			parts = append(parts, desc)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	memo := strings.Join(parts, ";")
	return &memo
}

// resolveUnit guards against a misconfigured per-user unit; zero or negative
// falls back to the system default.
func resolveUnit(userUnit, defaultUnit int) int {
	if userUnit > 0 {
		return userUnit
	}
	return defaultUnit
}

// RoundUp computes ceil(amount/unit)*unit - amount, rounded half-up to two
// decimal places. An amount already on a unit boundary rounds up by zero.
func RoundUp(amount decimal.Decimal, unit int) decimal.Decimal {
	u := decimal.NewFromInt(int64(unit))
	return amount.Div(u).Ceil().Mul(u).Sub(amount).Round(2)
}
