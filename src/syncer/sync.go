package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"jandon-server/src/codef"
	"jandon-server/src/models"
)

// ErrSyncInProgress is returned when a run is requested while another is
// still active. Overlapping runs would hammer the provider for the same
// windows, so the second caller backs off instead.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// Feed fetches one account's transactions from the provider.
type Feed interface {
	FetchTransactions(ctx context.Context, start, end string, ib models.InternetBanking, acc models.Account) (*codef.TransactionList, error)
}

// Ingester is the write half of one account's database transaction. Inserts
// report whether a row was actually created; a conflict on the identity key
// means "already ingested" and is not an error.
type Ingester interface {
	InsertTransaction(ctx context.Context, txn models.Transaction) (bool, error)
	InsertSpareChange(ctx context.Context, sc models.SpareChange) (bool, error)
}

// Store is what the orchestrator needs from persistence.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	// FindInternetBanking returns (nil, nil) when the user has no credential
	// for the institution.
	FindInternetBanking(ctx context.Context, userID int64, institutionCode string) (*models.InternetBanking, error)
	// InAccountTx runs fn inside one database transaction, committing only if
	// fn returns nil.
	InAccountTx(ctx context.Context, fn func(Ingester) error) error
}

// Service drives the periodic transaction sync and round-up accrual.
type Service struct {
	store       Store
	feed        Feed
	defaultUnit int
	loc         *time.Location
	now         func() time.Time
	mu          sync.Mutex
}

func New(store Store, feed Feed, defaultUnit int, loc *time.Location) *Service {
	return &Service{
		store:       store,
		feed:        feed,
		defaultUnit: defaultUnit,
		loc:         loc,
		now:         time.Now,
	}
}

// SyncAll runs one full sync over the default window. Both the timer and the
// on-demand trigger end up here.
func (s *Service) SyncAll(ctx context.Context) error {
	start, end := s.window()
	return s.run(ctx, start, end)
}

// SyncRange runs one full sync over an explicit window override.
func (s *Service) SyncRange(ctx context.Context, start, end string) error {
	if err := ValidateWindow(start, end); err != nil {
		return err
	}
	return s.run(ctx, start, end)
}

func (s *Service) run(ctx context.Context, start, end string) error {
	if !s.mu.TryLock() {
		return ErrSyncInProgress
	}
	defer s.mu.Unlock()

	log.Printf("INFO: sync run started, window %s..%s", start, end)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	// Each account commits on its own, so one account's failure cannot
	// discard rows already ingested for the others.
	var errs []error
	for _, user := range users {
		accounts, err := s.store.ListAccounts(ctx, user.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("listing accounts for user %d: %w", user.ID, err))
			continue
		}
		for _, acc := range accounts {
			if err := s.syncAccount(ctx, user, acc, start, end); err != nil {
				log.Printf("ERROR: sync failed for account %d: %v", acc.ID, err)
				errs = append(errs, fmt.Errorf("account %d: %w", acc.ID, err))
			}
		}
	}

	if len(errs) > 0 {
		log.Printf("ERROR: sync run finished with %d failed account(s)", len(errs))
		return errors.Join(errs...)
	}
	log.Print("INFO: sync run finished")
	return nil
}

func (s *Service) syncAccount(ctx context.Context, user models.User, acc models.Account, start, end string) error {
	ib, err := s.store.FindInternetBanking(ctx, user.ID, acc.InstitutionCode)
	if err != nil {
		return fmt.Errorf("looking up banking credential: %w", err)
	}
	if ib == nil {
		// Nothing can be fetched without a credential; skip this cycle.
		log.Printf("WARN: user %d has no banking credential for institution %s, skipping account %d", user.ID, acc.InstitutionCode, acc.ID)
		return nil
	}

	list, err := s.feed.FetchTransactions(ctx, start, end, *ib, acc)
	if err != nil {
		return fmt.Errorf("fetching transactions: %w", err)
	}
	log.Printf("INFO: account %d: provider message %q, %d item(s)", acc.ID, list.Result.Message, len(list.Data.TrHistoryList))

	return s.store.InAccountTx(ctx, func(ing Ingester) error {
		for _, item := range list.Data.TrHistoryList {
			if err := s.ingestItem(ctx, ing, user, acc, item); err != nil {
				return err
			}
		}
		return nil
	})
}
