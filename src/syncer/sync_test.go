package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jandon-server/src/codef"
	"jandon-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users     []models.User
	accounts  map[int64][]models.Account
	ibs       map[string]models.InternetBanking // "userID/institutionCode"
	committed *fakeIngester
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:  make(map[int64][]models.Account),
		ibs:       make(map[string]models.InternetBanking),
		committed: newFakeIngester(),
	}
}

func ibKey(userID int64, institutionCode string) string {
	return fmt.Sprintf("%d/%s", userID, institutionCode)
}

func (s *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	return s.users, nil
}

func (s *fakeStore) ListAccounts(_ context.Context, userID int64) ([]models.Account, error) {
	return s.accounts[userID], nil
}

func (s *fakeStore) FindInternetBanking(_ context.Context, userID int64, institutionCode string) (*models.InternetBanking, error) {
	ib, ok := s.ibs[ibKey(userID, institutionCode)]
	if !ok {
		return nil, nil
	}
	return &ib, nil
}

// InAccountTx stages writes and merges them only on success, mirroring the
// per-account commit scope of the real store.
func (s *fakeStore) InAccountTx(_ context.Context, fn func(Ingester) error) error {
	staged := newFakeIngester()
	for k, v := range s.committed.txs {
		staged.txs[k] = v
	}
	for k, v := range s.committed.scs {
		staged.scs[k] = v
	}
	if err := fn(staged); err != nil {
		return err
	}
	s.committed = staged
	return nil
}

type fetchCall struct {
	accountID  int64
	start, end string
}

type fakeFeed struct {
	items map[int64][]codef.RawTransaction
	errs  map[int64]error
	calls []fetchCall
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		items: make(map[int64][]codef.RawTransaction),
		errs:  make(map[int64]error),
	}
}

func (f *fakeFeed) FetchTransactions(_ context.Context, start, end string, _ models.InternetBanking, acc models.Account) (*codef.TransactionList, error) {
	f.calls = append(f.calls, fetchCall{accountID: acc.ID, start: start, end: end})
	if err := f.errs[acc.ID]; err != nil {
		return nil, err
	}
	list := &codef.TransactionList{}
	list.Result.Message = "성공"
	list.Data.TrHistoryList = f.items[acc.ID]
	return list, nil
}

func oneUserOneAccount(store *fakeStore) (models.User, models.Account) {
	user := models.User{ID: 7, RoundUpUnit: 100}
	acc := models.Account{ID: 3, UserID: 7, InstitutionCode: "0004", AccountNumber: "12345678901234"}
	store.users = []models.User{user}
	store.accounts[7] = []models.Account{acc}
	store.ibs[ibKey(7, "0004")] = models.InternetBanking{ID: 1, UserID: 7, InstitutionCode: "0004", BankingID: "jandon-user"}
	return user, acc
}

func TestSyncAll_IngestsFetchedTransactions(t *testing.T) {
	store := newFakeStore()
	feed := newFakeFeed()
	_, acc := oneUserOneAccount(store)
	feed.items[acc.ID] = []codef.RawTransaction{
		{TrDate: "20250101", TrTime: "120000", Out: "7430", Desc1: "카페"},
		{TrDate: "20250101", TrTime: "180000", In: "50000"},
	}

	svc := newTestService(store, feed)
	require.NoError(t, svc.SyncAll(context.Background()))

	assert.Len(t, store.committed.txs, 2)
	require.Len(t, store.committed.scs, 1)
	assert.True(t, store.committed.scs["3-20250101120000"].RoundUp.Equal(dec("70")))
}

func TestSyncAll_MissingCredentialSkipsAccount(t *testing.T) {
	store := newFakeStore()
	feed := newFakeFeed()
	_, _ = oneUserOneAccount(store)
	delete(store.ibs, ibKey(7, "0004"))

	svc := newTestService(store, feed)
	require.NoError(t, svc.SyncAll(context.Background()), "missing credential is a soft condition")
	assert.Empty(t, feed.calls, "no fetch without a credential")
	assert.Empty(t, store.committed.txs)
}

func TestSyncAll_OneAccountFailureKeepsOthers(t *testing.T) {
	store := newFakeStore()
	feed := newFakeFeed()
	user, acc := oneUserOneAccount(store)
	broken := models.Account{ID: 4, UserID: user.ID, InstitutionCode: "0004", AccountNumber: "99999999999999"}
	store.accounts[user.ID] = append(store.accounts[user.ID], broken)

	feed.items[acc.ID] = []codef.RawTransaction{{TrDate: "20250101", TrTime: "120000", Out: "7430"}}
	feed.errs[broken.ID] = errors.New("provider returned 502")

	svc := newTestService(store, feed)
	err := svc.SyncAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account 4")

	// The healthy account's commit survived the other's failure.
	assert.Len(t, store.committed.txs, 1)
	assert.Len(t, store.committed.scs, 1)
}

func TestSyncAll_RerunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	feed := newFakeFeed()
	_, acc := oneUserOneAccount(store)
	feed.items[acc.ID] = []codef.RawTransaction{{TrDate: "20250101", TrTime: "120000", Out: "7430"}}

	svc := newTestService(store, feed)
	require.NoError(t, svc.SyncAll(context.Background()))
	require.NoError(t, svc.SyncAll(context.Background()))

	assert.Len(t, store.committed.txs, 1)
	assert.Len(t, store.committed.scs, 1)
}

func TestSyncAll_IngestErrorRollsBackAccount(t *testing.T) {
	store := newFakeStore()
	feed := newFakeFeed()
	_, acc := oneUserOneAccount(store)
	feed.items[acc.ID] = []codef.RawTransaction{
		{TrDate: "20250101", TrTime: "120000", Out: "7430"},
		{TrDate: "bogus", TrTime: "130000", Out: "100"},
	}

	svc := newTestService(store, feed)
	require.Error(t, svc.SyncAll(context.Background()))
	assert.Empty(t, store.committed.txs, "partial account ingestion must not commit")
}

func TestSyncAll_UsesDefaultWindow(t *testing.T) {
	store := newFakeStore()
	feed := newFakeFeed()
	oneUserOneAccount(store)

	svc := newTestService(store, feed)
	kst := time.FixedZone("KST", 9*60*60)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 1, 0, 0, 0, kst) }

	require.NoError(t, svc.SyncAll(context.Background()))
	require.Len(t, feed.calls, 1)
	assert.Equal(t, "20250309", feed.calls[0].start)
	assert.Equal(t, "20250310", feed.calls[0].end)
}

func TestSyncRange_PassesOverrideWindow(t *testing.T) {
	store := newFakeStore()
	feed := newFakeFeed()
	oneUserOneAccount(store)

	svc := newTestService(store, feed)
	require.NoError(t, svc.SyncRange(context.Background(), "20240601", "20240630"))
	require.Len(t, feed.calls, 1)
	assert.Equal(t, "20240601", feed.calls[0].start)
	assert.Equal(t, "20240630", feed.calls[0].end)
}

func TestSyncRange_RejectsBadWindows(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeFeed())

	assert.Error(t, svc.SyncRange(context.Background(), "20250110", "20250101"), "start after end")
	assert.Error(t, svc.SyncRange(context.Background(), "2025-01-01", "20250102"))
	assert.Error(t, svc.SyncRange(context.Background(), "", "20250102"))
}

func TestRun_OverlappingRunsAreRejected(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeFeed())

	svc.mu.Lock()
	defer svc.mu.Unlock()

	err := svc.SyncAll(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
}
