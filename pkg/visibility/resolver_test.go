package visibility

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu sync.Mutex

	accounts     []normalize.Record
	transactions []normalize.Record
	user         *domain.User

	acctErr error
	txErr   error
	userErr error

	accountFilters []gateway.AccountFilter
	userFetches    []string
	txFetches      int

	txGate chan struct{} // when set, FetchTransactions waits on it once
}

func (f *fakeGateway) FetchAccounts(ctx context.Context, filter gateway.AccountFilter) ([]normalize.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountFilters = append(f.accountFilters, filter)
	return f.accounts, f.acctErr
}

func (f *fakeGateway) FetchTransactions(ctx context.Context, accountID string) ([]normalize.Record, error) {
	f.mu.Lock()
	f.txFetches++
	gate := f.txGate
	f.txGate = nil
	// Snapshot the reply before parking so a gated call answers with the
	// data that was current when it started.
	data, err := f.transactions, f.txErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return data, err
}

func (f *fakeGateway) FetchUser(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userFetches = append(f.userFetches, id)
	return f.user, f.userErr
}

func newTestResolver(gw Gateway) *Resolver {
	return New(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func customer(id string) *domain.Identity {
	return &domain.Identity{ID: id, Name: "c", Role: domain.RoleCustomer}
}

func teller(id string) *domain.Identity {
	return &domain.Identity{ID: id, Name: "t", Role: domain.RoleTeller}
}

func txRecords(ids ...string) []normalize.Record {
	recs := make([]normalize.Record, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, normalize.Record{"id": id, "amount": 1.0})
	}
	return recs
}

func txIDs(txs []domain.Transaction) []string {
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	return ids
}

func TestCustomerSeesOnlyHistoryMembers(t *testing.T) {
	gw := &fakeGateway{
		accounts:     []normalize.Record{{"id": "A1", "balance": 10.0}},
		transactions: txRecords("T1", "T2", "T3", "T4"),
		user:         &domain.User{UserID: "C1", TransactionHistory: []string{"T1", "T3"}},
	}
	r := newTestResolver(gw)

	snap, err := r.Resolve(context.Background(), customer("C1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T3"}, txIDs(snap.Transactions), "membership intersection in source order")
	require.Len(t, gw.accountFilters, 1)
	assert.Equal(t, "C1", gw.accountFilters[0].AccountID, "customer account fetch is scoped")
	assert.Equal(t, []string{"C1"}, gw.userFetches)
}

func TestHistoryMembershipIgnoresAccountFields(t *testing.T) {
	// T1 carries someone else's account fields but is in the history; T2
	// points straight at the customer's account but is not a member.
	gw := &fakeGateway{
		transactions: []normalize.Record{
			{"id": "T1", "account": "OTHER", "receiverAccountID": "OTHER2"},
			{"id": "T2", "account": "C1", "receiverAccountID": "C1"},
		},
		user: &domain.User{UserID: "C1", TransactionHistory: []string{"T1"}},
	}
	r := newTestResolver(gw)

	snap, err := r.Resolve(context.Background(), customer("C1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, txIDs(snap.Transactions))
}

func TestTellerSeesUnfilteredData(t *testing.T) {
	gw := &fakeGateway{
		accounts:     []normalize.Record{{"id": "A1"}, {"id": "A2"}},
		transactions: txRecords("T1", "T2"),
	}
	r := newTestResolver(gw)

	snap, err := r.Resolve(context.Background(), teller("U2"))

	require.NoError(t, err)
	assert.Len(t, snap.Accounts, 2)
	assert.Equal(t, []string{"T1", "T2"}, txIDs(snap.Transactions))
	require.Len(t, gw.accountFilters, 1)
	assert.Empty(t, gw.accountFilters[0].AccountID, "no accountId scoping for tellers")
	assert.Empty(t, gw.userFetches, "no user document fetch outside the customer path")
}

func TestNilIdentityResolvesEmptyWithoutNetwork(t *testing.T) {
	gw := &fakeGateway{
		accounts:     []normalize.Record{{"id": "A1"}},
		transactions: txRecords("T1"),
	}
	r := newTestResolver(gw)
	_, err := r.Resolve(context.Background(), teller("U2"))
	require.NoError(t, err)

	calls := gw.txFetches
	snap, err := r.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Transactions)
	assert.Equal(t, calls, gw.txFetches, "nil identity must not touch the network")
	assert.Empty(t, r.Last().Accounts, "logout clears the stored snapshot")
}

func TestCustomerWithoutHistorySeesNothing(t *testing.T) {
	gw := &fakeGateway{
		transactions: txRecords("T1", "T2"),
		user:         &domain.User{UserID: "C1"},
	}
	r := newTestResolver(gw)

	snap, err := r.Resolve(context.Background(), customer("C1"))

	require.NoError(t, err)
	assert.Empty(t, snap.Transactions, "no history means fail closed, not fail open")
}

func TestUserDocumentFailureFailsClosed(t *testing.T) {
	gw := &fakeGateway{
		accounts:     []normalize.Record{{"id": "A1"}},
		transactions: txRecords("T1", "T2"),
		user:         &domain.User{UserID: "C1", TransactionHistory: []string{"T1"}},
	}
	r := newTestResolver(gw)
	first, err := r.Resolve(context.Background(), customer("C1"))
	require.NoError(t, err)
	require.NotEmpty(t, first.Transactions)

	gw.userErr = errors.New("user service down")
	snap, err := r.Resolve(context.Background(), customer("C1"))

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Empty(t, snap.Transactions, "sensitive set must not linger when membership is unknown")
	assert.Empty(t, r.Last().Transactions)
	assert.NotEmpty(t, r.Last().Accounts, "non-sensitive stale data stays visible")
}

func TestFetchFailureKeepsLastKnownGood(t *testing.T) {
	gw := &fakeGateway{
		accounts:     []normalize.Record{{"id": "A1"}},
		transactions: txRecords("T1"),
	}
	r := newTestResolver(gw)
	_, err := r.Resolve(context.Background(), teller("U2"))
	require.NoError(t, err)

	gw.acctErr = errors.New("accounts unavailable")
	snap, err := r.Resolve(context.Background(), teller("U2"))

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Len(t, snap.Accounts, 1, "stale but visible")
	assert.Len(t, r.Last().Transactions, 1)
}

func TestCustomerWithoutIDFailsClosed(t *testing.T) {
	gw := &fakeGateway{transactions: txRecords("T1")}
	r := newTestResolver(gw)

	snap, err := r.Resolve(context.Background(), &domain.Identity{Role: domain.RoleCustomer})

	require.Error(t, err)
	assert.Empty(t, snap.Transactions)
	assert.Zero(t, gw.txFetches)
}

func TestStaleCompletionDoesNotClobberNewerOne(t *testing.T) {
	gw := &fakeGateway{
		accounts:     []normalize.Record{{"id": "A1"}},
		transactions: txRecords("OLD"),
	}
	r := newTestResolver(gw)

	gate := make(chan struct{})
	gw.mu.Lock()
	gw.txGate = gate
	gw.mu.Unlock()

	var (
		wg        sync.WaitGroup
		staleSnap Snapshot
		staleErr  error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		staleSnap, staleErr = r.Resolve(context.Background(), teller("U2"))
	}()

	// Wait until the first resolution is parked inside the gateway, then
	// run a newer one to completion with different data.
	for {
		gw.mu.Lock()
		parked := gw.txFetches == 1 && gw.txGate == nil
		gw.mu.Unlock()
		if parked {
			break
		}
		time.Sleep(time.Millisecond)
	}
	gw.mu.Lock()
	gw.transactions = txRecords("NEW")
	gw.mu.Unlock()
	fresh, err := r.Resolve(context.Background(), teller("U2"))
	require.NoError(t, err)
	require.Equal(t, []string{"NEW"}, txIDs(fresh.Transactions))

	close(gate)
	wg.Wait()

	require.NoError(t, staleErr)
	assert.Equal(t, []string{"NEW"}, txIDs(staleSnap.Transactions), "stale completion returns the authoritative snapshot")
	assert.Equal(t, []string{"NEW"}, txIDs(r.Last().Transactions))
}

func TestResolveCustomerSeparatesActingAndSubject(t *testing.T) {
	gw := &fakeGateway{
		accounts:     []normalize.Record{{"id": "C2-ACC"}},
		transactions: txRecords("T1", "T2", "T3"),
		user:         &domain.User{UserID: "C2", TransactionHistory: []string{"T2"}},
	}
	r := newTestResolver(gw)

	snap, err := r.ResolveCustomer(context.Background(), teller("U2"), "C2")

	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, txIDs(snap.Transactions))
	require.Len(t, gw.accountFilters, 1)
	assert.Equal(t, "C2", gw.accountFilters[0].AccountID, "subject id scopes the fetch, not the teller's")
	assert.Equal(t, []string{"C2"}, gw.userFetches)
}

func TestResolveCustomerGuards(t *testing.T) {
	gw := &fakeGateway{}
	r := newTestResolver(gw)

	_, err := r.ResolveCustomer(context.Background(), nil, "C2")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = r.ResolveCustomer(context.Background(), customer("C1"), "C2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = r.ResolveCustomer(context.Background(), customer("C1"), "C1")
	assert.NoError(t, err)
}
