// Package visibility computes the subset of accounts and transactions an
// identity is entitled to see.
//
// Customers get accounts scoped to their id and only the transactions whose
// ids appear in their user document's transactionHistory list; the
// transaction's own account fields are display data and play no part in the
// decision. Tellers and admins see everything. The full transaction
// collection is fetched for every role and filtered client-side; that the
// whole collection transits to a customer's client before filtering is a
// known exposure and scalability concern inherited from the backend
// contract, left unresolved here on purpose.
package visibility

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/normalize"
	"golang.org/x/sync/errgroup"
)

// Gateway is the slice of the API gateway the resolver needs.
type Gateway interface {
	FetchAccounts(ctx context.Context, filter gateway.AccountFilter) ([]normalize.Record, error)
	FetchTransactions(ctx context.Context, accountID string) ([]normalize.Record, error)
	FetchUser(ctx context.Context, id string) (*domain.User, error)
}

// Snapshot is one resolved, normalized view of the data.
type Snapshot struct {
	Accounts     []domain.Account
	Transactions []domain.Transaction
}

// ResolutionError aggregates the failures of a resolution's parallel
// fetches.
type ResolutionError struct {
	Errs []error
}

func (e *ResolutionError) Error() string {
	return "visibility resolution failed: " + errors.Join(e.Errs...).Error()
}

func (e *ResolutionError) Unwrap() []error {
	return e.Errs
}

// Resolver owns the last known-good snapshot and guards it against stale
// in-flight resolutions with a generation counter: a completion is applied
// only while its generation is still the latest issued.
type Resolver struct {
	gw     Gateway
	logger *slog.Logger

	gen atomic.Uint64

	mu      sync.Mutex
	applied uint64
	last    Snapshot
}

// New creates a resolver with an empty snapshot.
func New(gw Gateway, logger *slog.Logger) *Resolver {
	return &Resolver{
		gw:     gw,
		logger: logger,
		last:   emptySnapshot(),
	}
}

// Last returns the last applied snapshot.
func (r *Resolver) Last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Resolve computes the visible data for an identity. A nil identity
// resolves to empty sets without any network traffic.
func (r *Resolver) Resolve(ctx context.Context, ident *domain.Identity) (Snapshot, error) {
	if ident == nil {
		gen := r.gen.Add(1)
		return r.apply(gen, emptySnapshot()), nil
	}
	if ident.Role == domain.RoleCustomer {
		// A customer without an id must not degrade into an unscoped
		// resolution; fail closed instead.
		if ident.ID == "" {
			return r.Last(), &ResolutionError{Errs: []error{errors.New("customer identity has no id")}}
		}
		return r.resolve(ctx, ident, ident.ID)
	}
	return r.resolve(ctx, ident, "")
}

// ResolveCustomer computes the data visible to an arbitrary customer on
// behalf of an acting identity, for the teller "view as customer" flow. The
// acting identity and the subject are independent: the subject's id scopes
// the fetches and the history filter, while the acting identity only has to
// exist and be allowed to impersonate.
func (r *Resolver) ResolveCustomer(ctx context.Context, acting *domain.Identity, customerID string) (Snapshot, error) {
	if acting == nil {
		return r.Last(), domain.ErrNotAuthenticated
	}
	if customerID == "" {
		return r.Last(), &ResolutionError{Errs: []error{errors.New("no customer id to resolve")}}
	}
	if acting.Role == domain.RoleCustomer && acting.ID != customerID {
		return r.Last(), domain.ErrForbidden
	}
	return r.resolve(ctx, acting, customerID)
}

// resolve runs the three fetches concurrently and joins them all-or-nothing:
// partial results are never applied as if complete. subjectID is empty for
// unscoped (teller/admin) resolutions.
func (r *Resolver) resolve(ctx context.Context, acting *domain.Identity, subjectID string) (Snapshot, error) {
	gen := r.gen.Add(1)
	log := r.logger.With("context", "resolve", "actingID", acting.ID, "subjectID", subjectID, "generation", gen)
	log.Debug("Resolution started")

	customerScoped := subjectID != ""

	var (
		acctRecs []normalize.Record
		txRecs   []normalize.Record
		userDoc  *domain.User

		acctErr, txErr, userErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		filter := gateway.AccountFilter{}
		if customerScoped {
			filter.AccountID = subjectID
		}
		acctRecs, acctErr = r.gw.FetchAccounts(ctx, filter)
		return acctErr
	})
	g.Go(func() error {
		// The backend exposes no server-side transaction scoping; the full
		// collection is fetched for every role.
		txRecs, txErr = r.gw.FetchTransactions(ctx, "")
		return txErr
	})
	if customerScoped {
		g.Go(func() error {
			userDoc, userErr = r.gw.FetchUser(ctx, subjectID)
			return userErr
		})
	}
	_ = g.Wait()

	if acctErr != nil || txErr != nil || userErr != nil {
		resErr := &ResolutionError{}
		for _, err := range []error{acctErr, txErr, userErr} {
			if err != nil {
				resErr.Errs = append(resErr.Errs, err)
			}
		}
		log.Error("Resolution failed", "error", resErr)

		// Stale data stays visible, with one exception: when the subject's
		// user document could not be fetched, the sensitive transaction set
		// fails closed instead of lingering.
		if customerScoped && userErr != nil {
			return r.failClosed(gen), resErr
		}
		return r.Last(), resErr
	}

	snap := Snapshot{
		Accounts:     normalize.Accounts(acctRecs),
		Transactions: normalize.Transactions(txRecs),
	}
	if customerScoped {
		snap.Transactions = filterByHistory(snap.Transactions, userDoc)
	}

	log.Info("Resolution complete", "accounts", len(snap.Accounts), "transactions", len(snap.Transactions))
	return r.apply(gen, snap), nil
}

// filterByHistory keeps exactly the transactions whose id is a member of
// the user's history set, in the source collection's order. No document or
// no history means no visible transactions.
func filterByHistory(txs []domain.Transaction, user *domain.User) []domain.Transaction {
	visible := make([]domain.Transaction, 0, len(txs))
	if user == nil || len(user.TransactionHistory) == 0 {
		return visible
	}
	member := make(map[string]struct{}, len(user.TransactionHistory))
	for _, id := range user.TransactionHistory {
		member[id] = struct{}{}
	}
	for _, tx := range txs {
		if _, ok := member[tx.ID]; ok {
			visible = append(visible, tx)
		}
	}
	return visible
}

// apply installs a completed snapshot unless a newer resolution has been
// initiated since, in which case the completion is discarded and the
// authoritative snapshot is returned instead.
func (r *Resolver) apply(gen uint64, snap Snapshot) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen.Load() || gen < r.applied {
		r.logger.Debug("Discarding stale resolution", "generation", gen)
		return r.last
	}
	r.applied = gen
	r.last = snap
	return r.last
}

// failClosed clears the stored transaction set while keeping accounts, for
// the path where a customer's history membership could not be established.
func (r *Resolver) failClosed(gen uint64) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen.Load() || gen < r.applied {
		return r.last
	}
	r.applied = gen
	r.last = Snapshot{
		Accounts:     r.last.Accounts,
		Transactions: []domain.Transaction{},
	}
	return r.last
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Accounts:     []domain.Account{},
		Transactions: []domain.Transaction{},
	}
}
