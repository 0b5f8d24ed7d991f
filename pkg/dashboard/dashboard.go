// Package dashboard holds the three role dashboards. Each one is a
// consumer of already-authorized, already-resolved data; mutations go
// through the gateway and, on success, trigger one full re-resolution
// rather than patching local state, so the desk never diverges from the
// server.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/normalize"
	"github.com/amirasaad/bankdesk/pkg/route"
	"github.com/amirasaad/bankdesk/pkg/visibility"
	"github.com/go-playground/validator/v10"
)

// Gateway is the slice of the API gateway the dashboards mutate through.
type Gateway interface {
	SearchAccounts(ctx context.Context, filter gateway.AccountFilter) ([]normalize.Record, error)
	CreateCustomer(ctx context.Context, req gateway.CreateCustomerRequest) error
	DeleteCustomer(ctx context.Context, userID string) error
	CreateTeller(ctx context.Context, req gateway.CreateTellerRequest) error
	DeleteTeller(ctx context.Context, tellerID string) error
	ManageAccount(ctx context.Context, req gateway.ManageAccountRequest) error
	RecordTransaction(ctx context.Context, req gateway.TransferRequest) error
	FetchBanks(ctx context.Context) ([]domain.Bank, error)
	FetchBranches(ctx context.Context) ([]domain.Branch, error)
	FetchTellers(ctx context.Context) ([]domain.Teller, error)
	CreateBranch(ctx context.Context, req gateway.CreateBranchRequest) error
}

// Resolver re-resolves visible data after a mutation.
type Resolver interface {
	Resolve(ctx context.Context, ident *domain.Identity) (visibility.Snapshot, error)
	ResolveCustomer(ctx context.Context, acting *domain.Identity, customerID string) (visibility.Snapshot, error)
}

// base carries what every dashboard needs.
type base struct {
	gw       Gateway
	resolver Resolver
	validate *validator.Validate
	logger   *slog.Logger
}

func newBase(gw Gateway, resolver Resolver, logger *slog.Logger) base {
	return base{
		gw:       gw,
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
	}
}

// authorize gates a dashboard operation the same way navigation is gated.
func (b base) authorize(ident *domain.Identity, allowed ...domain.Role) error {
	decision := route.Authorize(ident, allowed...)
	if decision.Allowed {
		return nil
	}
	if ident == nil {
		return domain.ErrNotAuthenticated
	}
	return fmt.Errorf("role %s: %w", ident.Role, domain.ErrForbidden)
}

// checkInput runs required-field validation on a mutation payload.
func (b base) checkInput(input any) error {
	if err := b.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// refresh re-runs the resolver after a successful mutation. A refresh
// failure is surfaced to the caller but the mutation already happened, so
// it is reported distinctly.
func (b base) refresh(ctx context.Context, ident *domain.Identity) (visibility.Snapshot, error) {
	snap, err := b.resolver.Resolve(ctx, ident)
	if err != nil {
		return snap, fmt.Errorf("change saved but refresh failed: %w", err)
	}
	return snap, nil
}

// Summary aggregates an account set for the overview cards.
type Summary struct {
	AccountCount    int
	TotalByCurrency map[string]float64
}

// Summarize computes overview totals from a snapshot.
func Summarize(snap visibility.Snapshot) Summary {
	s := Summary{
		AccountCount:    len(snap.Accounts),
		TotalByCurrency: map[string]float64{},
	}
	for _, acct := range snap.Accounts {
		s.TotalByCurrency[acct.Currency] += acct.Balance
	}
	return s
}
