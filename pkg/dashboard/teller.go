package dashboard

import (
	"context"
	"log/slog"

	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/normalize"
	"github.com/amirasaad/bankdesk/pkg/visibility"
)

// Teller is the teller dashboard: account search, customer management, and
// the "view as customer" profile.
type Teller struct {
	base
}

// NewTeller creates the teller dashboard.
func NewTeller(gw Gateway, resolver Resolver, logger *slog.Logger) *Teller {
	return &Teller{base: newBase(gw, resolver, logger.With("dashboard", "teller"))}
}

// CustomerProfile is the teller's view of one customer: the customer's
// visible data resolved with the teller acting, plus the subset of
// transactions touching the inspected account for the branch activity list.
type CustomerProfile struct {
	AccountID string
	Snapshot  visibility.Snapshot
	// Related lists transactions whose source or receiver matches the
	// inspected account. Display only: the authoritative visible set is
	// Snapshot.Transactions, filtered by history membership.
	Related []domain.Transaction
}

// SearchAccounts runs a filtered account search and normalizes the results.
func (d *Teller) SearchAccounts(ctx context.Context, ident *domain.Identity, filter gateway.AccountFilter) ([]domain.Account, error) {
	if err := d.authorize(ident, domain.RoleTeller, domain.RoleAdmin); err != nil {
		return nil, err
	}
	records, err := d.gw.SearchAccounts(ctx, filter)
	if err != nil {
		d.logger.Error("Account search failed", "error", err)
		return nil, err
	}
	return normalize.Accounts(records), nil
}

// ViewCustomer resolves a customer's data with the teller as the acting
// identity. The teller's own authorization is untouched: this grants no
// access to the customer view, only to the customer's data.
func (d *Teller) ViewCustomer(ctx context.Context, ident *domain.Identity, customerID string) (*CustomerProfile, error) {
	log := d.logger.With("context", "ViewCustomer", "customerID", customerID)
	if err := d.authorize(ident, domain.RoleTeller); err != nil {
		return nil, err
	}
	snap, err := d.resolver.ResolveCustomer(ctx, ident, customerID)
	if err != nil {
		log.Error("Customer resolution failed", "error", err)
		return nil, err
	}
	profile := &CustomerProfile{
		AccountID: customerID,
		Snapshot:  snap,
		Related:   relatedTransactions(snap.Transactions, customerID),
	}
	log.Info("Customer resolved", "accounts", len(snap.Accounts), "transactions", len(snap.Transactions))
	return profile, nil
}

// CreateCustomer opens a customer profile.
func (d *Teller) CreateCustomer(ctx context.Context, ident *domain.Identity, req gateway.CreateCustomerRequest) (visibility.Snapshot, error) {
	log := d.logger.With("context", "CreateCustomer", "username", req.Username)
	if err := d.authorize(ident, domain.RoleTeller); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.checkInput(req); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.gw.CreateCustomer(ctx, req); err != nil {
		log.Error("Create customer failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Customer created")
	return d.refresh(ctx, ident)
}

// CloseCustomer deletes a customer profile.
func (d *Teller) CloseCustomer(ctx context.Context, ident *domain.Identity, userID string) (visibility.Snapshot, error) {
	log := d.logger.With("context", "CloseCustomer", "userID", userID)
	if err := d.authorize(ident, domain.RoleTeller); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.gw.DeleteCustomer(ctx, userID); err != nil {
		log.Error("Close customer failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Customer closed")
	return d.refresh(ctx, ident)
}

// ManageAccount opens or closes a bank account for a customer.
func (d *Teller) ManageAccount(ctx context.Context, ident *domain.Identity, req gateway.ManageAccountRequest) (visibility.Snapshot, error) {
	log := d.logger.With("context", "ManageAccount", "action", req.Action, "username", req.Username)
	if err := d.authorize(ident, domain.RoleTeller); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.checkInput(req); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.gw.ManageAccount(ctx, req); err != nil {
		log.Error("Manage account failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Account managed")
	return d.refresh(ctx, ident)
}

// RecordTransaction submits a transaction on a customer's behalf.
func (d *Teller) RecordTransaction(ctx context.Context, ident *domain.Identity, req gateway.TransferRequest) (visibility.Snapshot, error) {
	log := d.logger.With("context", "RecordTransaction", "type", req.Type)
	if err := d.authorize(ident, domain.RoleTeller); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.checkInput(req); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.gw.RecordTransaction(ctx, req); err != nil {
		log.Error("Record transaction failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Transaction recorded")
	return d.refresh(ctx, ident)
}

// relatedTransactions filters by the display fields for the branch
// activity list on the customer profile.
func relatedTransactions(txs []domain.Transaction, accountID string) []domain.Transaction {
	related := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Account == accountID || tx.ReceiverAccountID == accountID {
			related = append(related, tx)
		}
	}
	return related
}
