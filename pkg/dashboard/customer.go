package dashboard

import (
	"context"
	"log/slog"

	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/visibility"
)

// Customer is the customer dashboard: own accounts, own transaction
// history, and self-service transfers, deposits, and withdrawals.
type Customer struct {
	base
}

// NewCustomer creates the customer dashboard.
func NewCustomer(gw Gateway, resolver Resolver, logger *slog.Logger) *Customer {
	return &Customer{base: newBase(gw, resolver, logger.With("dashboard", "customer"))}
}

// TransferInput is the transfer form.
type TransferInput struct {
	FromAccount string  `validate:"required"`
	ToAccount   string  `validate:"required"`
	Amount      float64 `validate:"required,gt=0"`
}

// AmountInput is the deposit/withdraw form.
type AmountInput struct {
	Account string  `validate:"required"`
	Amount  float64 `validate:"required,gt=0"`
}

// Transfer moves money between accounts and refreshes the visible data.
func (d *Customer) Transfer(ctx context.Context, ident *domain.Identity, input TransferInput) (visibility.Snapshot, error) {
	log := d.logger.With("context", "Transfer")
	if err := d.authorize(ident, domain.RoleCustomer); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.checkInput(input); err != nil {
		return visibility.Snapshot{}, err
	}
	err := d.gw.RecordTransaction(ctx, gateway.TransferRequest{
		FromAccount: input.FromAccount,
		ToAccount:   input.ToAccount,
		Amount:      input.Amount,
		Type:        "transfer",
	})
	if err != nil {
		log.Error("Transfer failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Transfer submitted", "from", input.FromAccount, "to", input.ToAccount)
	return d.refresh(ctx, ident)
}

// Deposit records a deposit into one of the customer's accounts.
func (d *Customer) Deposit(ctx context.Context, ident *domain.Identity, input AmountInput) (visibility.Snapshot, error) {
	return d.quickTransaction(ctx, ident, input, "deposit")
}

// Withdraw records a withdrawal from one of the customer's accounts.
func (d *Customer) Withdraw(ctx context.Context, ident *domain.Identity, input AmountInput) (visibility.Snapshot, error) {
	return d.quickTransaction(ctx, ident, input, "withdraw")
}

// quickTransaction is the shared deposit/withdraw path: deposits carry only
// a destination account, withdrawals only a source.
func (d *Customer) quickTransaction(ctx context.Context, ident *domain.Identity, input AmountInput, kind string) (visibility.Snapshot, error) {
	log := d.logger.With("context", "quickTransaction", "type", kind)
	if err := d.authorize(ident, domain.RoleCustomer); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.checkInput(input); err != nil {
		return visibility.Snapshot{}, err
	}

	req := gateway.TransferRequest{Amount: input.Amount, Type: kind}
	if kind == "deposit" {
		req.ToAccount = input.Account
	} else {
		req.FromAccount = input.Account
	}
	if err := d.gw.RecordTransaction(ctx, req); err != nil {
		log.Error("Transaction failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Transaction submitted", "account", input.Account, "amount", input.Amount)
	return d.refresh(ctx, ident)
}
