package dashboard

import (
	"context"
	"log/slog"

	"github.com/amirasaad/bankdesk/pkg/directory"
	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/visibility"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Admin is the admin dashboard: teller and branch management plus the bank
// directory.
type Admin struct {
	base
}

// NewAdmin creates the admin dashboard.
func NewAdmin(gw Gateway, resolver Resolver, logger *slog.Logger) *Admin {
	return &Admin{base: newBase(gw, resolver, logger.With("dashboard", "admin"))}
}

// CreateTeller opens a teller account. A blank teller id gets a generated
// one before the request goes out.
func (d *Admin) CreateTeller(ctx context.Context, ident *domain.Identity, req gateway.CreateTellerRequest) (visibility.Snapshot, error) {
	log := d.logger.With("context", "CreateTeller", "username", req.Username)
	if err := d.authorize(ident, domain.RoleAdmin); err != nil {
		return visibility.Snapshot{}, err
	}
	if req.BankTellerID == "" {
		req.BankTellerID = "TELLER-" + uuid.NewString()
	}
	if err := d.checkInput(req); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.gw.CreateTeller(ctx, req); err != nil {
		log.Error("Create teller failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Teller created", "bankTellerID", req.BankTellerID)
	return d.refresh(ctx, ident)
}

// CloseTeller deletes a teller account.
func (d *Admin) CloseTeller(ctx context.Context, ident *domain.Identity, tellerID string) (visibility.Snapshot, error) {
	log := d.logger.With("context", "CloseTeller", "tellerID", tellerID)
	if err := d.authorize(ident, domain.RoleAdmin); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.gw.DeleteTeller(ctx, tellerID); err != nil {
		log.Error("Close teller failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Teller closed")
	return d.refresh(ctx, ident)
}

// CreateBranch registers a branch.
func (d *Admin) CreateBranch(ctx context.Context, ident *domain.Identity, req gateway.CreateBranchRequest) (visibility.Snapshot, error) {
	log := d.logger.With("context", "CreateBranch", "branchID", req.BranchID)
	if err := d.authorize(ident, domain.RoleAdmin); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.checkInput(req); err != nil {
		return visibility.Snapshot{}, err
	}
	if err := d.gw.CreateBranch(ctx, req); err != nil {
		log.Error("Create branch failed", "error", err)
		return visibility.Snapshot{}, err
	}
	log.Info("Branch created")
	return d.refresh(ctx, ident)
}

// Directory fetches the flat bank, branch, and teller lists concurrently
// and joins them into the bank directory.
func (d *Admin) Directory(ctx context.Context, ident *domain.Identity) ([]directory.BankView, error) {
	log := d.logger.With("context", "Directory")
	if err := d.authorize(ident, domain.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		banks    []domain.Bank
		branches []domain.Branch
		tellers  []domain.Teller
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		banks, err = d.gw.FetchBanks(ctx)
		return
	})
	g.Go(func() (err error) {
		branches, err = d.gw.FetchBranches(ctx)
		return
	})
	g.Go(func() (err error) {
		tellers, err = d.gw.FetchTellers(ctx)
		return
	})
	if err := g.Wait(); err != nil {
		log.Error("Directory fetch failed", "error", err)
		return nil, err
	}

	views := directory.Build(banks, branches, tellers)
	log.Info("Directory built", "banks", len(views))
	return views, nil
}
