package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/amirasaad/bankdesk/pkg/app"
	"github.com/amirasaad/bankdesk/pkg/dashboard"
	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/amirasaad/bankdesk/pkg/route"
	"golang.org/x/term"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Println("Failed to start:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := a.Gateway.Health(ctx); err != nil {
		a.Logger.Warn("Backend health check failed", "error", err)
	}

	desk := &desk{app: a, in: bufio.NewScanner(os.Stdin)}
	desk.run(ctx)
}

type desk struct {
	app *app.App
	in  *bufio.Scanner
}

// run is the navigation loop. The authorization decision is re-evaluated on
// every navigation because the identity can change between them.
func (d *desk) run(ctx context.Context) {
	for {
		ident := d.app.Session.Current()
		view := route.ViewLogin
		if ident != nil {
			view = route.DefaultView(ident.Role)
		}

		var done bool
		switch view {
		case route.ViewLogin:
			done = d.loginView(ctx)
		case route.ViewCustomer:
			done = d.dashboardView(ctx, route.ViewCustomer, domain.RoleCustomer, d.customerCommand)
		case route.ViewTeller:
			done = d.dashboardView(ctx, route.ViewTeller, domain.RoleTeller, d.tellerCommand)
		case route.ViewAdmin:
			done = d.dashboardView(ctx, route.ViewAdmin, domain.RoleAdmin, d.adminCommand)
		}
		if done {
			return
		}
	}
}

func (d *desk) loginView(ctx context.Context) bool {
	fmt.Print("Username (or q to quit): ")
	if !d.in.Scan() {
		return true
	}
	username := strings.TrimSpace(d.in.Text())
	if username == "q" || username == "" {
		return username == "q"
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		dashboard.RenderError(os.Stdout, err)
		return false
	}

	ident, err := d.app.Session.Login(ctx, username, string(password))
	if err != nil {
		dashboard.RenderError(os.Stdout, err)
		return false
	}
	fmt.Printf("Welcome, %s (%s)\n", ident.DisplayName(), ident.Role)
	return false
}

// dashboardView gates entry, resolves the visible data, and hands commands
// to the role handler until logout or quit.
func (d *desk) dashboardView(ctx context.Context, view route.ViewID, role domain.Role, handle func(ctx context.Context, fields []string) error) bool {
	ident := d.app.Session.Current()
	if decision := route.Authorize(ident, role); !decision.Allowed {
		return false
	}

	snap, err := d.app.Resolver.Resolve(ctx, ident)
	if err != nil {
		// Stale data stays visible; the error shows as an inline banner.
		dashboard.RenderError(os.Stdout, err)
		snap = d.app.Resolver.Last()
	}
	dashboard.RenderSummary(os.Stdout, dashboard.Summarize(snap))
	dashboard.RenderAccounts(os.Stdout, snap.Accounts)
	dashboard.RenderTransactions(os.Stdout, snap.Transactions)

	for {
		ident = d.app.Session.Current()
		if decision := route.Authorize(ident, role); !decision.Allowed {
			return false
		}

		fmt.Printf("%s> ", view)
		if !d.in.Scan() {
			return true
		}
		fields := strings.Fields(d.in.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "q":
			return true
		case "logout":
			d.app.Session.Logout()
			if _, err := d.app.Resolver.Resolve(ctx, nil); err != nil {
				dashboard.RenderError(os.Stdout, err)
			}
			return false
		case "refresh":
			snap, err := d.app.Resolver.Resolve(ctx, ident)
			if err != nil {
				dashboard.RenderError(os.Stdout, err)
				continue
			}
			dashboard.RenderAccounts(os.Stdout, snap.Accounts)
			dashboard.RenderTransactions(os.Stdout, snap.Transactions)
		default:
			if err := handle(ctx, fields); err != nil {
				dashboard.RenderError(os.Stdout, err)
			}
		}
	}
}

func (d *desk) customerCommand(ctx context.Context, fields []string) error {
	ident := d.app.Session.Current()
	switch fields[0] {
	case "help":
		fmt.Println("Commands: transfer <from> <to> <amount>, deposit <account> <amount>, withdraw <account> <amount>, refresh, logout, quit")
	case "transfer":
		if len(fields) < 4 {
			return fmt.Errorf("usage: transfer <from> <to> <amount>")
		}
		amount, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		snap, err := d.app.Customer.Transfer(ctx, ident, dashboard.TransferInput{
			FromAccount: fields[1],
			ToAccount:   fields[2],
			Amount:      amount,
		})
		if err != nil {
			return err
		}
		dashboard.RenderTransactions(os.Stdout, snap.Transactions)
	case "deposit", "withdraw":
		if len(fields) < 3 {
			return fmt.Errorf("usage: %s <account> <amount>", fields[0])
		}
		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		input := dashboard.AmountInput{Account: fields[1], Amount: amount}
		var snap = d.app.Resolver.Last()
		if fields[0] == "deposit" {
			snap, err = d.app.Customer.Deposit(ctx, ident, input)
		} else {
			snap, err = d.app.Customer.Withdraw(ctx, ident, input)
		}
		if err != nil {
			return err
		}
		dashboard.RenderAccounts(os.Stdout, snap.Accounts)
	default:
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return nil
}

func (d *desk) tellerCommand(ctx context.Context, fields []string) error {
	ident := d.app.Session.Current()
	switch fields[0] {
	case "help":
		fmt.Println("Commands: search [accountId] [name] [branch] [type], view <customerID>, newcustomer <username> <password> <first> <last>, closecustomer <userID>, account <open|close> <username> [type], refresh, logout, quit")
	case "search":
		filter := gateway.AccountFilter{}
		if len(fields) > 1 {
			filter.AccountID = fields[1]
		}
		if len(fields) > 2 {
			filter.Name = fields[2]
		}
		if len(fields) > 3 {
			filter.Branch = fields[3]
		}
		if len(fields) > 4 {
			filter.Type = fields[4]
		}
		accounts, err := d.app.Teller.SearchAccounts(ctx, ident, filter)
		if err != nil {
			return err
		}
		dashboard.RenderAccounts(os.Stdout, accounts)
	case "view":
		if len(fields) < 2 {
			return fmt.Errorf("usage: view <customerID>")
		}
		profile, err := d.app.Teller.ViewCustomer(ctx, ident, fields[1])
		if err != nil {
			return err
		}
		fmt.Printf("Customer %s\n", profile.AccountID)
		dashboard.RenderAccounts(os.Stdout, profile.Snapshot.Accounts)
		dashboard.RenderTransactions(os.Stdout, profile.Snapshot.Transactions)
		fmt.Println("Branch activity for this account:")
		dashboard.RenderTransactions(os.Stdout, profile.Related)
	case "newcustomer":
		if len(fields) < 5 {
			return fmt.Errorf("usage: newcustomer <username> <password> <first> <last>")
		}
		_, err := d.app.Teller.CreateCustomer(ctx, ident, gateway.CreateCustomerRequest{
			Username:  fields[1],
			Password:  fields[2],
			FirstName: fields[3],
			LastName:  fields[4],
		})
		if err != nil {
			return err
		}
		fmt.Println("Customer created.")
	case "closecustomer":
		if len(fields) < 2 {
			return fmt.Errorf("usage: closecustomer <userID>")
		}
		if _, err := d.app.Teller.CloseCustomer(ctx, ident, fields[1]); err != nil {
			return err
		}
		fmt.Println("Customer closed.")
	case "account":
		if len(fields) < 3 {
			return fmt.Errorf("usage: account <open|close> <username> [type]")
		}
		req := gateway.ManageAccountRequest{Action: fields[1], Username: fields[2]}
		if len(fields) > 3 {
			req.AccountType = fields[3]
		}
		if _, err := d.app.Teller.ManageAccount(ctx, ident, req); err != nil {
			return err
		}
		fmt.Println("Account request submitted.")
	default:
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return nil
}

func (d *desk) adminCommand(ctx context.Context, fields []string) error {
	ident := d.app.Session.Current()
	switch fields[0] {
	case "help":
		fmt.Println("Commands: directory, newteller <username> <password> <branchID> [first] [last], closeteller <tellerID>, newbranch <branchID> <name> [address], refresh, logout, quit")
	case "directory":
		views, err := d.app.Admin.Directory(ctx, ident)
		if err != nil {
			return err
		}
		dashboard.RenderDirectory(os.Stdout, views)
	case "newteller":
		if len(fields) < 4 {
			return fmt.Errorf("usage: newteller <username> <password> <branchID> [first] [last]")
		}
		req := gateway.CreateTellerRequest{
			Username: fields[1],
			Password: fields[2],
			BranchID: fields[3],
		}
		if len(fields) > 4 {
			req.FirstName = fields[4]
		}
		if len(fields) > 5 {
			req.LastName = fields[5]
		}
		if _, err := d.app.Admin.CreateTeller(ctx, ident, req); err != nil {
			return err
		}
		fmt.Println("Teller created.")
	case "closeteller":
		if len(fields) < 2 {
			return fmt.Errorf("usage: closeteller <tellerID>")
		}
		if _, err := d.app.Admin.CloseTeller(ctx, ident, fields[1]); err != nil {
			return err
		}
		fmt.Println("Teller closed.")
	case "newbranch":
		if len(fields) < 3 {
			return fmt.Errorf("usage: newbranch <branchID> <name> [address]")
		}
		req := gateway.CreateBranchRequest{BranchID: fields[1], BranchName: fields[2]}
		if len(fields) > 3 {
			req.Address = strings.Join(fields[3:], " ")
		}
		if _, err := d.app.Admin.CreateBranch(ctx, ident, req); err != nil {
			return err
		}
		fmt.Println("Branch created.")
	default:
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return nil
}
