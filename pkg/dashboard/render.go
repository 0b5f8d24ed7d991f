package dashboard

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/amirasaad/bankdesk/pkg/directory"
	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	errorColor  = color.New(color.FgRed, color.Bold)
	mutedColor  = color.New(color.FgHiBlack)
)

// RenderSummary prints the overview cards.
func RenderSummary(w io.Writer, s Summary) {
	headerColor.Fprintln(w, "Overview")
	fmt.Fprintf(w, "  Accounts: %d\n", s.AccountCount)
	for currency, total := range s.TotalByCurrency {
		fmt.Fprintf(w, "  Total %s: %.2f\n", currency, total)
	}
}

// RenderAccounts prints an account table.
func RenderAccounts(w io.Writer, accounts []domain.Account) {
	if len(accounts) == 0 {
		mutedColor.Fprintln(w, "No accounts to show.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(w, "Accounts")
	fmt.Fprintln(tw, "ID\tTYPE\tBALANCE\tCURRENCY\tBRANCH\tCUSTOMER")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			a.ID, a.Type, a.Balance, a.Currency, a.Branch, a.CustomerName)
	}
	tw.Flush() //nolint:errcheck
}

// RenderTransactions prints a transaction table.
func RenderTransactions(w io.Writer, txs []domain.Transaction) {
	if len(txs) == 0 {
		mutedColor.Fprintln(w, "No transactions to show.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headerColor.Fprintln(w, "Transactions")
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tFROM\tTO\tSTATUS")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			t.ID, t.Date, t.Type, t.Amount, t.Account, t.ReceiverAccountID, t.Status)
	}
	tw.Flush() //nolint:errcheck
}

// RenderDirectory prints the bank directory tree.
func RenderDirectory(w io.Writer, banks []directory.BankView) {
	if len(banks) == 0 {
		mutedColor.Fprintln(w, "No banks to show.")
		return
	}
	for _, bank := range banks {
		headerColor.Fprintf(w, "%s (%s)\n", bank.Bank.Name, bank.Bank.BankID)
		for _, branch := range bank.Branches {
			fmt.Fprintf(w, "  %s - %s, %s\n",
				branch.Branch.BranchID, branch.Branch.BranchName, branch.Branch.Address)
			for _, teller := range branch.Tellers {
				fmt.Fprintf(w, "    teller %s (%s %s)\n",
					teller.BankTellerID, teller.FirstName, teller.LastName)
			}
		}
	}
}

// RenderError prints an inline error banner next to the action that
// produced it.
func RenderError(w io.Writer, err error) {
	errorColor.Fprintf(w, "error: %v\n", err)
}
