// Package directory assembles the Bank -> Branch -> Teller graph from the
// flat lists the backend serves. Nothing is persisted; the graph is rebuilt
// from scratch on every fetch.
package directory

import "github.com/amirasaad/bankdesk/pkg/domain"

// BranchView is a branch with its teller records resolved.
type BranchView struct {
	Branch  domain.Branch
	Tellers []domain.Teller
}

// BankView is a bank with its branches resolved.
type BankView struct {
	Bank     domain.Bank
	Branches []BranchView
}

// Build joins the flat lists by id. Branch ids a bank references but the
// branch list does not contain are skipped; teller entries may be plain ids
// or embedded objects.
func Build(banks []domain.Bank, branches []domain.Branch, tellers []domain.Teller) []BankView {
	branchByID := make(map[string]domain.Branch, len(branches))
	for _, b := range branches {
		branchByID[b.BranchID] = b
	}
	tellerByID := make(map[string]domain.Teller, len(tellers))
	for _, t := range tellers {
		tellerByID[t.BankTellerID] = t
	}

	views := make([]BankView, 0, len(banks))
	for _, bank := range banks {
		view := BankView{Bank: bank}
		for _, branchID := range bank.Branches {
			branch, ok := branchByID[branchID]
			if !ok {
				continue
			}
			view.Branches = append(view.Branches, ResolveBranch(branch, tellerByID))
		}
		views = append(views, view)
	}
	return views
}

// ResolveBranch resolves a branch's teller entries against the teller
// lookup. String entries are ids; map entries are embedded teller objects.
func ResolveBranch(branch domain.Branch, tellerByID map[string]domain.Teller) BranchView {
	view := BranchView{Branch: branch}
	for _, entry := range branch.Tellers {
		switch v := entry.(type) {
		case string:
			if teller, ok := tellerByID[v]; ok {
				view.Tellers = append(view.Tellers, teller)
			}
		case map[string]any:
			view.Tellers = append(view.Tellers, tellerFromObject(v))
		}
	}
	return view
}

func tellerFromObject(obj map[string]any) domain.Teller {
	str := func(key string) string {
		s, _ := obj[key].(string)
		return s
	}
	return domain.Teller{
		BankTellerID: str("bankTellerID"),
		Username:     str("username"),
		FirstName:    str("firstName"),
		LastName:     str("lastName"),
		BranchID:     str("branchID"),
	}
}
