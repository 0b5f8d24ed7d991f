// Package normalize maps heterogeneously-shaped backend records into the
// canonical domain shapes. The backend has gone through several field-naming
// eras; every logical attribute therefore has an ordered list of candidate
// field names, and the first defined one wins.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/amirasaad/bankdesk/pkg/domain"
)

// Record is a decoded JSON object as the gateway hands it over.
type Record map[string]any

// Alias priority per attribute. Order matters; first defined value wins.
var (
	accountIDAliases       = []string{"id", "userID", "accountID"}
	accountTypeAliases     = []string{"type", "accountType"}
	accountNameAliases     = []string{"customerName", "name"}
	accountCurrencyAliases = []string{"currency", "accountCurrency"}

	transactionIDAliases       = []string{"id", "transactionID", "transactionId"}
	transactionDateAliases     = []string{"date", "transactionDateTime"}
	transactionTypeAliases     = []string{"type", "transactionType"}
	transactionSourceAliases   = []string{"account", "sourceAccountID", "sourceAccountId"}
	transactionReceiverAliases = []string{"receiverAccountID", "receiverAccountId"}
)

// Account normalizes a raw account record. Total: never fails, absent
// fields fall back to defaults. Idempotent on already-canonical records.
func Account(raw Record) domain.Account {
	return domain.Account{
		ID:           firstString(raw, accountIDAliases...),
		Type:         withDefault(firstString(raw, accountTypeAliases...), "Checking"),
		Balance:      firstNumber(raw, "balance"),
		Branch:       firstString(raw, "branch"),
		CustomerName: firstString(raw, accountNameAliases...),
		Currency:     withDefault(firstString(raw, accountCurrencyAliases...), "USD"),
	}
}

// Transaction normalizes a raw transaction record. The amount is always a
// finite number; missing or unparseable amounts become 0.
func Transaction(raw Record) domain.Transaction {
	return domain.Transaction{
		ID:                firstString(raw, transactionIDAliases...),
		Date:              firstString(raw, transactionDateAliases...),
		Type:              firstString(raw, transactionTypeAliases...),
		Amount:            firstNumber(raw, "amount"),
		Account:           firstString(raw, transactionSourceAliases...),
		ReceiverAccountID: firstString(raw, transactionReceiverAliases...),
		Status:            firstString(raw, "status"),
	}
}

// Accounts normalizes a whole collection. A nil input yields an empty,
// non-nil slice so callers can always iterate.
func Accounts(raws []Record) []domain.Account {
	out := make([]domain.Account, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Account(raw))
	}
	return out
}

// Transactions normalizes a whole collection, preserving order.
func Transactions(raws []Record) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Transaction(raw))
	}
	return out
}

// firstString probes keys in order and returns the first usable text value.
// Empty strings do not count as defined, matching the backend's habit of
// sending "" for retired fields.
func firstString(raw Record, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

// firstNumber probes keys in order and returns the first value convertible
// to a finite float64. Anything else, including NaN and infinities, is 0.
func firstNumber(raw Record, keys ...string) float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return finite(n)
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return finite(f)
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return finite(f)
			}
		}
	}
	return 0
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
