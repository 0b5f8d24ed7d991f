package normalize

import (
	"math"
	"testing"

	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestAccountAliasPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  Record
		want string
	}{
		{
			name: "id wins over every alias",
			raw:  Record{"id": "A1", "userID": "U1", "accountID": "X1"},
			want: "A1",
		},
		{
			name: "userID wins over accountID",
			raw:  Record{"userID": "U1", "accountID": "X1"},
			want: "U1",
		},
		{
			name: "accountID as last resort",
			raw:  Record{"accountID": "X1"},
			want: "X1",
		},
		{
			name: "empty string does not count as defined",
			raw:  Record{"id": "", "userID": "U1"},
			want: "U1",
		},
		{
			name: "nothing present",
			raw:  Record{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Account(tt.raw).ID)
		})
	}
}

func TestAccountDefaults(t *testing.T) {
	acct := Account(Record{"id": "A1"})

	assert.Equal(t, "Checking", acct.Type)
	assert.Equal(t, "USD", acct.Currency)
	assert.Zero(t, acct.Balance)
	assert.Empty(t, acct.Branch)
	assert.Empty(t, acct.CustomerName)
}

func TestAccountCustomerNameFallsBackToName(t *testing.T) {
	acct := Account(Record{"id": "A1", "name": "Ada Lovelace"})
	assert.Equal(t, "Ada Lovelace", acct.CustomerName)

	acct = Account(Record{"id": "A1", "customerName": "Grace Hopper", "name": "ignored"})
	assert.Equal(t, "Grace Hopper", acct.CustomerName)
}

func TestAccountIdempotent(t *testing.T) {
	raw := Record{
		"accountID":       "X9",
		"accountType":     "Savings",
		"balance":         42.5,
		"branch":          "Downtown",
		"name":            "Ada",
		"accountCurrency": "EUR",
	}
	once := Account(raw)

	canonical := Record{
		"id":           once.ID,
		"type":         once.Type,
		"balance":      once.Balance,
		"branch":       once.Branch,
		"customerName": once.CustomerName,
		"currency":     once.Currency,
	}
	assert.Equal(t, once, Account(canonical))
}

func TestTransactionAliasesAndDefaults(t *testing.T) {
	tx := Transaction(Record{
		"transactionID":       "T1",
		"transactionDateTime": "2024-01-02",
		"transactionType":     "transfer",
		"sourceAccountId":     "A1",
		"receiverAccountId":   "A2",
	})

	assert.Equal(t, domain.Transaction{
		ID:                "T1",
		Date:              "2024-01-02",
		Type:              "transfer",
		Amount:            0,
		Account:           "A1",
		ReceiverAccountID: "A2",
	}, tx)
}

func TestTransactionAmountAlwaysFinite(t *testing.T) {
	tests := []struct {
		name string
		raw  Record
		want float64
	}{
		{"missing", Record{"id": "T1"}, 0},
		{"null", Record{"id": "T1", "amount": nil}, 0},
		{"zero kept", Record{"id": "T1", "amount": 0.0}, 0},
		{"float", Record{"id": "T1", "amount": 12.25}, 12.25},
		{"numeric string", Record{"id": "T1", "amount": "7.5"}, 7.5},
		{"garbage string", Record{"id": "T1", "amount": "lots"}, 0},
		{"NaN", Record{"id": "T1", "amount": math.NaN()}, 0},
		{"Inf", Record{"id": "T1", "amount": math.Inf(1)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transaction(tt.raw).Amount)
		})
	}
}

func TestCollectionsNeverNil(t *testing.T) {
	assert.NotNil(t, Accounts(nil))
	assert.NotNil(t, Transactions(nil))
	assert.Len(t, Accounts(nil), 0)
}

func TestTransactionsPreserveOrder(t *testing.T) {
	raws := []Record{
		{"id": "T3"},
		{"id": "T1"},
		{"id": "T2"},
	}
	txs := Transactions(raws)
	ids := []string{txs[0].ID, txs[1].ID, txs[2].ID}
	assert.Equal(t, []string{"T3", "T1", "T2"}, ids)
}
