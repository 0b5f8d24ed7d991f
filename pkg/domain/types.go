package domain

// Role determines which views an identity may reach and which landing view
// it gets after login.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleTeller   Role = "TELLER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleTeller, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated principal for the current session. It lives
// in memory only; logout or process exit destroys it and a fresh login is
// required.
type Identity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role"`
}

// DisplayName derives the name shown in dashboards: first+last name when
// both are present, else the stored name.
func (i Identity) DisplayName() string {
	if i.FirstName != "" && i.LastName != "" {
		return i.FirstName + " " + i.LastName
	}
	return i.Name
}

// Account is the canonical account shape every component downstream of the
// normalizer can rely on.
type Account struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Balance      float64 `json:"balance"`
	Branch       string  `json:"branch"`
	CustomerName string  `json:"customerName"`
	Currency     string  `json:"currency"`
}

// Transaction is the canonical transaction shape. Account and
// ReceiverAccountID are display fields only; customer visibility is decided
// by history membership, never by these.
type Transaction struct {
	ID                string  `json:"id"`
	Date              string  `json:"date"`
	Type              string  `json:"type"`
	Amount            float64 `json:"amount"`
	Account           string  `json:"account"`
	ReceiverAccountID string  `json:"receiverAccountID"`
	Status            string  `json:"status"`
}

// User is the backend user document. TransactionHistory is the membership
// set that defines which transactions the user may see as a customer.
type User struct {
	UserID             string   `json:"userID"`
	Username           string   `json:"username"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	TransactionHistory []string `json:"transactionHistory"`
}

// Bank groups branches by id.
type Bank struct {
	BankID   string   `json:"bankID"`
	Name     string   `json:"name"`
	Branches []string `json:"branches"`
}

// Branch belongs to a bank and holds tellers. Entries in Tellers may be
// plain teller ids or embedded teller objects depending on the backend;
// the directory package resolves both.
type Branch struct {
	BranchID   string `json:"branchID"`
	BranchName string `json:"branchName"`
	Address    string `json:"address"`
	Tellers    []any  `json:"tellers"`
}

// Teller is a bank teller record.
type Teller struct {
	BankTellerID string `json:"bankTellerID"`
	Username     string `json:"username"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	BranchID     string `json:"branchID"`
}
