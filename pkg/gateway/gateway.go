// Package gateway is the transport layer between the desk and the banking
// backend. It issues HTTP requests, decodes JSON, and turns non-success
// responses into a uniform RequestError. It never caches; every caller gets
// a fresh round trip.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amirasaad/bankdesk/pkg/config"
	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/normalize"
	"github.com/google/uuid"
)

// Client talks to the banking backend at a configured base address.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	token      string
}

// New creates a gateway client from config.
func New(cfg config.API, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// SetToken sets the bearer token attached to subsequent requests. An empty
// token clears it.
func (c *Client) SetToken(token string) {
	c.token = token
}

// LoginResponse is the backend's answer to a credential check. Token is
// optional; Role may be absent, which the session layer treats as an
// invalid login.
type LoginResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Token     string `json:"token"`
}

// AccountFilter narrows an account listing. Zero-value fields are omitted
// from the query string.
type AccountFilter struct {
	AccountID string
	Name      string
	Branch    string
	Type      string
}

func (f AccountFilter) query() url.Values {
	q := url.Values{}
	for key, value := range map[string]string{
		"accountId": f.AccountID,
		"name":      f.Name,
		"branch":    f.Branch,
		"type":      f.Type,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	return q
}

// CreateCustomerRequest opens a customer profile.
type CreateCustomerRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// CreateTellerRequest opens a teller account.
type CreateTellerRequest struct {
	BankTellerID string `json:"bankTellerID,omitempty"`
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	BranchID     string `json:"branchID" validate:"required"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
}

// ManageAccountRequest opens or closes a bank account for a customer.
type ManageAccountRequest struct {
	Action      string `json:"action" validate:"required,oneof=open close"`
	Username    string `json:"username" validate:"required"`
	AccountType string `json:"accountType,omitempty"`
}

// TransferRequest records a transfer, deposit, or withdrawal. Deposits omit
// FromAccount; withdrawals omit ToAccount.
type TransferRequest struct {
	FromAccount string  `json:"fromAccount,omitempty"`
	ToAccount   string  `json:"toAccount,omitempty"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Type        string  `json:"type" validate:"required"`
}

// CreateBranchRequest registers a branch.
type CreateBranchRequest struct {
	BranchID   string `json:"branchID" validate:"required"`
	BranchName string `json:"branchName" validate:"required"`
	Address    string `json:"address"`
}

// Login checks credentials. The backend accepts a username or a user id.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchAccounts lists accounts matching the filter. The raw records are
// returned undecoded so the caller can normalize them; the result is never
// nil, and a non-array payload yields an empty list.
func (c *Client) FetchAccounts(ctx context.Context, filter AccountFilter) ([]normalize.Record, error) {
	return c.fetchRecords(ctx, "/accounts", filter.query())
}

// SearchAccounts is FetchAccounts under the name the search views use.
func (c *Client) SearchAccounts(ctx context.Context, filter AccountFilter) ([]normalize.Record, error) {
	return c.FetchAccounts(ctx, filter)
}

// FetchTransactions lists transactions, optionally narrowed to an account.
func (c *Client) FetchTransactions(ctx context.Context, accountID string) ([]normalize.Record, error) {
	q := url.Values{}
	if accountID != "" {
		q.Set("accountId", accountID)
	}
	return c.fetchRecords(ctx, "/transactions", q)
}

// FetchUser fetches one user document, including its transaction history
// membership list.
func (c *Client) FetchUser(ctx context.Context, id string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCustomer opens a customer profile.
func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) error {
	return c.do(ctx, http.MethodPost, "/customers", nil, req, nil)
}

// DeleteCustomer closes a customer profile.
func (c *Client) DeleteCustomer(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/customers/"+url.PathEscape(userID), nil, nil, nil)
}

// CreateTeller opens a teller account.
func (c *Client) CreateTeller(ctx context.Context, req CreateTellerRequest) error {
	return c.do(ctx, http.MethodPost, "/tellers", nil, req, nil)
}

// DeleteTeller closes a teller account.
func (c *Client) DeleteTeller(ctx context.Context, tellerID string) error {
	return c.do(ctx, http.MethodDelete, "/tellers/"+url.PathEscape(tellerID), nil, nil, nil)
}

// ManageAccount opens or closes a bank account.
func (c *Client) ManageAccount(ctx context.Context, req ManageAccountRequest) error {
	return c.do(ctx, http.MethodPost, "/accounts/manage", nil, req, nil)
}

// RecordTransaction submits a transfer, deposit, or withdrawal.
func (c *Client) RecordTransaction(ctx context.Context, req TransferRequest) error {
	return c.do(ctx, http.MethodPost, "/transactions/transfer", nil, req, nil)
}

// FetchBanks lists all banks.
func (c *Client) FetchBanks(ctx context.Context) ([]domain.Bank, error) {
	return fetchList[domain.Bank](ctx, c, "/banks")
}

// FetchBranches lists all branches.
func (c *Client) FetchBranches(ctx context.Context) ([]domain.Branch, error) {
	return fetchList[domain.Branch](ctx, c, "/branches")
}

// FetchTellers lists all tellers.
func (c *Client) FetchTellers(ctx context.Context) ([]domain.Teller, error) {
	return fetchList[domain.Teller](ctx, c, "/tellers")
}

// fetchList fetches a typed list endpoint. As with fetchRecords, a non-array
// payload yields an empty list and the result is never nil.
func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var payload json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil || out == nil {
		return []T{}, nil
	}
	return out, nil
}

// CreateBranch registers a branch.
func (c *Client) CreateBranch(ctx context.Context, req CreateBranchRequest) error {
	return c.do(ctx, http.MethodPost, "/branches", nil, req, nil)
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// fetchRecords fetches a list endpoint as raw records. A payload that is
// not a JSON array yields an empty list, never an error and never nil.
func (c *Client) fetchRecords(ctx context.Context, path string, query url.Values) ([]normalize.Record, error) {
	var payload any
	if err := c.do(ctx, http.MethodGet, path, query, nil, &payload); err != nil {
		return nil, err
	}
	items, ok := payload.([]any)
	if !ok {
		return []normalize.Record{}, nil
	}
	records := make([]normalize.Record, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, normalize.Record(rec))
		}
	}
	return records, nil
}

// do performs one round trip. The response body is decoded as JSON when out
// is non-nil; empty bodies are tolerated. Non-2xx responses become a
// RequestError with the server's error message when it sent one.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	log := c.logger.With("method", method, "path", path)

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Request failed", "error", err)
		return &TransportError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	decoded, decodeErr := decodeBody(resp, out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := serverError(decoded)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		if message == "" {
			message = "request failed"
		}
		log.Warn("Request rejected", "status", resp.StatusCode, "message", message)
		return &RequestError{Status: resp.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return decodeErr
	}

	log.Debug("Request succeeded", "status", resp.StatusCode)
	return nil
}

// decodeBody decodes the response into out (when requested) and always
// returns a generic decode for error-message extraction. Empty and
// non-JSON bodies decode to nil without error.
func decodeBody(resp *http.Response, out any) (any, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &TransportError{Err: err}
	}
	raw := bytes.TrimSpace(buf.Bytes())
	if len(raw) == 0 {
		return nil, nil
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		// Not JSON at all. Tolerated, like an empty body.
		return nil, nil
	}

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			return generic, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return generic, nil
}

// serverError pulls the error field out of a decoded error body.
func serverError(decoded any) string {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := obj["error"].(string)
	return msg
}
