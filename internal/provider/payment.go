package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PaymentClient talks to the payment gateway over its form-encoded REST
// API, authenticating with the account's secret key.
type PaymentClient struct {
	base    string
	secret  string
	http    *http.Client
	timeout time.Duration
}

// NewPaymentClient creates a payment client for the given gateway URL.
func NewPaymentClient(baseURL, secretKey string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{
		base:    strings.TrimRight(baseURL, "/"),
		secret:  secretKey,
		http:    &http.Client{},
		timeout: timeout,
	}
}

var _ PaymentGateway = (*PaymentClient)(nil)

type gatewayCustomer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gatewaySubscription struct {
	ID                string `json:"id"`
	LiveMode          bool   `json:"livemode"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
}

// gatewayError is the gateway rejecting a request. The caller translates it
// into the domain payment error.
type gatewayError struct {
	status  int
	message string
}

func (e *gatewayError) Error() string {
	return fmt.Sprintf("payment gateway responded %d: %s", e.status, e.message)
}

func (c *PaymentClient) CreateCustomer(ctx context.Context, description, email, cardToken string) (*Customer, error) {
	form := url.Values{}
	form.Set("description", description)
	form.Set("email", email)
	form.Set("card", cardToken)

	var payload gatewayCustomer
	if err := c.do(ctx, http.MethodPost, "/v1/customers", form, &payload); err != nil {
		return nil, err
	}
	return &Customer{ID: payload.ID, Email: payload.Email}, nil
}

// RetrieveCustomer returns nil, nil when the customer does not exist.
func (c *PaymentClient) RetrieveCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var payload gatewayCustomer
	err := c.do(ctx, http.MethodGet, "/v1/customers/"+url.PathEscape(customerID), nil, &payload)
	var ge *gatewayError
	if isGatewayError(err, &ge) && ge.status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Customer{ID: payload.ID, Email: payload.Email}, nil
}

func (c *PaymentClient) UpdateSubscription(ctx context.Context, customerID, plan string) (*Subscription, error) {
	form := url.Values{}
	form.Set("plan", plan)

	var payload gatewaySubscription
	path := "/v1/customers/" + url.PathEscape(customerID) + "/subscription"
	if err := c.do(ctx, http.MethodPost, path, form, &payload); err != nil {
		return nil, err
	}
	return subscriptionFromGateway(&payload), nil
}

func (c *PaymentClient) CancelAtPeriodEnd(ctx context.Context, customerID string) (*Subscription, error) {
	form := url.Values{}
	form.Set("at_period_end", "true")

	var payload gatewaySubscription
	path := "/v1/customers/" + url.PathEscape(customerID) + "/subscription"
	if err := c.do(ctx, http.MethodDelete, path, form, &payload); err != nil {
		return nil, err
	}
	return subscriptionFromGateway(&payload), nil
}

func subscriptionFromGateway(s *gatewaySubscription) *Subscription {
	return &Subscription{
		ID:                s.ID,
		Live:              s.LiveMode,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		CurrentPeriodEnd:  s.CurrentPeriodEnd,
	}
}

func (c *PaymentClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &gatewayError{status: resp.StatusCode, message: gatewayMessage(resp.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func isGatewayError(err error, target **gatewayError) bool {
	if err == nil {
		return false
	}
	ge, ok := err.(*gatewayError)
	if ok {
		*target = ge
	}
	return ok
}

func gatewayMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
