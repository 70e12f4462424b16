// Package client talks to the Rocket Food Delivery REST API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"rocket-food-delivery/models"
	"rocket-food-delivery/session"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned by Login when the backend rejects the
// email and password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// APIError is a non-success HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("api: HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err if it is an *APIError, else 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithLogger(l *slog.Logger) Option     { return func(c *Client) { c.logger = l } }

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken sets the bearer token sent with every request; "" sends none.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: e.Error, RequestID: requestID}
		c.logger.Debug("api error", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Login exchanges credentials for a session. A rejected request (400 or
// 401) or a success:false response yields ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", nil, loginRequest{Email: email, Password: password}, &resp)
	switch StatusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return session.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return session.Session{}, err
	}
	if !resp.Success {
		return session.Session{}, ErrInvalidCredentials
	}
	return session.Session{
		UserID:     resp.UserID,
		CustomerID: resp.CustomerID,
		CourierID:  resp.CourierID,
		Token:      resp.Token,
	}, nil
}

// Restaurants lists restaurants matching f.
func (c *Client) Restaurants(ctx context.Context, f RestaurantFilter) ([]Restaurant, error) {
	q := url.Values{}
	if f.Rating > 0 {
		q.Set("rating", strconv.Itoa(f.Rating))
	}
	if f.PriceRange > 0 {
		q.Set("price_range", strconv.Itoa(f.PriceRange))
	}
	var out []Restaurant
	if err := c.do(ctx, http.MethodGet, "/api/restaurants", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Products lists the menu of a restaurant.
func (c *Client) Products(ctx context.Context, restaurantID int64) ([]Product, error) {
	q := url.Values{"restaurant": {strconv.FormatInt(restaurantID, 10)}}
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, o NewOrder) (Order, error) {
	var out Order
	err := c.do(ctx, http.MethodPost, "/api/orders", nil, o, &out)
	return out, err
}

// Orders lists the orders of a customer or courier.
func (c *Client) Orders(ctx context.Context, roleID session.ID, role models.UserRole) ([]Order, error) {
	q := url.Values{"id": {roleID.String()}, "type": {string(role)}}
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus requests a status change for one order.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (Order, error) {
	var out Order
	path := "/api/order/" + strconv.FormatInt(orderID, 10) + "/status"
	err := c.do(ctx, http.MethodPost, path, nil, statusRequest{Status: status}, &out)
	return out, err
}

// Account reads the contact details of a role.
func (c *Client) Account(ctx context.Context, roleID session.ID, role models.UserRole) (Account, error) {
	var out Account
	q := url.Values{"type": {string(role)}}
	err := c.do(ctx, http.MethodGet, "/api/account/"+url.PathEscape(roleID.String()), q, nil, &out)
	return out, err
}

// UpdateAccount replaces the contact email and phone of a role.
func (c *Client) UpdateAccount(ctx context.Context, roleID session.ID, role models.UserRole, email, phone string) (Account, error) {
	var out Account
	in := accountRequest{AccountEmail: email, AccountPhone: phone, AccountType: string(role)}
	err := c.do(ctx, http.MethodPost, "/api/account/"+url.PathEscape(roleID.String()), nil, in, &out)
	return out, err
}
