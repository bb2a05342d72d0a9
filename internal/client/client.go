// Package client is the HTTP consumer of the Stocksy CRUD API. Every
// operation is a single request/response with no retries; non-2xx
// bodies are normalized into the typed errors of this package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"stocksy/internal/model"
)

const (
	productsPath     = "/api/v1/products"
	shoppingListPath = "/api/v1/shopping-list"
)

// ProductsQuery is the pagination/sort cursor for product listings.
// Zero fields are omitted and resolved to server defaults.
type ProductsQuery struct {
	Page  int
	Limit int
	Sort  string // "name" | "quantity"
	Order string // "asc" | "desc"
}

// CreateProductInput is the payload for POST /products.
type CreateProductInput struct {
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	MinimumThreshold int    `json:"minimum_threshold"`
}

// UpdateProductInput is a partial PATCH payload; nil fields are not
// transmitted.
type UpdateProductInput struct {
	Name             *string `json:"name,omitempty"`
	Quantity         *int    `json:"quantity,omitempty"`
	MinimumThreshold *int    `json:"minimum_threshold,omitempty"`
}

// Client talks to one Stocksy API server on behalf of one session.
// Identity is the bearer token set once after login; no operation
// accepts a caller-chosen identity.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken attaches the session token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ListProducts fetches one page of the caller's products.
func (c *Client) ListProducts(ctx context.Context, q ProductsQuery) (*model.ProductList, error) {
	var out model.ProductList
	if err := c.do(ctx, http.MethodGet, productsPath+encodeQuery(q), nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct creates a product; the server assigns the id and
// enforces name uniqueness. A negative quantity is rejected here,
// before any network call.
func (c *Client) CreateProduct(ctx context.Context, in CreateProductInput) (*model.ProductDTO, error) {
	if in.Quantity < 0 {
		return nil, &ValidationError{Message: "quantity must not be negative"}
	}
	var out model.ProductDTO
	if err := c.do(ctx, http.MethodPost, productsPath, in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct applies a partial update to a product.
func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*model.ProductDTO, error) {
	if id == uuid.Nil {
		return nil, &ValidationError{Message: "product id is required"}
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, &ValidationError{Message: "quantity must not be negative"}
	}
	var out model.ProductDTO
	if err := c.do(ctx, http.MethodPatch, productsPath+"/"+id.String(), in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a product and its derived shopping list entry.
func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &ValidationError{Message: "product id is required"}
	}
	return c.do(ctx, http.MethodDelete, productsPath+"/"+id.String(), nil, nil, false)
}

// ListShoppingList fetches all of the caller's shopping list items.
func (c *Client) ListShoppingList(ctx context.Context) (*model.ShoppingList, error) {
	var out model.ShoppingList
	if err := c.do(ctx, http.MethodGet, shoppingListPath, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateShoppingListItem sets an item's quantity_to_purchase. The
// precondition (integer >= 1) is enforced here, before any network
// call.
func (c *Client) UpdateShoppingListItem(ctx context.Context, id uuid.UUID, quantity int) (*model.ShoppingListItemDTO, error) {
	if id == uuid.Nil {
		return nil, &ValidationError{Message: "item id is required"}
	}
	if quantity < 1 {
		return nil, &ValidationError{Message: "quantity_to_purchase must be at least 1"}
	}

	body := map[string]int{"quantity_to_purchase": quantity}
	var out model.ShoppingListItemDTO
	if err := c.do(ctx, http.MethodPatch, shoppingListPath+"/"+id.String(), body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckInItem atomically restocks the linked product and removes the
// item.
func (c *Client) CheckInItem(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return &ValidationError{Message: "item id is required"}
	}
	return c.do(ctx, http.MethodPost, shoppingListPath+"/"+id.String()+"/check-in", nil, nil, false)
}

// CheckInAllItems atomically checks in every item owned by the
// caller. A 404 here means the list was already empty.
func (c *Client) CheckInAllItems(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, shoppingListPath+"/check-in", nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, bulkCheckIn bool) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeError(resp, bulkCheckIn)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// normalizeError folds the {message, errors[]} body and the status
// code into one typed error with a composed message.
func normalizeError(resp *http.Response, bulkCheckIn bool) error {
	message := fmt.Sprintf("request failed with status %d", resp.StatusCode)

	var body struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Message != "" {
			message = body.Message
		}
		if len(body.Errors) > 0 {
			message = message + ": " + strings.Join(body.Errors, ", ")
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &UnauthorizedError{Message: message}
	case http.StatusNotFound:
		if bulkCheckIn {
			return &EmptyListError{Message: message}
		}
		return &NotFoundError{Message: message}
	case http.StatusConflict:
		return &DuplicateNameError{Message: message}
	default:
		return &RequestError{Status: resp.StatusCode, Message: message}
	}
}

func encodeQuery(q ProductsQuery) string {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	if q.Order != "" {
		values.Set("order", q.Order)
	}
	if encoded := values.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}
