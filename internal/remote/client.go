package remote

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

	"github.com/ivankudzin/storefront/internal/domain/enums"
)

const requesterHeader = "X-Shop-User"

// Client is a typed wrapper around the remote product/purchase store.
// It only marshals requests and maps error responses; all lifecycle policy
// lives in the services consuming it.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) ListProducts(ctx context.Context, category *enums.Category) ([]Product, error) {
	path := "/api/products"
	if category != nil {
		path += "?category=" + url.QueryEscape(string(*category))
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, path, "", nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, name string) (Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(name), "", nil, &product); err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (c *Client) AddProduct(ctx context.Context, requester string, product Product) error {
	if err := c.do(ctx, http.MethodPost, "/api/products", requester, product, nil); err != nil {
		return fmt.Errorf("add product: %w", err)
	}
	return nil
}

func (c *Client) DeleteProduct(ctx context.Context, requester, name string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(name), requester, nil, nil); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (c *Client) CreatePurchase(ctx context.Context, productName, requester string) (int64, error) {
	body := map[string]string{"product_name": productName}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/purchases", requester, body, &resp); err != nil {
		return 0, fmt.Errorf("create purchase: %w", err)
	}
	return resp.ID, nil
}

func (c *Client) ListPendingPurchases(ctx context.Context) ([]PurchaseEntry, error) {
	var entries []PurchaseEntry
	if err := c.do(ctx, http.MethodGet, "/api/purchases/pending", "", nil, &entries); err != nil {
		return nil, fmt.Errorf("list pending purchases: %w", err)
	}
	return entries, nil
}

func (c *Client) ListConfirmedPurchases(ctx context.Context) ([]PurchaseEntry, error) {
	var entries []PurchaseEntry
	if err := c.do(ctx, http.MethodGet, "/api/purchases/confirmed", "", nil, &entries); err != nil {
		return nil, fmt.Errorf("list confirmed purchases: %w", err)
	}
	return entries, nil
}

func (c *Client) AcceptPurchase(ctx context.Context, requester string, id int64) error {
	if err := c.do(ctx, http.MethodPost, "/api/purchases/"+formatID(id)+"/accept", requester, nil, nil); err != nil {
		return fmt.Errorf("accept purchase: %w", err)
	}
	return nil
}

func (c *Client) DeclinePurchase(ctx context.Context, requester string, id int64) error {
	if err := c.do(ctx, http.MethodPost, "/api/purchases/"+formatID(id)+"/decline", requester, nil, nil); err != nil {
		return fmt.Errorf("decline purchase: %w", err)
	}
	return nil
}

func (c *Client) DeleteConfirmedPurchase(ctx context.Context, requester string, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/api/purchases/confirmed/"+formatID(id), requester, nil, nil); err != nil {
		return fmt.Errorf("delete confirmed purchase: %w", err)
	}
	return nil
}

func (c *Client) ResolveRole(ctx context.Context, username string) (enums.Role, error) {
	body := map[string]string{"username": username}
	var resp struct {
		Role enums.Role `json:"role"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", "", body, &resp); err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	if resp.Role == "" {
		return enums.RoleGuest, nil
	}
	return resp.Role, nil
}

func (c *Client) do(ctx context.Context, method, path, requester string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requester != "" {
		req.Header.Set(requesterHeader, requester)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &StoreError{Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &StoreError{Status: resp.StatusCode, Message: "malformed store response: " + err.Error()}
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Message == "" {
		payload.Message = strings.TrimSpace(string(raw))
	}
	return newStoreError(resp.StatusCode, payload.Code, payload.Message)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
