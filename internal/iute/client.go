package iute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"iutesync/internal/model"
)

// ErrProviderUnavailable wraps transport and non-2xx failures from the
// provider's management API.
var ErrProviderUnavailable = errors.New("iute provider unavailable")

// Client calls the iute e-shop management API for one country domain.
type Client struct {
	Domain   string
	adminKey string
	http     *resty.Client
}

func NewClient(domain, adminKey string) *Client {
	rc := resty.New().
		SetBaseURL(domain).
		SetTimeout(10 * time.Second).
		SetHeader("accept", "*/*")
	return &Client{Domain: domain, adminKey: adminKey, http: rc}
}

// LoanApplicationStatus fetches the raw status object for an iute order id.
// The payload shape varies between deployments, so it stays an untyped map
// until NormalizeStatus collapses it.
func (c *Client) LoanApplicationStatus(ctx context.Context, orderID string) (map[string]any, error) {
	var out map[string]any
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-iute-admin-key", c.adminKey).
		SetQueryParam("orderId", orderID).
		SetResult(&out).
		Get("/api/v1/eshop/management/loan-application-status")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode(), resp.String())
	}
	return out, nil
}

// LoanProducts lists the loan products configured for the merchant. The
// response is passed through untouched for the management proxy.
func (c *Client) LoanProducts(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-iute-admin-key", c.adminKey).
		Get("/api/v1/eshop/management/loan-product")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode())
	}
	return json.RawMessage(resp.Body()), nil
}

// ProductMappings lists the current product-to-SKU mappings.
func (c *Client) ProductMappings(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-iute-admin-key", c.adminKey).
		SetQueryParam("size", "500").
		Get("/api/v1/eshop/management/product-mapping")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode())
	}
	return json.RawMessage(resp.Body()), nil
}

// UpsertProductMappings writes mappings in batch (v2 endpoint).
func (c *Client) UpsertProductMappings(ctx context.Context, mappings []model.ProductMapping) (json.RawMessage, error) {
	return c.batchMappings(ctx, resty.MethodPost, mappings)
}

// DeleteProductMappings removes mappings in batch (v2 endpoint).
func (c *Client) DeleteProductMappings(ctx context.Context, mappings []model.ProductMapping) (json.RawMessage, error) {
	return c.batchMappings(ctx, resty.MethodDelete, mappings)
}

func (c *Client) batchMappings(ctx context.Context, method string, mappings []model.ProductMapping) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-iute-admin-key", c.adminKey).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("batch", "true").
		SetBody(mappings).
		Execute(method, "/api/v2/eshop/management/product-mapping")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode())
	}
	body := resp.Body()
	if len(body) == 0 {
		body = []byte(`{}`)
	}
	return json.RawMessage(body), nil
}
