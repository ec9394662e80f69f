// Package shopify is a minimal Admin GraphQL API client covering the order
// operations the sync needs: lookup by tag, tag-add, note update, cancel.
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"iutesync/internal/model"
)

const apiVersion = "2025-01"

// ErrCommerceUnavailable wraps transport failures, GraphQL errors, and
// mutation userErrors from the Admin API.
var ErrCommerceUnavailable = errors.New("shopify unavailable")

// Client issues Admin GraphQL calls for one shop. A client-side limiter
// keeps bursts under the Admin API throttle.
type Client struct {
	Shop string
	// Endpoint overrides the computed Admin API URL, for tests.
	Endpoint string

	token   string
	http    *resty.Client
	limiter *rate.Limiter
}

func NewClient(shop, token string) *Client {
	return &Client{
		Shop:     shop,
		Endpoint: fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, apiVersion),
		token:    token,
		http:     resty.New().SetTimeout(15 * time.Second),
		limiter:  rate.NewLimiter(rate.Limit(2), 4),
	}
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (c *Client) graphql(ctx context.Context, query string, vars map[string]any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Shopify-Access-Token", c.token).
		SetBody(map[string]any{"query": query, "variables": vars}).
		SetResult(&envelope).
		Post(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommerceUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d: %s", ErrCommerceUnavailable, resp.StatusCode(), resp.String())
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: graphql: %s", ErrCommerceUnavailable, envelope.Errors[0].Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: decode: %v", ErrCommerceUnavailable, err)
		}
	}
	return nil
}

func firstUserError(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCommerceUnavailable, errs[0].Message)
}

// FindOrderByIuteID finds the order carrying the IUTE_ORDER_ID correlation
// tag for the given iute order id. A nil OrderRef with nil error means no
// order has been tagged yet.
func (c *Client) FindOrderByIuteID(ctx context.Context, iuteOrderID string) (*model.OrderRef, error) {
	var data struct {
		Orders struct {
			Edges []struct {
				Node model.OrderRef `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	}
	err := c.graphql(ctx, `
		query($q: String!) {
			orders(first: 1, query: $q) {
				edges { node { id name displayFinancialStatus displayFulfillmentStatus tags } }
			}
		}`,
		map[string]any{"q": "tag:IUTE_ORDER_ID:" + iuteOrderID}, &data)
	if err != nil {
		return nil, err
	}
	if len(data.Orders.Edges) == 0 {
		return nil, nil
	}
	node := data.Orders.Edges[0].Node
	return &node, nil
}

// AddOrderTag adds one tag to the order. tagsAdd is set-semantics on the
// Shopify side, so repeating the same tag is a no-op.
func (c *Client) AddOrderTag(ctx context.Context, orderGID, tag string) error {
	var data struct {
		TagsAdd struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"tagsAdd"`
	}
	err := c.graphql(ctx, `
		mutation($id: ID!, $tags: [String!]!) {
			tagsAdd(id: $id, tags: $tags) { userErrors { field message } }
		}`,
		map[string]any{"id": orderGID, "tags": []string{tag}}, &data)
	if err != nil {
		return err
	}
	return firstUserError(data.TagsAdd.UserErrors)
}

// UpdateOrderNote replaces the order's note.
func (c *Client) UpdateOrderNote(ctx context.Context, orderGID, note string) error {
	var data struct {
		OrderUpdate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"orderUpdate"`
	}
	err := c.graphql(ctx, `
		mutation($id: ID!, $note: String!) {
			orderUpdate(input: {id: $id, note: $note}) {
				order { id }
				userErrors { field message }
			}
		}`,
		map[string]any{"id": orderGID, "note": note}, &data)
	if err != nil {
		return err
	}
	return firstUserError(data.OrderUpdate.UserErrors)
}

// CancelOrder cancels the order with reason CUSTOMER, attaching the staff
// note. Cancellation runs as an async job on the Shopify side.
func (c *Client) CancelOrder(ctx context.Context, orderGID, staffNote string) error {
	var data struct {
		OrderCancel struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"orderCancel"`
	}
	err := c.graphql(ctx, `
		mutation($id: ID!, $reason: OrderCancelReason, $staffNote: String) {
			orderCancel(orderId: $id, reason: $reason, staffNote: $staffNote) {
				job { id }
				userErrors { field message }
			}
		}`,
		map[string]any{"id": orderGID, "reason": "CUSTOMER", "staffNote": staffNote}, &data)
	if err != nil {
		return err
	}
	return firstUserError(data.OrderCancel.UserErrors)
}
