// Package homebox provides the client for the Homebox inventory API and the
// credential manager that keeps it authenticated.
package homebox

import (
	"bytes"
	"context"
	"encoding/json"
	stderr "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oangelo/homebox-mcp/pkg/config"
	"github.com/oangelo/homebox-mcp/pkg/errors"
	"github.com/oangelo/homebox-mcp/pkg/logger"
)

// requestTimeout is the timeout for outgoing Homebox API requests.
const requestTimeout = 30 * time.Second

// Client wraps authorized calls to the Homebox API. All calls obtain a token
// from the credential manager; on a 401 the credential is invalidated and the
// call is retried exactly once with a fresh token.
type Client struct {
	baseURL    string
	creds      *Credentials
	httpClient *http.Client
}

// NewClient creates a Homebox API client.
func NewClient(cfg *config.Config, creds *Credentials) *Client {
	return &Client{
		baseURL:    cfg.APIBaseURL(),
		creds:      creds,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// do issues an authenticated request and decodes the JSON response into out
// (which may be nil for endpoints that return no body).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request payload: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired or revoked: renew silently and retry exactly once.
		drain(resp)
		logger.Debug("homebox token rejected, re-authenticating")
		c.creds.Invalidate()

		resp, err = c.send(ctx, method, path, query, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Second consecutive authorization failure is terminal.
		return errors.NewAuthenticationError(resp.StatusCode, readBody(resp), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewBackingServiceError(resp.StatusCode, readBody(resp), nil)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewBackingServiceError(resp.StatusCode, "", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// send performs a single HTTP round trip with the current credential.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, errors.NewBackingServiceError(0, "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.NewBackingServiceTimeout(err)
		}
		return nil, errors.NewBackingServiceError(0, "", err)
	}
	return resp, nil
}

func isTimeout(err error) bool {
	if stderr.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return stderr.As(err, &netErr) && netErr.Timeout()
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return strings.TrimSpace(string(b))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

// ---------------------------------------------------------------------------
// Locations
// ---------------------------------------------------------------------------

// ListLocations returns all locations.
func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	var locations []Location
	if err := c.do(ctx, http.MethodGet, "/locations", nil, nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// GetLocation returns a location by ID.
func (c *Client) GetLocation(ctx context.Context, locationID string) (*Location, error) {
	var location Location
	if err := c.do(ctx, http.MethodGet, "/locations/"+locationID, nil, nil, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// CreateLocation creates a new location.
func (c *Client) CreateLocation(ctx context.Context, create LocationCreate) (*Location, error) {
	var location Location
	if err := c.do(ctx, http.MethodPost, "/locations", nil, create, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// UpdateLocation updates a location; nil fields are left unchanged.
func (c *Client) UpdateLocation(ctx context.Context, locationID string, update LocationUpdate) (*Location, error) {
	var location Location
	if err := c.do(ctx, http.MethodPut, "/locations/"+locationID, nil, update, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// DeleteLocation deletes a location.
func (c *Client) DeleteLocation(ctx context.Context, locationID string) error {
	return c.do(ctx, http.MethodDelete, "/locations/"+locationID, nil, nil, nil)
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// ListItems returns items matching the filter.
func (c *Client) ListItems(ctx context.Context, filter ItemFilter) (*ItemsPage, error) {
	query := url.Values{}
	if filter.LocationID != "" {
		query.Set("locations", filter.LocationID)
	}
	if filter.LabelID != "" {
		query.Set("labels", filter.LabelID)
	}
	if filter.Search != "" {
		query.Set("q", filter.Search)
	}

	var page ItemsPage
	if err := c.do(ctx, http.MethodGet, "/items", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchItems performs a textual search over item names and descriptions.
func (c *Client) SearchItems(ctx context.Context, query string) (*ItemsPage, error) {
	return c.ListItems(ctx, ItemFilter{Search: query})
}

// GetItem returns an item with full details.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodGet, "/items/"+itemID, nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem creates a new item.
func (c *Client) CreateItem(ctx context.Context, create ItemCreate) (*Item, error) {
	if create.Quantity == 0 {
		create.Quantity = 1
	}
	var item Item
	if err := c.do(ctx, http.MethodPost, "/items", nil, create, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem updates an item. The backing API requires full payloads on PUT,
// so the current item is fetched first and the provided fields merged in.
func (c *Client) UpdateItem(ctx context.Context, itemID string, update ItemUpdate) (*Item, error) {
	current, err := c.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	payload := itemPut{
		ID:          itemID,
		Name:        current.Name,
		Description: current.Description,
		Quantity:    current.Quantity,
		LocationID:  current.Location.ID,
	}
	for _, label := range current.Labels {
		payload.LabelIDs = append(payload.LabelIDs, label.ID)
	}

	if update.Name != nil {
		payload.Name = *update.Name
	}
	if update.Description != nil {
		payload.Description = *update.Description
	}
	if update.Quantity != nil {
		payload.Quantity = *update.Quantity
	}
	if update.LocationID != nil {
		payload.LocationID = *update.LocationID
	}
	if update.LabelIDs != nil {
		payload.LabelIDs = update.LabelIDs
	}
	payload.Insured = update.Insured
	payload.Archived = update.Archived
	payload.AssetID = update.AssetID
	payload.SerialNumber = update.SerialNumber
	payload.ModelNumber = update.ModelNumber
	payload.Manufacturer = update.Manufacturer
	payload.PurchasePrice = update.PurchasePrice
	payload.Notes = update.Notes

	var item Item
	if err := c.do(ctx, http.MethodPut, "/items/"+itemID, nil, payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// MoveItem moves an item to a different location.
func (c *Client) MoveItem(ctx context.Context, itemID, locationID string) (*Item, error) {
	return c.UpdateItem(ctx, itemID, ItemUpdate{LocationID: &locationID})
}

// DeleteItem deletes an item.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/items/"+itemID, nil, nil, nil)
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// ListLabels returns all labels.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var labels []Label
	if err := c.do(ctx, http.MethodGet, "/labels", nil, nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// GetLabel returns a label by ID.
func (c *Client) GetLabel(ctx context.Context, labelID string) (*Label, error) {
	var label Label
	if err := c.do(ctx, http.MethodGet, "/labels/"+labelID, nil, nil, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// CreateLabel creates a new label.
func (c *Client) CreateLabel(ctx context.Context, create LabelCreate) (*Label, error) {
	var label Label
	if err := c.do(ctx, http.MethodPost, "/labels", nil, create, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// UpdateLabel updates a label; nil fields are left unchanged.
func (c *Client) UpdateLabel(ctx context.Context, labelID string, update LabelUpdate) (*Label, error) {
	var label Label
	if err := c.do(ctx, http.MethodPut, "/labels/"+labelID, nil, update, &label); err != nil {
		return nil, err
	}
	return &label, nil
}

// DeleteLabel deletes a label. Associated items keep existing, they only
// lose the label.
func (c *Client) DeleteLabel(ctx context.Context, labelID string) error {
	return c.do(ctx, http.MethodDelete, "/labels/"+labelID, nil, nil, nil)
}

// ---------------------------------------------------------------------------
// Statistics
// ---------------------------------------------------------------------------

// Statistics returns the group statistics summary.
func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := c.do(ctx, http.MethodGet, "/groups/statistics", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
