package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client resolves snapshots over HTTP from a separately deployed catalog
// service. Selected instead of the DB resolver when CATALOG_URL is set.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(catalogURL string) *Client {
	return &Client{
		baseURL: catalogURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Resolve(ctx context.Context, productID uint) Result[Snapshot] {
	url := fmt.Sprintf("%s/api/v1/products/%d", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Fail[Snapshot](ErrUnavailable)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Fail[Snapshot](ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Fail[Snapshot](ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return Fail[Snapshot](ErrUnavailable)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Fail[Snapshot](ErrDecode)
	}
	return Ok(snap)
}
