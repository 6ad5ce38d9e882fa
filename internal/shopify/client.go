package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiVersion = "2024-01"

	// MaxPageSize is the upstream hard limit on orders per page.
	MaxPageSize = 250

	defaultRetryAfter = 5 * time.Second
)

// ErrNotConfigured is returned when shop credentials are absent. It is
// surfaced at the point of use so the rest of the application stays
// usable without the integration.
var ErrNotConfigured = errors.New("shopify_not_configured")

// APIError is a non-2xx, non-429 upstream response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify api error: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	shopURL     string
	accessToken string
	httpClient  *http.Client
	log         *zap.Logger
}

func NewClient(shopURL, accessToken string, log *zap.Logger) *Client {
	return &Client{
		shopURL:     strings.TrimSuffix(shopURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         log.Named("shopify.client"),
	}
}

// ListOrdersParams narrows an orders.json fetch. When PageInfo is set the
// upstream API rejects every other filter except Limit, so the client
// sends only those two.
type ListOrdersParams struct {
	Limit        int
	Status       string
	SinceID      int64
	CreatedAtMin *time.Time
	PageInfo     string
}

// ListOrders fetches one page of orders and the page_info token for the
// next page, empty when the listing is exhausted.
func (c *Client) ListOrders(ctx context.Context, params ListOrdersParams) ([]Order, string, error) {
	query := url.Values{}
	limit := params.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	query.Set("limit", strconv.Itoa(limit))

	if params.PageInfo != "" {
		query.Set("page_info", params.PageInfo)
	} else {
		if params.Status != "" {
			query.Set("status", params.Status)
		}
		if params.SinceID > 0 {
			query.Set("since_id", strconv.FormatInt(params.SinceID, 10))
		}
		if params.CreatedAtMin != nil {
			query.Set("created_at_min", params.CreatedAtMin.UTC().Format(time.RFC3339))
		}
	}

	var payload struct {
		Orders []Order `json:"orders"`
	}
	header, err := c.getJSON(ctx, "/orders.json", query, &payload)
	if err != nil {
		return nil, "", err
	}

	next := NextPageInfo(header.Get("Link"))
	return payload.Orders, next, nil
}

// getJSON performs a GET with rate-limit handling: 429 responses wait out
// Retry-After and retry the same request until the context is done.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) (http.Header, error) {
	if c.shopURL == "" || c.accessToken == "" {
		return nil, ErrNotConfigured
	}

	u := fmt.Sprintf("%s/admin/api/%s%s?%s", c.shopURL, apiVersion, endpoint, query.Encode())

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header.Get("Retry-After"))
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.log.Warn("rate limited, backing off",
				zap.String("endpoint", endpoint),
				zap.Duration("retry_after", wait),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", endpoint, err)
		}
		return resp.Header, nil
	}
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || secs <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs * float64(time.Second))
}

// NextPageInfo extracts the rel="next" page_info token from a Link
// response header, empty when there is no further page.
func NextPageInfo(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if !strings.Contains(section[1], `rel="next"`) {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(section[0]), "<>")
		parsed, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return parsed.Query().Get("page_info")
	}
	return ""
}
