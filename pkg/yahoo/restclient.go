package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=restclient.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is returned for non-200 responses. Code and Description are taken
// from the chart error envelope when the body carries one.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Description == "" {
		return fmt.Sprintf("yahoo error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("yahoo error: status %d: %s: %s", e.StatusCode, e.Code, e.Description)
}

// NotFound reports whether Yahoo answered but knows no data for the symbol.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == "Not Found"
}

type RESTClient struct {
	baseURL    string
	httpClient HTTPClient
	userAgent  string
	interval   string
	rng        string
}

// Option configures a RESTClient.
type Option func(*RESTClient)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *RESTClient) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent sent with every request. Yahoo rejects
// requests without one.
func WithUserAgent(ua string) Option {
	return func(c *RESTClient) {
		c.userAgent = ua
	}
}

// WithWindow sets the bar interval and lookback range, "1d" and "1mo" by default.
func WithWindow(interval, rng string) Option {
	return func(c *RESTClient) {
		if interval != "" {
			c.interval = interval
		}
		if rng != "" {
			c.rng = rng
		}
	}
}

func NewRESTClient(baseURL string, timeout time.Duration, options ...Option) *RESTClient {
	c := &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		interval:   "1d",
		rng:        "1mo",
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// GetChart fetches the chart for a symbol over the configured window.
func (c *RESTClient) GetChart(ctx context.Context, symbol string) (*ChartResult, error) {
	endpoint := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL,
		url.PathEscape(symbol),
		url.QueryEscape(c.interval),
		url.QueryEscape(c.rng),
	)

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Code:        gjson.GetBytes(body, "chart.error.code").String(),
			Description: gjson.GetBytes(body, "chart.error.description").String(),
		}
	}

	var rawResp ChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if rawResp.Chart.Error != nil {
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Code:        rawResp.Chart.Error.Code,
			Description: rawResp.Chart.Error.Description,
		}
	}
	if len(rawResp.Chart.Result) == 0 {
		return nil, ErrNoBars
	}

	return &rawResp.Chart.Result[0], nil
}

// GetLatestBar returns the most recent complete bar for a symbol.
func (c *RESTClient) GetLatestBar(ctx context.Context, symbol string) (Bar, error) {
	chart, err := c.GetChart(ctx, symbol)
	if err != nil {
		return Bar{}, err
	}
	return chart.Latest()
}
