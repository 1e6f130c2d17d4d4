package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/govenue/pkg/ratelimit"
)

const defaultRecvWindow = 5 * time.Second

// Client-side request quota. The venue caps requests per minute; a 20/s
// sustained rate with a burst of 40 stays inside the published limits.
const (
	defaultBurst       = 40
	defaultRequestRate = 20
)

// RESTClient is the shared connection client for one API key pair. It is
// account-type agnostic; family-specific endpoint paths belong to the
// execution clients built on top of it.
type RESTClient struct {
	client     *resty.Client
	creds      Credentials
	recvWindow time.Duration
	limiter    *ratelimit.TokenBucket
}

// NewRESTClient builds a transport bound to one host and key pair.
func NewRESTClient(baseURL string, creds Credentials) *RESTClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	// The spot testnet host publishes its REST root under /api while the
	// endpoint paths already carry that prefix, so fold the suffix away.
	baseURL = strings.TrimSuffix(baseURL, "/api")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests
		}).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	return &RESTClient{
		client:     client,
		creds:      creds,
		recvWindow: defaultRecvWindow,
		limiter:    ratelimit.NewTokenBucket(defaultBurst, defaultRequestRate),
	}
}

// BaseURL returns the normalized host this client talks to.
func (c *RESTClient) BaseURL() string { return c.client.BaseURL }

func (c *RESTClient) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "govenue-binance")
	if c.creds.Key != "" {
		r.SetHeader("X-MBX-APIKEY", c.creds.Key)
	}
	return r
}

func (c *RESTClient) do(ctx context.Context, method, path string, params url.Values, signed bool, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrapf(err, "%s %s: rate limit wait", method, path)
		}
	}
	if params == nil {
		params = url.Values{}
	}

	if signed {
		params.Set("recvWindow", strconv.FormatInt(c.recvWindow.Milliseconds(), 10))
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	}
	query := params.Encode()
	if signed {
		// Sign exactly the query string that goes on the wire, signature
		// appended last.
		query += "&signature=" + SignQuery(c.creds.Secret, query)
	}

	r := c.newRequest(ctx)
	if out != nil {
		r.SetResult(out)
	}

	// The query rides on the URL itself so the encoded bytes reach the
	// venue untouched; resty would otherwise re-encode and reorder them.
	endpoint := path
	if query != "" {
		endpoint += "?" + query
	}
	resp, err := r.Execute(strings.ToUpper(method), endpoint)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		return parseAPIError(resp)
	}
	return nil
}

// Get performs an unsigned GET against an endpoint path.
func (c *RESTClient) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, false, out)
}

// GetSigned performs a GET with timestamp, receive window, and signature
// attached.
func (c *RESTClient) GetSigned(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, true, out)
}

// Post performs an unsigned POST. Listen-key endpoints authenticate with
// the API key header alone.
func (c *RESTClient) Post(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, params, false, out)
}

// APIError is the venue's structured error body.
type APIError struct {
	Status int    `json:"-"`
	Code   int64  `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance: http %d code %d: %s", e.Status, e.Code, e.Msg)
}

func parseAPIError(resp *resty.Response) error {
	apiErr := &APIError{Status: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Msg == "" {
		return errors.Errorf("http non-2xx: %d %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return apiErr
}

// apiPrefix returns the REST path prefix for one account type. Margin
// market data rides the spot surface.
func apiPrefix(accountType AccountType) string {
	accountType.assertKnown()
	switch {
	case accountType.IsSpotFamily():
		return "/api/v3"
	case accountType == AccountTypeFuturesUSDT:
		return "/fapi/v1"
	default:
		return "/dapi/v1"
	}
}
