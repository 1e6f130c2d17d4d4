package binance

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/govenue/pkg/fixed"
	"github.com/betbot/govenue/pkg/registry"
)

var log = logrus.WithField("component", "binance")

// Caches holds the process-wide registries the factory shares across
// calls. The composition root constructs one Caches value and passes it
// to every factory call, so at-most-one-construction-per-key holds
// without hidden package state.
type Caches struct {
	Clients   *registry.Registry[string, *RESTClient]
	Providers *registry.Registry[AccountType, *InstrumentProvider]
}

func NewCaches() *Caches {
	return &Caches{
		Clients:   registry.New[string, *RESTClient](),
		Providers: registry.New[AccountType, *InstrumentProvider](),
	}
}

// ClientConfig selects the sub-market, network, and credentials for one
// execution client. Zero-valued optional fields fall back to the resolver
// and the environment.
type ClientConfig struct {
	AccountType AccountType
	Testnet     bool
	US          bool

	// Credentials overrides environment lookup when non-zero.
	Credentials Credentials

	// BaseURLHTTP and BaseURLWS bypass the venue/network resolver.
	BaseURLHTTP string
	BaseURLWS   string
}

// ExecClient is the capability surface shared by both market families.
// Downstream code never branches on account type again.
type ExecClient interface {
	AccountType() AccountType
	WSBaseURL() string
	REST() *RESTClient
	Instruments() *InstrumentProvider

	Ping(ctx context.Context) error
	ServerTime(ctx context.Context) (time.Time, error)
	ValidateCredentials(ctx context.Context) error
}

// NewExecClient resolves endpoints and credentials, obtains the shared
// connection client and instrument provider through the caches, and
// selects the family variant. This is the only place that branches on
// market family.
func NewExecClient(caches *Caches, cfg ClientConfig) (ExecClient, error) {
	urls, err := Resolve(cfg.AccountType, cfg.Testnet, cfg.US, cfg.BaseURLHTTP, cfg.BaseURLWS)
	if err != nil {
		return nil, err
	}

	creds, err := ResolveCredentials(cfg.Credentials, cfg.AccountType, cfg.Testnet)
	if err != nil {
		return nil, err
	}

	rest, err := caches.Clients.GetOrCreate(creds.CacheKey(), func() (*RESTClient, error) {
		log.WithFields(logrus.Fields{
			"account_type": cfg.AccountType,
			"base_url":     urls.HTTP,
			"testnet":      cfg.Testnet,
		}).Info("creating shared connection client")
		return NewRESTClient(urls.HTTP, creds), nil
	})
	if err != nil {
		return nil, err
	}

	provider, err := caches.Providers.GetOrCreate(cfg.AccountType, func() (*InstrumentProvider, error) {
		return NewInstrumentProvider(rest, cfg.AccountType), nil
	})
	if err != nil {
		return nil, err
	}

	base := baseExecClient{
		accountType: cfg.AccountType,
		rest:        rest,
		provider:    provider,
		wsURL:       urls.WS,
	}
	if cfg.AccountType.IsSpotFamily() {
		return &SpotClient{baseExecClient: base}, nil
	}
	return &FuturesClient{baseExecClient: base}, nil
}

// baseExecClient carries the state both families share. Endpoint paths
// that differ only by prefix are derived from the account type.
type baseExecClient struct {
	accountType AccountType
	rest        *RESTClient
	provider    *InstrumentProvider
	wsURL       string
}

func (c *baseExecClient) AccountType() AccountType         { return c.accountType }
func (c *baseExecClient) WSBaseURL() string                { return c.wsURL }
func (c *baseExecClient) REST() *RESTClient                { return c.rest }
func (c *baseExecClient) Instruments() *InstrumentProvider { return c.provider }

func (c *baseExecClient) Ping(ctx context.Context) error {
	return c.rest.Get(ctx, apiPrefix(c.accountType)+"/ping", nil, nil)
}

type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

func (c *baseExecClient) ServerTime(ctx context.Context) (time.Time, error) {
	var out serverTimeResponse
	if err := c.rest.Get(ctx, apiPrefix(c.accountType)+"/time", nil, &out); err != nil {
		return time.Time{}, err
	}
	return fixed.TimeFromMillis(out.ServerTime)
}

// SpotClient serves the spot and margin sub-markets.
type SpotClient struct {
	baseExecClient
}

// ValidateCredentials hits the signed account endpoint for the sub-market
// carried as state.
func (c *SpotClient) ValidateCredentials(ctx context.Context) error {
	path := "/api/v3/account"
	if c.accountType.IsMargin() {
		path = "/sapi/v1/margin/account"
	}
	return c.rest.GetSigned(ctx, path, nil, nil)
}

// FuturesClient serves the USDT-margined and coin-margined sub-markets.
type FuturesClient struct {
	baseExecClient
}

func (c *FuturesClient) ValidateCredentials(ctx context.Context) error {
	path := "/fapi/v2/account"
	if c.accountType == AccountTypeFuturesCoin {
		path = "/dapi/v1/account"
	}
	return c.rest.GetSigned(ctx, path, nil, nil)
}
