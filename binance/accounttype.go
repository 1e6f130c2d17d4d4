// Package binance resolves Binance endpoints, credentials, and ready
// execution clients across the venue's sub-markets. One venue account may
// trade spot, margin, USDT-margined futures, or coin-margined futures;
// everything that must branch on that choice lives here.
package binance

import (
	"fmt"
	"strings"
)

// AccountType enumerates the venue sub-markets.
type AccountType string

const (
	AccountTypeSpot        AccountType = "SPOT"
	AccountTypeMargin      AccountType = "MARGIN"
	AccountTypeFuturesUSDT AccountType = "FUTURES_USDT"
	AccountTypeFuturesCoin AccountType = "FUTURES_COIN"
)

// ParseAccountType validates a configuration string. Unlike the resolver
// switches below, bad configuration input is a recoverable error.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case AccountTypeSpot, AccountTypeMargin, AccountTypeFuturesUSDT, AccountTypeFuturesCoin:
		return t, nil
	default:
		return "", fmt.Errorf("invalid account type %q", s)
	}
}

// IsSpot reports whether this is the spot sub-market.
func (t AccountType) IsSpot() bool { return t == AccountTypeSpot }

// IsMargin reports whether this is the margin sub-market.
func (t AccountType) IsMargin() bool { return t == AccountTypeMargin }

// IsSpotFamily reports whether the account shares the spot API surface.
// Margin trades through the spot host family.
func (t AccountType) IsSpotFamily() bool { return t.IsSpot() || t.IsMargin() }

// IsFuturesFamily reports whether the account is either futures sub-market.
func (t AccountType) IsFuturesFamily() bool {
	return t == AccountTypeFuturesUSDT || t == AccountTypeFuturesCoin
}

// assertKnown is the loud failure for enum values that cannot come from
// configuration, only from a coding defect.
func (t AccountType) assertKnown() {
	switch t {
	case AccountTypeSpot, AccountTypeMargin, AccountTypeFuturesUSDT, AccountTypeFuturesCoin:
	default:
		panic(fmt.Sprintf("invalid account type, was %s", t))
	}
}
