package binance

import (
	"errors"
	"fmt"
)

// ErrUnsupportedNetworkCombination is returned when no endpoint exists for
// the requested (account type, network) pair. The venue runs no COIN-M
// futures test network for streams.
var ErrUnsupportedNetworkCombination = errors.New("unsupported network combination")

// URLs is the resolved endpoint pair for one client.
type URLs struct {
	HTTP string
	WS   string
}

// HTTPBaseURL resolves the REST host for the given account type. The
// testnet flag takes precedence over the regional flag; regional accounts
// only swap the top-level domain of the live hosts.
func HTTPBaseURL(accountType AccountType, testnet, us bool) string {
	accountType.assertKnown()

	if testnet {
		if accountType.IsSpotFamily() {
			return "https://testnet.binance.vision/api"
		}
		return "https://testnet.binancefuture.com"
	}

	tld := "com"
	if us {
		tld = "us"
	}
	switch accountType {
	case AccountTypeSpot:
		return fmt.Sprintf("https://api.binance.%s", tld)
	case AccountTypeMargin:
		return fmt.Sprintf("https://sapi.binance.%s", tld)
	case AccountTypeFuturesUSDT:
		return fmt.Sprintf("https://fapi.binance.%s", tld)
	default:
		return fmt.Sprintf("https://dapi.binance.%s", tld)
	}
}

// WSBaseURL resolves the stream host for the given account type.
func WSBaseURL(accountType AccountType, testnet, us bool) (string, error) {
	accountType.assertKnown()

	if testnet {
		switch {
		case accountType.IsSpotFamily():
			return "wss://testnet.binance.vision", nil
		case accountType == AccountTypeFuturesUSDT:
			return "wss://stream.binancefuture.com", nil
		default:
			return "", fmt.Errorf("%w: no COIN-M futures testnet stream", ErrUnsupportedNetworkCombination)
		}
	}

	tld := "com"
	if us {
		tld = "us"
	}
	switch {
	case accountType.IsSpotFamily():
		return fmt.Sprintf("wss://stream.binance.%s:9443", tld), nil
	case accountType == AccountTypeFuturesUSDT:
		return fmt.Sprintf("wss://fstream.binance.%s", tld), nil
	default:
		return fmt.Sprintf("wss://dstream.binance.%s", tld), nil
	}
}

// Resolve returns both endpoints for one account, applying explicit
// overrides when set.
func Resolve(accountType AccountType, testnet, us bool, overrideHTTP, overrideWS string) (URLs, error) {
	u := URLs{HTTP: overrideHTTP, WS: overrideWS}
	if u.HTTP == "" {
		u.HTTP = HTTPBaseURL(accountType, testnet, us)
	}
	if u.WS == "" {
		ws, err := WSBaseURL(accountType, testnet, us)
		if err != nil {
			return URLs{}, err
		}
		u.WS = ws
	}
	return u, nil
}
