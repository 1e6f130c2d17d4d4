package binance

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingCredential is returned when neither explicit credentials nor
// the environment provide an API key pair.
var ErrMissingCredential = errors.New("missing credential")

// Credentials is one venue API key pair.
type Credentials struct {
	Key    string
	Secret string
}

// IsZero reports whether no explicit credentials were supplied.
func (c Credentials) IsZero() bool { return c.Key == "" && c.Secret == "" }

// CacheKey derives the registry key for the shared connection client.
// The separator cannot occur in either field, so distinct pairs can never
// collide.
func (c Credentials) CacheKey() string { return c.Key + "|" + c.Secret }

// credentialEnvVars returns the environment variable names holding the key
// pair for one (account type, network) combination. Each network keeps its
// own credentials, and the futures sub-markets share a pair distinct from
// spot and margin.
func credentialEnvVars(accountType AccountType, testnet bool) (keyVar, secretVar string) {
	accountType.assertKnown()

	if testnet {
		if accountType.IsSpotFamily() {
			return "BINANCE_TESTNET_API_KEY", "BINANCE_TESTNET_API_SECRET"
		}
		return "BINANCE_FUTURES_TESTNET_API_KEY", "BINANCE_FUTURES_TESTNET_API_SECRET"
	}
	if accountType.IsSpotFamily() {
		return "BINANCE_API_KEY", "BINANCE_API_SECRET"
	}
	return "BINANCE_FUTURES_API_KEY", "BINANCE_FUTURES_API_SECRET"
}

// ResolveCredentials returns the explicit pair when supplied, otherwise
// reads the account-type- and network-specific environment variables.
func ResolveCredentials(explicit Credentials, accountType AccountType, testnet bool) (Credentials, error) {
	if !explicit.IsZero() {
		return explicit, nil
	}

	keyVar, secretVar := credentialEnvVars(accountType, testnet)
	key := os.Getenv(keyVar)
	if key == "" {
		return Credentials{}, fmt.Errorf("%w: %s environment variable not set", ErrMissingCredential, keyVar)
	}
	secret := os.Getenv(secretVar)
	if secret == "" {
		return Credentials{}, fmt.Errorf("%w: %s environment variable not set", ErrMissingCredential, secretVar)
	}
	return Credentials{Key: key, Secret: secret}, nil
}
