package polymarket

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// Environment variables the feed resolves credentials and identity from
// when none are supplied explicitly.
const (
	EnvAPIKey        = "POLYMARKET_API_KEY"
	EnvAPISecret     = "POLYMARKET_API_SECRET"
	EnvAPIPassphrase = "POLYMARKET_API_PASSPHRASE"
	EnvFunder        = "POLYMARKET_FUNDER"
	EnvMnemonic      = "POLYMARKET_MNEMONIC"
)

const defaultDerivationPath = "m/44'/60'/0'/0/0"

// ErrMissingCredential indicates a credential that was neither supplied
// explicitly nor present in the environment.
var ErrMissingCredential = errors.New("missing credential")

// Credentials authenticates the user-channel subscription.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// CredentialsFromEnv reads the API credential triple from the environment.
func CredentialsFromEnv() (Credentials, error) {
	creds := Credentials{
		APIKey:     strings.TrimSpace(os.Getenv(EnvAPIKey)),
		APISecret:  strings.TrimSpace(os.Getenv(EnvAPISecret)),
		Passphrase: strings.TrimSpace(os.Getenv(EnvAPIPassphrase)),
	}
	for _, v := range []struct {
		name  string
		value string
	}{
		{EnvAPIKey, creds.APIKey},
		{EnvAPISecret, creds.APISecret},
		{EnvAPIPassphrase, creds.Passphrase},
	} {
		if v.value == "" {
			return Credentials{}, fmt.Errorf("%w: %s environment variable not set", ErrMissingCredential, v.name)
		}
	}
	return creds, nil
}

// MakerAddressFromEnv resolves the local maker address used to pick our
// order out of maker-perspective trades. POLYMARKET_FUNDER wins when set;
// otherwise the address derives from POLYMARKET_MNEMONIC.
func MakerAddressFromEnv() (common.Address, error) {
	if funder := strings.TrimSpace(os.Getenv(EnvFunder)); funder != "" {
		if !common.IsHexAddress(funder) {
			return common.Address{}, fmt.Errorf("invalid %s address: %q", EnvFunder, funder)
		}
		return common.HexToAddress(funder), nil
	}
	if mnemonic := strings.TrimSpace(os.Getenv(EnvMnemonic)); mnemonic != "" {
		return AddressFromMnemonic(mnemonic, defaultDerivationPath)
	}
	return common.Address{}, fmt.Errorf("%w: neither %s nor %s environment variable set",
		ErrMissingCredential, EnvFunder, EnvMnemonic)
}

// AddressFromMnemonic derives the wallet address for a BIP-39 mnemonic at
// the given derivation path.
func AddressFromMnemonic(mnemonic, derivationPath string) (common.Address, error) {
	w, err := hdwallet.NewFromMnemonic(strings.TrimSpace(mnemonic))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid mnemonic: %w", err)
	}
	path, err := hdwallet.ParseDerivationPath(derivationPath)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid derivation path: %w", err)
	}
	acct, err := w.Derive(path, false)
	if err != nil {
		return common.Address{}, fmt.Errorf("derive failed: %w", err)
	}
	return acct.Address, nil
}
