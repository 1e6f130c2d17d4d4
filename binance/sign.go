package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignQuery computes the request signature the venue expects on signed
// endpoints: a hex-encoded HMAC-SHA256 of the encoded query string.
func SignQuery(secret, query string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
