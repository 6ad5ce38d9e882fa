package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HeaderHmac carries the webhook signature on inbound requests.
const HeaderHmac = "X-Shopify-Hmac-SHA256"

// VerifyWebhook checks the HMAC-SHA256 signature of a raw webhook body
// against the shared secret using a constant-time comparison.
func VerifyWebhook(secret, body []byte, signature string) bool {
	if len(secret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
