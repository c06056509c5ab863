package telegram

import "crypto/subtle"

// SecretHeader carries the secret_token given to setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// VerifySecret reports whether the header value matches the configured secret.
// An empty secret accepts every request.
func VerifySecret(secret, header string) bool {
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(header)) == 1
}
