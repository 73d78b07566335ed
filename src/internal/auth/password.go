package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
)

// Password computes the login password for a challenge: the lowercase hex
// HMAC-SHA1 of the challenge keyed by the app token.
func Password(appToken, challenge string) string {
	mac := hmac.New(sha1.New, []byte(appToken))
	mac.Write([]byte(challenge))
	return hex.EncodeToString(mac.Sum(nil))
}
