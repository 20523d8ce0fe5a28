// Package totp implements time-based one-time passwords (RFC 6238 over
// RFC 4226): HMAC-SHA1, 30-second steps, 6-digit codes. Secrets are
// base32-encoded so they can be typed into any authenticator app.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// Digits is the length of a generated code.
	Digits = 6

	// Step is the width of one time window.
	Step = 30 * time.Second

	// DriftSteps is how many steps before and after the current one are
	// accepted during verification, to tolerate clock drift.
	DriftSteps = 1

	secretBytes = 20
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a fresh random base32 secret of 160 bits,
// the key size recommended for HMAC-SHA1.
func GenerateSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return b32.EncodeToString(raw), nil
}

// CodeAt computes the code for the time window containing t.
func CodeAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return hotp(key, uint64(t.Unix())/uint64(Step.Seconds())), nil
}

// Verify reports whether code is valid for secret at time t. A code from
// the adjacent window on either side is also accepted (DriftSteps).
// An empty secret never verifies: an account without a provisioned secret
// fails closed.
func Verify(secret, code string, t time.Time) bool {
	if secret == "" || len(code) != Digits {
		return false
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return false
	}

	counter := int64(uint64(t.Unix()) / uint64(Step.Seconds()))

	matched := false
	for offset := -int64(DriftSteps); offset <= int64(DriftSteps); offset++ {
		c := counter + offset
		if c < 0 {
			continue
		}
		want := hotp(key, uint64(c))
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			matched = true
		}
	}

	return matched
}

// ProvisioningURI renders the otpauth:// URL encoding the secret, account
// label, and issuer, suitable for QR-code display during enrollment.
func ProvisioningURI(secret, account, issuer string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", fmt.Sprintf("%d", Digits))
	v.Set("period", fmt.Sprintf("%d", int(Step.Seconds())))

	label := url.PathEscape(issuer + ":" + account)
	return "otpauth://totp/" + label + "?" + v.Encode()
}

// hotp is the RFC 4226 truncated HMAC computation.
func hotp(key []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// dynamic truncation
	off := sum[len(sum)-1] & 0x0f
	bin := binary.BigEndian.Uint32(sum[off:off+4]) & 0x7fffffff

	mod := uint32(1)
	for i := 0; i < Digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", Digits, bin%mod)
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	normalized = strings.TrimRight(normalized, "=")
	return b32.DecodeString(normalized)
}
