package domain

import (
	"net/mail"
	"strings"
)

// PixKeyType identifies the kind of destination key a withdrawal targets.
type PixKeyType string

// Supported PIX key types.
const (
	PixKeyEmail  PixKeyType = "email"
	PixKeyPhone  PixKeyType = "phone"
	PixKeyRandom PixKeyType = "random"
)

// PixKey is the validated destination of a PIX withdrawal.
// Construction is the only way to obtain one, so an instance can never hold
// an invalid key.
type PixKey struct {
	keyType PixKeyType
	key     string
}

// NewPixKey normalizes and validates a PIX key. The type is trimmed and
// lower-cased; the key is trimmed. Validation is per type: email must pass
// address syntax, phone must carry at least 8 digits, random keys must be at
// least 16 characters long.
func NewPixKey(keyType, key string) (PixKey, error) {
	t := PixKeyType(strings.ToLower(strings.TrimSpace(keyType)))
	k := strings.TrimSpace(key)

	switch t {
	case PixKeyEmail:
		if !validEmail(k) {
			return PixKey{}, ErrInvalidPixEmail
		}
	case PixKeyPhone:
		if len(digitsOnly(k)) < 8 {
			return PixKey{}, ErrInvalidPixPhone
		}
	case PixKeyRandom:
		if len(k) < 16 {
			return PixKey{}, ErrInvalidPixRandomKey
		}
	default:
		return PixKey{}, ErrUnsupportedPixType
	}

	return PixKey{keyType: t, key: k}, nil
}

// RestorePixKey rebuilds a key from storage fields without re-validating.
// Rows only ever hold keys that passed NewPixKey when they were written.
func RestorePixKey(keyType, key string) PixKey {
	return PixKey{keyType: PixKeyType(keyType), key: key}
}

// Type returns the normalized key type.
func (p PixKey) Type() PixKeyType {
	return p.keyType
}

// Key returns the raw key. Never log this directly; use Mask.
func (p PixKey) Key() string {
	return p.key
}

// Mask returns a partially redacted form of the key, safe for logs and API
// responses.
func (p PixKey) Mask() string {
	switch p.keyType {
	case PixKeyEmail:
		return maskEmail(p.key)
	case PixKeyPhone:
		return maskPhone(p.key)
	case PixKeyRandom:
		return maskRandom(p.key)
	default:
		return "***"
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	// require a dotted domain, e.g. "user@host" alone is not accepted
	at := strings.LastIndex(s, "@")
	return strings.Contains(s[at+1:], ".")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func maskEmail(email string) string {
	at := strings.Index(email, "@")
	user, domain := email[:at], email[at+1:]
	if user == "" {
		return "***@" + domain
	}
	keep := min(3, max(1, len(user)/2))
	return user[:keep] + strings.Repeat("*", max(3, len(user)-keep)) + "@" + domain
}

func maskPhone(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return "+" + digits[:2] + strings.Repeat("*", max(2, len(digits)-4)) + digits[len(digits)-2:]
}

func maskRandom(key string) string {
	if len(key) <= 6 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + strings.Repeat("*", len(key)-6) + key[len(key)-3:]
}
