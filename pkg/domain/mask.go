package domain

import "strings"

// MaskKey redacts a stored PIX key for display without constructing a PixKey.
// The read path uses it because historical rows may carry types that are no
// longer accepted at request time (cpf, cnpj, legacy aliases).
func MaskKey(keyType, key string) string {
	t := strings.ToLower(strings.TrimSpace(keyType))
	k := strings.TrimSpace(key)

	switch t {
	case "email":
		at := strings.Index(k, "@")
		if at < 0 {
			return maskFallback(k)
		}
		local, domain := k[:at], k[at+1:]
		keep := max(0, min(2, len(local)))
		return local[:keep] + strings.Repeat("*", max(0, len(local)-keep)) + "@" + domain
	case "phone", "telefone", "celular":
		digits := digitsOnly(k)
		if digits == "" {
			return maskFallback(k)
		}
		last := digits[max(0, len(digits)-4):]
		return strings.Repeat("*", max(0, len(digits)-4)) + last
	case "cpf":
		digits := digitsOnly(k)
		if len(digits) != 11 {
			return maskFallback(k)
		}
		return digits[:3] + ".***.***-" + digits[9:11]
	case "cnpj":
		digits := digitsOnly(k)
		if len(digits) != 14 {
			return maskFallback(k)
		}
		return digits[:2] + ".***.***/****-" + digits[12:14]
	case "evp", "aleatoria", "random", "chave_aleatoria":
		if len(k) <= 10 {
			return maskFallback(k)
		}
		return k[:6] + strings.Repeat("*", len(k)-10) + k[len(k)-4:]
	default:
		return maskFallback(k)
	}
}

func maskFallback(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
