package email

import (
	"strings"
	"unicode"
)

// Validate performs the local format check applied to waitlist signups before
// any network or store call. It is deliberately shallow: one '@', a non-empty
// local part, and a domain containing a dot. Anything stricter belongs to the
// mail provider.
func Validate(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.IndexByte(email[at+1:], '@') >= 0 {
		return false
	}
	dom := email[at+1:]
	dot := strings.IndexByte(dom, '.')
	if dot <= 0 || dot == len(dom)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\r\n")
}

// DeriveNameFromEmail produces a display first/last name from an address when
// the signup form left the name blank.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Shopper", "Shopper"
	}

	first := capitalize(parts[0])
	last := "Shopper"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
