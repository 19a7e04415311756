package logging

import (
	"regexp"
)

var (
	rePassword = regexp.MustCompile(`(?i)("?password"?\s*[=:]\s*"?)([^\s;",}]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+|"access_token"\s*:\s*")([A-Za-z0-9._-]+)`)
	reCPF      = regexp.MustCompile(`\b(\d{3})\.?\d{3}\.?\d{3}-?(\d{2})\b`)
)

// Mask replaces passwords and bearer tokens with "***" and hides the
// middle digits of CPF numbers.
func Mask(s string) string {
	out := rePassword.ReplaceAllString(s, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reCPF.ReplaceAllString(out, "$1.***.***-$2")
	return out
}

// MaskToken keeps only the last four characters of a token.
func MaskToken(token string) string {
	if len(token) <= 4 {
		return "***"
	}
	return "***" + token[len(token)-4:]
}
