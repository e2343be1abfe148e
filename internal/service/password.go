package service

import (
	"strings"
	"unicode"
)

const minPasswordLength = 8

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "12345678": {}, "123456789": {}, "qwerty123": {},
	"qwertyuiop": {}, "iloveyou": {}, "11111111": {}, "sunshine": {}, "football": {},
	"baseball": {}, "welcome1": {}, "letmein1": {}, "princess": {}, "abc12345": {},
}

// validatePassword applies the length, numeric, common-password and
// similarity rules to a candidate password.
func validatePassword(password string, attrs ...string) error {
	if len([]rune(password)) < minPasswordLength {
		return invalid("password", "this password is too short, it must contain at least %d characters", minPasswordLength)
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return invalid("password", "this password is entirely numeric")
	}
	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return invalid("password", "this password is too common")
	}
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if at := strings.IndexByte(attr, '@'); at > 0 {
			attr = attr[:at]
		}
		if len(attr) >= 3 && (strings.Contains(lower, attr) || strings.Contains(attr, lower)) {
			return invalid("password", "the password is too similar to the user's details")
		}
	}
	return nil
}
