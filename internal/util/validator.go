package util

import "regexp"

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPassword checks the password policy: at least 8 characters with at
// least one letter and one digit. Symbols and other characters are allowed
// but do not count toward either requirement.
func ValidPassword(pwd string) bool {
	if len(pwd) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z':
			hasLetter = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

var otpRe = regexp.MustCompile(`^\d{4}$`)

// ValidOTP reports whether s is exactly four digits.
func ValidOTP(s string) bool {
	return otpRe.MatchString(s)
}
