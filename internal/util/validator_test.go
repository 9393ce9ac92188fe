package util

import "testing"

func TestValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"a.b+c@sub.domain.org",
		"x@y.io",
	}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = false, want true", e)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"two@@example.com",
		"spaces in@example.com",
		"missing@tld",
		"@example.com",
	}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = true, want false", e)
		}
	}
}

func TestValidPassword(t *testing.T) {
	valid := []string{
		"abcdefg1",
		"Password123",
		"p@ssw0rd!!",
		"12345678a",
	}
	for _, p := range valid {
		if !ValidPassword(p) {
			t.Errorf("ValidPassword(%q) = false, want true", p)
		}
	}

	invalid := []string{
		"",
		"short1a",     // 7 chars
		"allletters",  // no digit
		"1234567890",  // no letter
		"!!!!!!!!9",   // symbols do not count as letters
	}
	for _, p := range invalid {
		if ValidPassword(p) {
			t.Errorf("ValidPassword(%q) = true, want false", p)
		}
	}
}

func TestValidOTP(t *testing.T) {
	if !ValidOTP("0042") {
		t.Error("ValidOTP(0042) = false, want true")
	}
	for _, s := range []string{"", "123", "12345", "12a4", "12 4"} {
		if ValidOTP(s) {
			t.Errorf("ValidOTP(%q) = true, want false", s)
		}
	}
}
