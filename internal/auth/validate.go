package auth

import (
	"regexp"
	"strings"
)

const MinPasswordLength = 6

// Deliberately loose: anything@anything.anything, mirroring the client-side
// shape check this flow simulates.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

func validName(name string) bool {
	return len(strings.TrimSpace(name)) >= 2
}
