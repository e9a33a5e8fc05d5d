// Package validation holds input validation rules for user-supplied fields.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	walletRegex   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// ValidateUsername checks username format: 3-30 chars, alphanumeric plus
// underscore.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters and contain only letters, numbers and underscores")
	}
	return nil
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword enforces a minimum length of 8 with at least one letter
// and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateWalletAddress checks the 0x-prefixed 40 hex char address format.
func ValidateWalletAddress(addr string) error {
	if !walletRegex.MatchString(addr) {
		return fmt.Errorf("invalid wallet address")
	}
	return nil
}

// ValidatePostContent rejects content that is blank or too long. Empty
// content is allowed when the post carries media, so callers pass hasMedia.
func ValidatePostContent(content string, hasMedia bool) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" && !hasMedia {
		return fmt.Errorf("post must have text or at least one attachment")
	}
	if len(content) > 10000 {
		return fmt.Errorf("post content must be at most 10000 characters")
	}
	return nil
}
