package domain

import (
	"fmt"
	"regexp"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address is valid. Matching against stored
// emails is always exact; no normalization happens anywhere.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// ValidateDailyLimit checks that a daily limit is non-negative. Zero is a
// valid value and means "no further play today".
func ValidateDailyLimit(minutes int32) error {
	if minutes < 0 {
		return fmt.Errorf("daily limit must be >= 0 minutes, got %d", minutes)
	}
	return nil
}

// ValidateDateOfBirth checks an optional ISO date string.
func ValidateDateOfBirth(dob *string) error {
	if dob == nil || *dob == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *dob); err != nil {
		return fmt.Errorf("date of birth must be YYYY-MM-DD")
	}
	return nil
}
