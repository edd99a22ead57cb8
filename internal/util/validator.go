package util

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxAmount caps any single monetary value entered by hand.
const MaxAmount = 10000000

// ValidateAmount checks that an amount is positive, finite and below MaxAmount.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("amount is not a number")
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= MaxAmount {
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ValidatePrice accepts zero, for free items and unset costs.
func ValidatePrice(v float64) error {
	if v == 0 {
		return nil
	}
	return ValidateAmount(v)
}

// ValidateDate checks the YYYY-MM-DD format.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateName rejects blank names and names longer than max runes.
func ValidateName(name string, max int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if max > 0 && utf8.RuneCountInString(name) > max {
		return fmt.Errorf("name too long, max %d characters", max)
	}
	return nil
}
