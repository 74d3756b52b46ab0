package common

import (
	"fmt"
	"regexp"
	"strings"
)

var badgePattern = regexp.MustCompile(`^\d+$`)

// ValidateBadge validates employee badge numbers (digits only).
func ValidateBadge(badge string) error {
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return fmt.Errorf("badge is required")
	}
	if !badgePattern.MatchString(badge) {
		return fmt.Errorf("badge must contain only digits")
	}
	return nil
}

// NormalizeCPF strips formatting characters from a CPF.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCPF validates a Brazilian CPF number, including both check
// digits. Accepts masked (000.000.000-00) or bare input.
func ValidateCPF(cpf string) error {
	digits := NormalizeCPF(cpf)
	if len(digits) != 11 {
		return fmt.Errorf("CPF must have 11 digits")
	}

	// CPFs with all digits equal pass the checksum but are invalid.
	allEqual := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return fmt.Errorf("CPF is invalid")
	}

	if digitAt(digits, 9) != cpfCheckDigit(digits, 9) {
		return fmt.Errorf("CPF check digit is invalid")
	}
	if digitAt(digits, 10) != cpfCheckDigit(digits, 10) {
		return fmt.Errorf("CPF check digit is invalid")
	}
	return nil
}

func digitAt(digits string, i int) int {
	return int(digits[i] - '0')
}

// cpfCheckDigit computes the check digit verified at position pos (9 or
// 10) from the preceding digits.
func cpfCheckDigit(digits string, pos int) int {
	sum := 0
	weight := pos + 1
	for i := 0; i < pos; i++ {
		sum += digitAt(digits, i) * weight
		weight--
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}
