package utils

import "strings"

// MaskCardNumber keeps the first six and last four digits of a card number
// and masks the rest. Already masked values are returned unchanged.
// Example: "5361121234561234" -> "536112******1234"
func MaskCardNumber(cardNo string) string {
	digits := strings.NewReplacer("-", "", " ", "").Replace(cardNo)
	if strings.Contains(digits, "*") {
		return digits
	}
	if len(digits) <= 10 {
		return strings.Repeat("*", len(digits))
	}
	return digits[:6] + strings.Repeat("*", len(digits)-10) + digits[len(digits)-4:]
}

// MaskEmail masks an email address for safe logging.
// Example: "user@example.com" -> "u***@example.com"
func MaskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	if len(local) <= 1 {
		return local + "***@" + parts[1]
	}
	return string(local[0]) + "***@" + parts[1]
}
