package utils

import "strings"

// FormatWithCommas renders an integer with thousands separators for display.
func FormatWithCommas(n int) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	digits := []byte{}
	for i := n; ; i /= 10 {
		digits = append(digits, byte('0'+i%10))
		if i < 10 {
			break
		}
	}
	var sb strings.Builder
	for i := len(digits) - 1; i >= 0; i-- {
		sb.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}

// Truncate shortens a string to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
