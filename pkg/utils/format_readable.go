package utils

import "fmt"

// FormatCount renders a row count compactly: 1532 -> "1.5K", 2100000 -> "2.1M".
// Counts below a thousand keep their exact digits.
func FormatCount(count int) string {
	value := float64(count)
	if value >= 1000000000 {
		return fmt.Sprintf("%.1fG", value/1000000000)
	} else if value >= 1000000 {
		return fmt.Sprintf("%.1fM", value/1000000)
	} else if value >= 1000 {
		return fmt.Sprintf("%.1fK", value/1000)
	}
	return fmt.Sprintf("%d", count)
}
