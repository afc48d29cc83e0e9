package pricing

import "fmt"

// FormatGBP renders a pence amount as a pound string, e.g. 12345 -> "£123.45".
func FormatGBP(amount Money) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s£%d.%02d", sign, amount/100, amount%100)
}
