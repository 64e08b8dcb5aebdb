package prefs

import "strconv"

// ParseDigits extracts every ASCII digit from text, preserving order, and
// parses the concatenation as a non-negative integer. Users answer numeric
// questions with noise ("大概500元"); only the digit characters matter.
// ok is false when text contains no digits or the result overflows int.
func ParseDigits(text string) (int, bool) {
	var digits []byte
	for i := 0; i < len(text); i++ {
		if c := text[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false
	}
	return n, true
}
