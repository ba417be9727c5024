package common

import "unicode/utf8"

// Truncate caps s at n bytes without splitting a UTF-8 sequence and appends suffix when
// anything was cut.
func Truncate(s string, n int, suffix string) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + suffix
}
