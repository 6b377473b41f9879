// Package duformat renders the raw values the tree model carries (byte
// sizes, timestamps, mode bits) into the human-readable strings a viewer
// prints, without holding any state of its own.
package duformat

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Size formats a byte count the way a human expects to read it, e.g.
// "1.2 GB" or "512 B", using SI decimal units (powers of 1000).
func Size(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.Bytes(uint64(-bytes))
	}
	return humanize.Bytes(uint64(bytes))
}

// ByteSize formats a byte count as a space-separated group of digits, e.g.
// "12 345 678 Bytes". A space is used as a thousands separator rather than
// a locale-dependent one, since "12.345" is ambiguous between English and
// German conventions.
func ByteSize(bytes int64) string {
	negative := bytes < 0
	if negative {
		bytes = -bytes
	}

	digits := fmt.Sprintf("%d", bytes)
	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ' ')
		}
		grouped = append(grouped, d)
	}

	result := string(grouped) + " Bytes"
	if negative {
		result = "-" + result
	}
	return result
}

// Percent formats a fraction (0.0-1.0 or beyond) as a percentage string with
// one digit of precision, e.g. "42.3%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}
