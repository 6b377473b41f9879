package cache

import (
	"strconv"
	"strings"
)

// Byte-count multipliers for the single-letter suffixes a cache file's size
// field may carry.
const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
	tib = 1024 * gib
)

// FormatSize renders size as the shortest exact suffixed form: T, then G,
// then M, then K, falling back to a plain decimal when size isn't evenly
// divisible by any of them. Writing the largest exact unit keeps cache files
// for large trees compact without losing precision.
func FormatSize(size int64) string {
	switch {
	case size >= tib && size%tib == 0:
		return strconv.FormatInt(size/tib, 10) + "T"
	case size >= gib && size%gib == 0:
		return strconv.FormatInt(size/gib, 10) + "G"
	case size >= mib && size%mib == 0:
		return strconv.FormatInt(size/mib, 10) + "M"
	case size >= kib && size%kib == 0:
		return strconv.FormatInt(size/kib, 10) + "K"
	default:
		return strconv.FormatInt(size, 10)
	}
}

// ParseSize reverses FormatSize: a trailing K/M/G/T (case-insensitive)
// multiplies the preceding decimal integer; its absence leaves it as a
// plain byte count.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	suffix := s[len(s)-1]
	digits := s
	switch suffix {
	case 'K', 'k':
		multiplier, digits = kib, s[:len(s)-1]
	case 'M', 'm':
		multiplier, digits = mib, s[:len(s)-1]
	case 'G', 'g':
		multiplier, digits = gib, s[:len(s)-1]
	case 'T', 't':
		multiplier, digits = tib, s[:len(s)-1]
	}

	digits = strings.TrimSpace(digits)
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, err
	}
	return n * multiplier, nil
}
