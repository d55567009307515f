package credential

import (
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// ParseTraffic converts a size such as "1.5 GB" or "300MB" into kilobytes.
// Decimal unit names are read as binary multiples (1 GB = 1024 MB), the way
// file hosters report quota.
func ParseTraffic(s string) (int64, error) {
	b, err := humanize.ParseBytes(binaryUnits(s))
	if err != nil {
		return 0, err
	}
	return int64(b / 1024), nil
}

// FormatTraffic renders a KB amount for humans; negative means unlimited.
func FormatTraffic(kb int64) string {
	if kb < 0 {
		return "unlimited"
	}
	return humanize.IBytes(uint64(kb) * 1024)
}

// binaryUnits rewrites "KB"/"MB"/... suffixes to "KiB"/"MiB"/... .
func binaryUnits(s string) string {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if len(upper) < 2 || !strings.HasSuffix(upper, "B") || strings.HasSuffix(upper, "IB") {
		return s
	}
	prefix := rune(upper[len(upper)-2])
	if !strings.ContainsRune("KMGTPE", prefix) {
		return s
	}
	if len(upper) > 2 && unicode.IsLetter(rune(upper[len(upper)-3])) {
		return s
	}
	return s[:len(s)-1] + "iB"
}
