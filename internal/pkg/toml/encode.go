package toml

import (
	"slices"
	"strconv"
	"strings"
)

// EncodeArrayTables renders rows as [[name]] tables. Keys listed in lead come
// first in that order, the rest sorted. Supported values are strings, bools,
// integers and string slices.
func EncodeArrayTables(name string, rows []map[string]any, lead ...string) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[[" + name + "]]\n")

		keys := make([]string, 0, len(row))
		for k := range row {
			if !slices.Contains(lead, k) {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range append(slices.Clone(lead), keys...) {
			v, ok := row[k]
			if !ok {
				continue
			}
			b.WriteString(encodeKey(k) + " = " + encodeValue(v) + "\n")
		}
	}
	return b.String()
}

func encodeKey(k string) string {
	for _, c := range k {
		if !(c == '_' || c == '-' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return strconv.Quote(k)
		}
	}
	return k
}

func encodeValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case []string:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return strconv.Quote("")
	}
}
