package toml

import (
	"strconv"
	"strings"
)

// Parse parses the small TOML subset used by account files: top-level keys,
// [tables] (skipped) and [[array tables]] of flat key/value pairs.
func Parse(input string) (map[string]any, error) {
	result := make(map[string]any)
	var currentArrayName string
	var currentObj map[string]any

	flush := func() {
		if currentObj != nil && currentArrayName != "" {
			arr, _ := result[currentArrayName].([]map[string]any)
			arr = append(arr, currentObj)
			result[currentArrayName] = arr
		}
	}

	lines := strings.Split(input, "\n")
	for n, rawLine := range lines {
		line := stripInlineComment(strings.TrimSpace(rawLine))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[[") && strings.HasSuffix(line, "]]") {
			flush()
			currentArrayName = strings.TrimSpace(line[2 : len(line)-2])
			currentObj = make(map[string]any)
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			currentArrayName = ""
			currentObj = nil
			continue
		}

		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &SyntaxError{Line: n + 1, Text: rawLine}
		}
		key = strings.Trim(strings.TrimSpace(key), `"`)
		value := parseValue(strings.TrimSpace(raw))
		if currentObj != nil {
			currentObj[key] = value
		} else {
			result[key] = value
		}
	}
	flush()

	return result, nil
}

// SyntaxError reports a line that is neither a header nor a key/value pair.
type SyntaxError struct {
	Line int
	Text string
}

func (e *SyntaxError) Error() string {
	return "toml: line " + strconv.Itoa(e.Line) + ": expected key = value: " + strings.TrimSpace(e.Text)
}

func stripInlineComment(line string) string {
	inQuote := false
	escaped := false
	for i, c := range line {
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inQuote:
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case c == '#' && !inQuote:
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}

func parseValue(raw string) any {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2 {
		if s, err := strconv.Unquote(raw); err == nil {
			return s
		}
		return raw[1 : len(raw)-1]
	}
	if strings.HasPrefix(raw, `'`) && strings.HasSuffix(raw, `'`) && len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}
	if raw == "true" {
		return true
	}
	if raw == "false" {
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		return parseArray(raw[1 : len(raw)-1])
	}
	return raw
}

// parseArray splits on commas outside of quoted strings.
func parseArray(content string) []any {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var parts []string
	inQuote, escaped, start := false, false, 0
	for i, c := range content {
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inQuote:
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			parts = append(parts, content[start:i])
			start = i + 1
		}
	}
	parts = append(parts, content[start:])

	result := make([]any, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, parseValue(p))
	}
	return result
}
