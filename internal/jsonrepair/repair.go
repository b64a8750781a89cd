// Package jsonrepair coerces raw LLM output into parseable JSON. It only
// removes wrapper noise (code fences, stray backticks) and never invents
// structure.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"devisflow/internal/domain"
)

var fenceRe = regexp.MustCompile("(?i)```(?:json)?")

// Repair returns the first candidate that is valid JSON: the raw string,
// the string without Markdown code fences, the string without any
// backticks. If none parses, raw is returned unchanged.
func Repair(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if json.Valid([]byte(raw)) {
		return raw
	}

	unfenced := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
	if json.Valid([]byte(unfenced)) {
		return unfenced
	}

	noTicks := strings.TrimSpace(strings.ReplaceAll(raw, "`", ""))
	if json.Valid([]byte(noTicks)) {
		return noTicks
	}

	return raw
}

// ParseObject repairs raw, decodes it as a JSON object and decodes unicode
// escapes left in its string leaves. It returns domain.ErrUnparseableResponse
// when the repaired text is not a JSON object.
func ParseObject(raw string) (map[string]any, error) {
	cleaned := Repair(raw)
	if cleaned == "" {
		return nil, domain.ErrUnparseableResponse
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil || obj == nil {
		return nil, domain.ErrUnparseableResponse
	}
	return DecodeUnicodeEscapes(obj).(map[string]any), nil
}

// DecodeUnicodeEscapes walks v (slices, string-keyed maps, primitives) and
// replaces literal \uXXXX sequences in strings with the characters they
// encode. Strings with malformed sequences are returned unchanged.
func DecodeUnicodeEscapes(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DecodeUnicodeEscapes(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DecodeUnicodeEscapes(val)
		}
		return out
	case string:
		return decodeString(t)
	default:
		return v
	}
}

func decodeString(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) || s[i+1] != 'u' {
			b.WriteByte(s[i])
			i++
			continue
		}
		r, ok := hexRune(s, i+2)
		if !ok {
			return s
		}
		i += 6
		if utf16.IsSurrogate(r) {
			if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
				return s
			}
			low, ok := hexRune(s, i+2)
			if !ok {
				return s
			}
			r = utf16.DecodeRune(r, low)
			if r == utf8.RuneError {
				return s
			}
			i += 6
		}
		b.WriteRune(r)
	}
	return b.String()
}

func hexRune(s string, at int) (rune, bool) {
	if at+4 > len(s) {
		return 0, false
	}
	n, err := strconv.ParseUint(s[at:at+4], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
