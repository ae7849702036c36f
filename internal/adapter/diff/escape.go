package diff

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// EscapeBytes renders b as valid UTF-8. Invalid bytes become \xNN and
// backslashes are doubled, so UnescapeString recovers b exactly.
func EscapeBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, `\x%02x`, b[0])
		case r == '\\':
			sb.WriteString(`\\`)
		default:
			sb.Write(b[:size])
		}
		b = b[size:]
	}
	return sb.String()
}

func UnescapeString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		if i+1 >= len(s) {
			return nil, fmt.Errorf("dangling escape at offset %d", i)
		}
		switch s[i+1] {
		case '\\':
			out = append(out, '\\')
			i++
		case 'x':
			if i+3 >= len(s) {
				return nil, fmt.Errorf("short byte escape at offset %d", i)
			}
			v, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad byte escape at offset %d: %w", i, err)
			}
			out = append(out, byte(v))
			i += 3
		default:
			return nil, fmt.Errorf("unknown escape %q at offset %d", s[i:i+2], i)
		}
	}
	return out, nil
}
