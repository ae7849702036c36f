package diff

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
)

var _ secondary.Differ = (*LineDiffer)(nil)

// LineDiffer compares output line by line. Lines are matched on a
// normalized form but reported as captured.
type LineDiffer struct{}

func NewLineDiffer() *LineDiffer {
	return &LineDiffer{}
}

type line struct {
	key  string
	text string
}

func (d *LineDiffer) Diff(expected, actual []byte, opts domain.DiffOptions) (domain.DiffResult, error) {
	a := splitLines(expected, opts)
	b := splitLines(actual, opts)

	matcher := difflib.NewMatcherWithJunk(keys(a), keys(b), false, nil)

	content := make([]string, 0, len(a)+len(b))
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, l := range a[op.I1:op.I2] {
				content = append(content, "  "+l.text)
			}
		case 'd':
			for _, l := range a[op.I1:op.I2] {
				content = append(content, "- "+l.text)
			}
		case 'i':
			for _, l := range b[op.J1:op.J2] {
				content = append(content, "+ "+l.text)
			}
		case 'r':
			for _, l := range a[op.I1:op.I2] {
				content = append(content, "- "+l.text)
			}
			for _, l := range b[op.J1:op.J2] {
				content = append(content, "+ "+l.text)
			}
		}
	}
	return domain.DiffResult{DiffContent: content}, nil
}

// splitLines keeps line endings in the comparison key so a missing final
// newline is still a difference.
func splitLines(data []byte, opts domain.DiffOptions) []line {
	if len(data) == 0 {
		return nil
	}
	raw := bytes.SplitAfter(data, []byte("\n"))
	if len(raw[len(raw)-1]) == 0 {
		raw = raw[:len(raw)-1]
	}

	lines := make([]line, 0, len(raw))
	for _, r := range raw {
		text := EscapeBytes(r)
		if opts.IgnoreBlankLines && strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, line{
			key:  normalize(text, opts),
			text: strings.TrimSuffix(text, "\n"),
		})
	}
	return lines
}

func normalize(s string, opts domain.DiffOptions) string {
	if opts.IgnoreCase {
		s = strings.ToLower(s)
	}
	switch {
	case opts.IgnoreWhitespace:
		s = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	case opts.IgnoreWhitespaceChanges:
		s = strings.Join(strings.Fields(s), " ")
	}
	return s
}

func keys(lines []line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.key
	}
	return out
}
