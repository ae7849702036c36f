package domain

// DiffOptions are the whitespace/case handling flags of a test command
type DiffOptions struct {
	IgnoreCase              bool
	IgnoreBlankLines        bool
	IgnoreWhitespace        bool
	IgnoreWhitespaceChanges bool
}

// DiffResult is a line diff of expected against actual output. Every line is
// prefixed with "+ " (actual only), "- " (expected only) or "  " (both).
// Bytes that are not valid UTF-8 are escaped reversibly.
type DiffResult struct {
	DiffContent []string `json:"diff_content"`
}

// DiffPass reports whether the diff found no differences
func (d DiffResult) DiffPass() bool {
	for _, line := range d.DiffContent {
		if len(line) > 0 && line[0] != ' ' {
			return false
		}
	}
	return true
}
