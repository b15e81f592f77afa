package extract

import (
	"regexp"
	"strings"
)

var (
	// horizontalWS collapses runs of spaces and tabs without eating newlines,
	// which still carry paragraph structure at this point.
	horizontalWS = regexp.MustCompile(`[ \t\r\f\v]+`)

	// trailingBoilerplate matches sharing prompts and similar chrome that
	// survives extraction at the end of a line or section.
	trailingBoilerplate = []*regexp.Regexp{
		regexp.MustCompile(`(?im)share this article.*$`),
		regexp.MustCompile(`(?im)related articles.*$`),
		regexp.MustCompile(`(?im)leave a comment.*$`),
		regexp.MustCompile(`(?im)advertisement.*$`),
	}

	// bracketedFragment drops bracketed text, which is almost always
	// metadata such as [photo] or [subscribe].
	bracketedFragment = regexp.MustCompile(`\[[^\]]*\]`)
)

// CleanText normalizes whitespace, restores paragraph spacing, and strips
// known trailing boilerplate from extracted text. The result is trimmed and
// may be empty.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = horizontalWS.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	result := strings.Join(kept, "\n\n")

	for _, re := range trailingBoilerplate {
		result = re.ReplaceAllString(result, "")
	}
	result = bracketedFragment.ReplaceAllString(result, "")

	return strings.TrimSpace(result)
}
