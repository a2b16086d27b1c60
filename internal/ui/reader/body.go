package reader

import (
	"regexp"
	"strings"

	"github.com/nhle/mailagent/internal/backend"
)

var (
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>`)
	blockTagPattern  = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|tr|h[1-6])>`)
	styleTagPattern  = regexp.MustCompile(`(?is)<(style|script|head)[^>]*>.*?</(style|script|head)>`)
	numberedPrefix   = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	bulletPrefix     = regexp.MustCompile(`^\s*[•*-]\s+`)
	labelPrefix      = regexp.MustCompile(`(?i)^\s*(option|suggestion|reply|response|alternative)\s+\d+\s*:\s*`)
	preamblePattern  = regexp.MustCompile(`(?i)^\s*(here are|i've prepared|below are|these are)\b[^:\n]*suggestions?:?\s*`)
	boldPattern      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern    = regexp.MustCompile(`\*(.+?)\*`)
	underlinePattern = regexp.MustCompile(`__(.+?)__`)
	blankRunPattern  = regexp.MustCompile(`(\n\s*){2,}`)
)

// PlainBody returns the text of a message, reducing HTML to text when no
// plain part exists.
func PlainBody(e backend.EmailDetails) string {
	if e.PlainContent != "" {
		return strings.TrimSpace(e.PlainContent)
	}
	if e.HTMLContent != "" {
		return StripHTML(e.HTMLContent)
	}
	if e.IsHTML {
		return StripHTML(e.Body)
	}
	return strings.TrimSpace(e.Body)
}

// StripHTML removes tags and decodes the common entities.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := styleTagPattern.ReplaceAllString(html, "")
	result = blockTagPattern.ReplaceAllString(result, "\n")
	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}

// CleanSuggestion strips the framing a language model tends to add around
// a reply: wrapping quotes, preambles, numbering and markdown emphasis.
func CleanSuggestion(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}

	s = preamblePattern.ReplaceAllString(s, "")
	s = labelPrefix.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		l = numberedPrefix.ReplaceAllString(l, "")
		lines[i] = bulletPrefix.ReplaceAllString(l, "")
	}
	s = strings.Join(lines, "\n")

	s = boldPattern.ReplaceAllString(s, "$1")
	s = italicPattern.ReplaceAllString(s, "$1")
	s = underlinePattern.ReplaceAllString(s, "$1")
	s = blankRunPattern.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
