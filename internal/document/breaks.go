package document

import "strings"

// NormalizeBreaks translates user and AI supplied line breaks into the
// document's native paragraph-break representation. Everything else in the
// text is treated as literal content; no markup is interpreted.
func NormalizeBreaks(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}
