package format

import "strings"

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"`", "\\`",
)

// EscapeMarkdown escapes Telegram Markdown (v1) special characters so
// user-supplied names render literally inside formatted messages.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
