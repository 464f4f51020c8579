package shopping

import (
	"fmt"
	"strings"
)

// FormatMarkdown renders items as a Markdown bullet list for chat output.
func FormatMarkdown(items []Item) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(items) == 0 {
		sb.WriteString("_Nothing planned yet_\n")
		return sb.String()
	}
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", item.Name, item.Amount))
	}
	return sb.String()
}
