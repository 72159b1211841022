package render

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength is the Telegram limit for a single text message.
	MaxMessageLength = 4096

	truncatedMarker = "\n\n... (сообщение сокращено)"
	closingReserve  = 64
)

// Truncate shortens rendered HTML to at most limit runes. A cut never
// splits a tag or entity, and tags left open by the cut are closed.
func Truncate(html string, limit int) string {
	if utf8.RuneCountInString(html) <= limit {
		return html
	}

	keep := limit - utf8.RuneCountInString(truncatedMarker) - closingReserve
	if keep < 0 {
		keep = 0
	}

	cut := string([]rune(html)[:keep])
	if i := strings.LastIndexByte(cut, '<'); i >= 0 && !strings.Contains(cut[i:], ">") {
		cut = cut[:i]
	}
	if i := strings.LastIndexByte(cut, '&'); i >= 0 && !strings.Contains(cut[i:], ";") {
		cut = cut[:i]
	}
	cut = strings.TrimRight(cut, " \n")

	open := openTags(cut)
	var b strings.Builder
	b.WriteString(cut)
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i] + ">")
	}
	b.WriteString(truncatedMarker)
	return b.String()
}

// openTags returns the tags still open at the end of html, outermost first.
func openTags(html string) []string {
	var stack []string
	for {
		start := strings.IndexByte(html, '<')
		if start < 0 {
			return stack
		}
		end := strings.IndexByte(html[start:], '>')
		if end < 0 {
			return stack
		}

		tag := html[start+1 : start+end]
		html = html[start+end+1:]

		if strings.HasPrefix(tag, "/") {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		if name, _, _ := strings.Cut(tag, " "); name != "" {
			stack = append(stack, name)
		}
	}
}
