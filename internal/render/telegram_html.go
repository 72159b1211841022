package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
)

const extensions = blackfriday.NoIntraEmphasis |
	blackfriday.FencedCode |
	blackfriday.Autolink |
	blackfriday.Strikethrough |
	blackfriday.Tables |
	blackfriday.SpaceHeadings

// TelegramHTML converts markdown into the HTML subset accepted by the
// Telegram Bot API with parse_mode=HTML.
func TelegramHTML(markdown string) string {
	r := &telegramRenderer{}
	out := blackfriday.Run([]byte(markdown),
		blackfriday.WithRenderer(r),
		blackfriday.WithExtensions(extensions))
	return strings.TrimSpace(string(out))
}

// telegramRenderer implements blackfriday.Renderer. Telegram knows nothing
// about paragraphs, lists or headings, so those become plain lines.
type telegramRenderer struct {
	last byte
}

func (r *telegramRenderer) write(w io.Writer, s string) {
	if s == "" {
		return
	}
	io.WriteString(w, s)
	r.last = s[len(s)-1]
}

func (r *telegramRenderer) newline(w io.Writer) {
	if r.last != '\n' && r.last != 0 {
		r.write(w, "\n")
	}
}

func (r *telegramRenderer) RenderHeader(io.Writer, *blackfriday.Node) {}

func (r *telegramRenderer) RenderFooter(io.Writer, *blackfriday.Node) {}

func (r *telegramRenderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	switch node.Type {
	case blackfriday.Text:
		r.write(w, escapeHTML(string(node.Literal)))

	case blackfriday.Softbreak, blackfriday.Hardbreak:
		r.write(w, "\n")

	case blackfriday.Paragraph:
		if entering {
			break
		}
		switch {
		case node.Parent != nil && node.Parent.Type == blackfriday.Item:
			if node.Next != nil {
				r.write(w, "\n")
			}
		case node.Parent != nil && node.Parent.Type == blackfriday.BlockQuote && node.Next == nil:
		default:
			r.blockEnd(w)
		}

	case blackfriday.Heading:
		if entering {
			r.write(w, "<b>")
		} else {
			r.write(w, "</b>")
			r.blockEnd(w)
		}

	case blackfriday.Strong:
		r.tag(w, "b", entering)
	case blackfriday.Emph:
		r.tag(w, "i", entering)
	case blackfriday.Del:
		r.tag(w, "s", entering)

	case blackfriday.Code:
		r.write(w, "<code>"+escapeHTML(string(node.Literal))+"</code>")

	case blackfriday.CodeBlock:
		code := strings.TrimRight(string(node.Literal), "\n")
		if lang := strings.Fields(string(node.Info)); len(lang) > 0 {
			r.write(w, fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, escapeAttr(lang[0]), escapeHTML(code)))
		} else {
			r.write(w, "<pre>"+escapeHTML(code)+"</pre>")
		}
		r.blockEnd(w)

	case blackfriday.Link, blackfriday.Image:
		if entering {
			r.write(w, `<a href="`+escapeAttr(string(node.Destination))+`">`)
		} else {
			r.write(w, "</a>")
		}

	case blackfriday.List:
		if !entering && listDepth(node) == 0 {
			r.blockEnd(w)
		}

	case blackfriday.Item:
		if entering {
			r.newline(w)
			r.write(w, strings.Repeat("  ", listDepth(node.Parent))+itemMarker(node))
		} else {
			r.newline(w)
		}

	case blackfriday.BlockQuote:
		if entering {
			r.write(w, "<blockquote>")
		} else {
			r.write(w, "</blockquote>")
			r.blockEnd(w)
		}

	case blackfriday.HorizontalRule:
		r.write(w, "———")
		r.blockEnd(w)

	case blackfriday.HTMLBlock, blackfriday.HTMLSpan:
		r.write(w, escapeHTML(string(node.Literal)))

	case blackfriday.TableCell:
		if !entering && node.Next != nil {
			r.write(w, " | ")
		}
	case blackfriday.TableRow:
		if !entering {
			r.write(w, "\n")
		}
	case blackfriday.Table:
		if !entering {
			r.blockEnd(w)
		}
	}

	return blackfriday.GoToNext
}

func (r *telegramRenderer) tag(w io.Writer, name string, entering bool) {
	if entering {
		r.write(w, "<"+name+">")
	} else {
		r.write(w, "</"+name+">")
	}
}

// blockEnd separates top-level blocks by one blank line.
func (r *telegramRenderer) blockEnd(w io.Writer) {
	r.newline(w)
	r.write(w, "\n")
}

// listDepth counts the lists enclosing a list node.
func listDepth(list *blackfriday.Node) int {
	depth := 0
	for p := list.Parent; p != nil; p = p.Parent {
		if p.Type == blackfriday.List {
			depth++
		}
	}
	return depth
}

func itemMarker(item *blackfriday.Node) string {
	flags := item.ListFlags
	if item.Parent != nil {
		flags |= item.Parent.ListFlags
	}
	if flags&blackfriday.ListTypeOrdered == 0 {
		return "• "
	}
	n := 1
	for prev := item.Prev; prev != nil; prev = prev.Prev {
		n++
	}
	return fmt.Sprintf("%d. ", n)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
