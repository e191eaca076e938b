package htmldoc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is parsed chapter HTML.
type Document struct {
	// Title is the <title> of the page, if any.
	Title string
	// Meta holds <meta name|property=... content=...> pairs.
	Meta     map[string]string
	Sections []Section
}

// Options configures parsing.
type Options struct {
	Exclusion ExclusionMode
}

// DefaultOptions drops page chrome using class and id heuristics.
func DefaultOptions() Options {
	return Options{Exclusion: ExclusionStandard}
}

// Parse parses HTML with the default options. Fragments without
// <html>/<body> are accepted.
func Parse(r io.Reader) (*Document, error) {
	return ParseWithOptions(r, DefaultOptions())
}

// ParseWithOptions parses HTML with custom options.
func ParseWithOptions(r io.Reader, opts Options) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	p := &parser{
		doc:    &Document{Meta: make(map[string]string)},
		filter: newChromeFilter(opts.Exclusion, root),
	}
	p.head(root)
	p.walk(p.filter.body, 0)
	return p.doc, nil
}

// FirstHeading returns the text of the first heading, or "".
func (d *Document) FirstHeading() string {
	for _, s := range d.Sections {
		if s.Kind == SectionHeading {
			return s.Text
		}
	}
	return ""
}

// Images returns the image URLs in document order.
func (d *Document) Images() []string {
	var out []string
	for _, s := range d.Sections {
		if s.Kind == SectionImage && s.Src != "" {
			out = append(out, s.Src)
		}
	}
	return out
}

// Text returns the text sections as plain text, one paragraph per block
// separated by blank lines. Image sections are omitted.
func (d *Document) Text() string {
	var parts []string
	for _, s := range d.Sections {
		if s.Kind == SectionImage {
			continue
		}
		parts = append(parts, strings.Repeat("  ", indentOf(s))+s.Prefix()+s.Text)
	}
	return strings.Join(parts, "\n\n")
}

func indentOf(s Section) int {
	if s.Kind == SectionListItem {
		return s.Level
	}
	return 0
}

type parser struct {
	doc    *Document
	filter *chromeFilter
}

func (p *parser) add(s Section) {
	if s.Kind != SectionImage && s.Text == "" {
		return
	}
	p.doc.Sections = append(p.doc.Sections, s)
}

// head extracts title and meta tags from the head element.
func (p *parser) head(root *html.Node) {
	head := findElement(root, "head")
	if head == nil {
		return
	}
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			p.doc.Title = collapse(textContent(c))
		case "meta":
			name := getAttr(c, "name")
			if name == "" {
				name = getAttr(c, "property")
			}
			if content := getAttr(c, "content"); name != "" && content != "" {
				p.doc.Meta[name] = content
			}
		}
	}
}

// walk processes n's children.
func (p *parser) walk(n *html.Node, listLevel int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.node(c, listLevel)
	}
}

func (p *parser) node(n *html.Node, listLevel int) {
	switch n.Type {
	case html.TextNode:
		// Loose text directly inside a container.
		p.add(Section{Kind: SectionParagraph, Text: collapse(strings.ReplaceAll(n.Data, "\n", " "))})
		return
	case html.ElementNode:
	default:
		p.walk(n, listLevel)
		return
	}

	if skipElement(n.Data) || p.filter.exclude(n) {
		return
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		p.add(Section{Kind: SectionHeading, Text: collapse(textContent(n)), Level: int(n.Data[1] - '0')})

	case "p", "figcaption", "dt", "dd":
		p.add(Section{Kind: SectionParagraph, Text: collapse(textContent(n))})
		p.images(n)

	case "div", "section", "article", "main", "header", "footer", "figure":
		if !hasBlockChildren(n) {
			p.add(Section{Kind: SectionParagraph, Text: collapse(textContent(n))})
			p.images(n)
			return
		}
		p.walk(n, listLevel)

	case "ul", "ol":
		p.list(n, listLevel)

	case "blockquote":
		p.add(Section{Kind: SectionQuote, Text: collapse(textContent(n))})

	case "pre":
		p.add(Section{Kind: SectionParagraph, Text: strings.Trim(preformatted(n), "\n")})

	case "img":
		p.add(Section{Kind: SectionImage, Src: getAttr(n, "src"), Text: getAttr(n, "alt")})

	case "table":
		p.table(n)

	case "br", "hr":
		// separators carry no text

	default:
		p.walk(n, listLevel)
	}
}

func (p *parser) list(n *html.Node, level int) {
	ordered := n.Data == "ol"
	number := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		number++
		p.add(Section{
			Kind:    SectionListItem,
			Text:    collapse(directText(li)),
			Level:   level,
			Ordered: ordered,
			Number:  number,
		})
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				p.list(c, level+1)
			}
		}
	}
}

// table emits one paragraph per row with cells separated by " | ".
func (p *parser) table(n *html.Node) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data != "tr" {
				visit(c)
				continue
			}
			var cells []string
			for td := c.FirstChild; td != nil; td = td.NextSibling {
				if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
					cells = append(cells, collapse(textContent(td)))
				}
			}
			p.add(Section{Kind: SectionParagraph, Text: strings.Join(cells, " | ")})
		}
	}
	visit(n)
}

// images emits the images nested inside an element already consumed as text.
func (p *parser) images(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == "img" {
			p.add(Section{Kind: SectionImage, Src: getAttr(c, "src"), Text: getAttr(c, "alt")})
			continue
		}
		p.images(c)
	}
}

// skipElement returns true if the element never carries chapter content.
func skipElement(tagName string) bool {
	switch tagName {
	case "head", "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "form", "button":
		return true
	}
	return false
}

// hasBlockChildren reports whether n contains block-level children.
func hasBlockChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "div", "p", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6",
				"blockquote", "pre", "article", "section", "figure", "header", "footer", "nav", "aside":
				return true
			}
		}
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// textContent extracts all text of n. Source line breaks become spaces and
// <br> becomes a newline.
func textContent(n *html.Node) string {
	return extractText(n, false)
}

// preformatted is textContent with source line breaks kept.
func preformatted(n *html.Node) string {
	return extractText(n, true)
}

func extractText(n *html.Node, keepNewlines bool) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if keepNewlines {
				sb.WriteString(n.Data)
			} else {
				sb.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
			}
			return
		case html.ElementNode:
			if skipElement(n.Data) {
				return
			}
			if n.Data == "br" {
				sb.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// directText gets the text of a list item without its nested lists.
func directText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		if c.Type == html.TextNode {
			sb.WriteString(strings.ReplaceAll(c.Data, "\n", " "))
		} else {
			sb.WriteString(textContent(c))
		}
		sb.WriteString(" ")
	}
	return sb.String()
}

// collapse trims s and folds runs of whitespace within each line to single
// spaces. Line breaks from <br> survive.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if f := strings.Fields(l); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return strings.Join(out, "\n")
}
