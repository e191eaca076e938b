package htmldoc

import (
	"regexp"

	"golang.org/x/net/html"
)

// chromePattern matches class and id values of navigation and other page
// chrome.
var chromePattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|breadcrumbs?|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget|share|social|comments?)([^a-z]|$)`)

// chromeFilter decides which elements are page chrome.
type chromeFilter struct {
	mode    ExclusionMode
	body    *html.Node
	wrapper *html.Node // single top-level <div>/<main>, if any
}

func newChromeFilter(mode ExclusionMode, root *html.Node) *chromeFilter {
	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	return &chromeFilter{mode: mode, body: body, wrapper: singleWrapper(body)}
}

// singleWrapper returns the only structural child of body, handling the
// common <body><div id="page">...</div></body> shape.
func singleWrapper(body *html.Node) *html.Node {
	var found *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "script", "style", "noscript", "template":
			continue
		case "div", "main":
			if found != nil {
				return nil
			}
			found = c
		default:
			return nil
		}
	}
	return found
}

func (f *chromeFilter) exclude(n *html.Node) bool {
	if n.Type != html.ElementNode || f.mode == ExclusionNone {
		return false
	}

	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		if n.Parent == f.body || (f.wrapper != nil && n.Parent == f.wrapper) {
			return true
		}
	}
	switch getAttr(n, "role") {
	case "navigation", "complementary", "banner", "contentinfo":
		return true
	}

	if f.mode >= ExclusionStandard {
		if class := getAttr(n, "class"); class != "" && chromePattern.MatchString(class) {
			return true
		}
		if id := getAttr(n, "id"); id != "" && chromePattern.MatchString(id) {
			return true
		}
	}
	return false
}

// getAttr returns the value of an attribute on a node, or empty string if not found.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
