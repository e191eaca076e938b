// Package htmldoc turns chapter HTML into a flat list of sections ready for
// reflow: headings, paragraphs, list items, quotes and images, in document
// order. Page chrome such as navigation bars, sidebars and site footers is
// left out.
//
//	doc, err := htmldoc.Parse(strings.NewReader(body))
//	for _, s := range doc.Sections {
//	    ...
//	}
package htmldoc

import "strconv"

// SectionKind identifies what a section is.
type SectionKind int

const (
	SectionParagraph SectionKind = iota
	SectionHeading
	SectionListItem
	SectionQuote
	SectionImage
)

func (k SectionKind) String() string {
	switch k {
	case SectionHeading:
		return "heading"
	case SectionListItem:
		return "list-item"
	case SectionQuote:
		return "quote"
	case SectionImage:
		return "image"
	default:
		return "paragraph"
	}
}

// Section is one block of chapter content.
type Section struct {
	Kind SectionKind
	Text string

	// Level is the heading level (1-6) or the list nesting depth (0-based).
	Level int
	// Ordered marks items of numbered lists; Number is their 1-based index.
	Ordered bool
	Number  int

	// Src is the image URL of image sections.
	Src string
}

// Prefix returns the marker printed before a list item: "• " or "3. ".
// Other sections have no prefix.
func (s Section) Prefix() string {
	if s.Kind != SectionListItem {
		return ""
	}
	if s.Ordered {
		return strconv.Itoa(s.Number) + ". "
	}
	return "• "
}

// ExclusionMode controls how much page chrome is dropped.
type ExclusionMode int

const (
	// ExclusionNone keeps everything.
	ExclusionNone ExclusionMode = iota
	// ExclusionExplicit drops <nav>, <aside>, navigation ARIA roles, and
	// <header>/<footer> at the top level of the body.
	ExclusionExplicit
	// ExclusionStandard also drops elements whose class or id names a
	// navigation, header, footer or sidebar region.
	ExclusionStandard
)
