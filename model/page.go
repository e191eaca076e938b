package model

import "strings"

// Page represents a single page of a generated document.
type Page struct {
	Number   int       // 1-indexed page number
	Width    float64   // Page width in mm
	Height   float64   // Page height in mm
	Elements []Element // Elements in drawing order
}

// NewPage creates a new page with given dimensions
func NewPage(width, height float64) *Page {
	return &Page{
		Width:    width,
		Height:   height,
		Elements: make([]Element, 0),
	}
}

// AddElement adds an element to the page
func (p *Page) AddElement(elem Element) {
	p.Elements = append(p.Elements, elem)
}

// Texts returns the text elements of the page in drawing order.
func (p *Page) Texts() []*Text {
	var out []*Text
	for _, elem := range p.Elements {
		if t, ok := elem.(*Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// ExtractText concatenates all text elements, one per line.
func (p *Page) ExtractText() string {
	var sb strings.Builder
	for _, t := range p.Texts() {
		sb.WriteString(t.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ElementsWithAttr returns the elements whose attribute key equals value.
func (p *Page) ElementsWithAttr(key, value string) []Element {
	var out []Element
	for _, elem := range p.Elements {
		if elem.Attr(key) == value {
			out = append(out, elem)
		}
	}
	return out
}
