package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a laid-out document: metadata plus fully positioned pages.
type Document struct {
	Metadata Metadata
	Pages    []*Page
}

// Metadata contains document-level information
type Metadata struct {
	ID           uuid.UUID
	Title        string
	Author       string
	Subject      string
	Keywords     string // comma-separated
	Creator      string
	Producer     string
	CreationDate time.Time
}

// NewDocument creates a new empty document with a fresh ID.
func NewDocument() *Document {
	return &Document{
		Metadata: Metadata{ID: uuid.New()},
		Pages:    make([]*Page, 0),
	}
}

// AddPage adds a page to the document and numbers it.
func (d *Document) AddPage(page *Page) {
	page.Number = len(d.Pages) + 1
	d.Pages = append(d.Pages, page)
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// ExtractText returns all text content, pages separated by a blank line.
func (d *Document) ExtractText() string {
	var sb strings.Builder
	for i, page := range d.Pages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(page.ExtractText())
	}
	return sb.String()
}
