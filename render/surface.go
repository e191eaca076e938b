package render

import (
	"fmt"
	"io"

	"github.com/tsawler/patro/model"
)

// Surface is an append-only paged canvas. Draw calls apply to the page most
// recently opened with AddPage.
type Surface interface {
	AddPage(width, height float64) error
	DrawText(t *model.Text) error
	DrawImage(img *model.Image) error
	DrawRect(r *model.Rect) error
	DrawLine(l *model.Line) error
	Save(filename string) error
	Write(w io.Writer) error
}

// MetadataSetter is implemented by surfaces that can carry document
// metadata such as a title and author.
type MetadataSetter interface {
	SetMetadata(meta model.Metadata)
}

// Render draws every page of doc onto s in page order. It stops at the
// first surface error.
func Render(doc *model.Document, s Surface) error {
	if doc == nil {
		return fmt.Errorf("render: nil document")
	}
	if ms, ok := s.(MetadataSetter); ok {
		ms.SetMetadata(doc.Metadata)
	}

	for _, page := range doc.Pages {
		if err := s.AddPage(page.Width, page.Height); err != nil {
			return fmt.Errorf("page %d: %w", page.Number, err)
		}
		for i, elem := range page.Elements {
			if err := drawElement(s, elem); err != nil {
				return fmt.Errorf("page %d element %d (%s): %w", page.Number, i, elem.Type(), err)
			}
		}
	}
	return nil
}

func drawElement(s Surface, elem model.Element) error {
	switch e := elem.(type) {
	case *model.Text:
		return s.DrawText(e)
	case *model.Image:
		return s.DrawImage(e)
	case *model.Rect:
		return s.DrawRect(e)
	case *model.Line:
		return s.DrawLine(e)
	default:
		return nil
	}
}
