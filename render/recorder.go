package render

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/patro/model"
)

// OpKind names a recorded draw call.
type OpKind string

const (
	OpPage  OpKind = "page"
	OpText  OpKind = "text"
	OpImage OpKind = "image"
	OpRect  OpKind = "rect"
	OpLine  OpKind = "line"
)

// Op is one recorded draw call. Page is 1-indexed.
type Op struct {
	Kind OpKind
	Page int
	BBox model.BBox
	Text string
	Font string
	Role string
}

// Recorder is a Surface that keeps a log of draw calls instead of drawing.
// It also implements font.Registrar; set FontErr to make registration fail.
type Recorder struct {
	Ops      []Op
	Metadata model.Metadata
	Fonts    []string
	FontErr  error

	page int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SetMetadata implements MetadataSetter.
func (r *Recorder) SetMetadata(meta model.Metadata) {
	r.Metadata = meta
}

// RegisterFont records the font name, or returns FontErr.
func (r *Recorder) RegisterFont(payload []byte, name string) error {
	if r.FontErr != nil {
		return r.FontErr
	}
	r.Fonts = append(r.Fonts, name)
	return nil
}

// AddPage implements Surface.
func (r *Recorder) AddPage(width, height float64) error {
	r.page++
	r.Ops = append(r.Ops, Op{Kind: OpPage, Page: r.page, BBox: model.NewBBox(0, 0, width, height)})
	return nil
}

func (r *Recorder) record(op Op) error {
	if r.page == 0 {
		return fmt.Errorf("draw %s before first page", op.Kind)
	}
	op.Page = r.page
	r.Ops = append(r.Ops, op)
	return nil
}

// DrawText implements Surface.
func (r *Recorder) DrawText(t *model.Text) error {
	return r.record(Op{Kind: OpText, BBox: t.BBox, Text: t.Text, Font: t.Font, Role: t.Attr(model.AttrRole)})
}

// DrawImage implements Surface.
func (r *Recorder) DrawImage(img *model.Image) error {
	return r.record(Op{Kind: OpImage, BBox: img.BBox, Text: img.AltText, Role: img.Attr(model.AttrRole)})
}

// DrawRect implements Surface.
func (r *Recorder) DrawRect(rect *model.Rect) error {
	return r.record(Op{Kind: OpRect, BBox: rect.BBox, Role: rect.Attr(model.AttrRole)})
}

// DrawLine implements Surface.
func (r *Recorder) DrawLine(l *model.Line) error {
	return r.record(Op{Kind: OpLine, BBox: l.BoundingBox(), Role: l.Attr(model.AttrRole)})
}

// Pages returns the number of pages added.
func (r *Recorder) Pages() int {
	return r.page
}

// Texts returns the text of every text op on page (1-indexed), in order.
func (r *Recorder) Texts(page int) []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText && op.Page == page {
			out = append(out, op.Text)
		}
	}
	return out
}

// Write dumps the log, one op per line.
func (r *Recorder) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, op := range r.Ops {
		b := op.BBox
		fmt.Fprintf(bw, "%d %-5s (%.2f,%.2f %.2fx%.2f)", op.Page, op.Kind, b.X, b.Y, b.Width, b.Height)
		if op.Font != "" {
			fmt.Fprintf(bw, " font=%s", op.Font)
		}
		if op.Role != "" {
			fmt.Fprintf(bw, " role=%s", op.Role)
		}
		if op.Text != "" {
			fmt.Fprintf(bw, " %q", op.Text)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Save writes the log to filename.
func (r *Recorder) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
