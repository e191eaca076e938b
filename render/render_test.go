package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/text"
)

var a5 = paper.Resolve(paper.A5)

func sampleDoc(t *testing.T) *model.Document {
	t.Helper()
	qr, err := assets.QR("https://example.com", 64)
	require.NoError(t, err)

	doc := model.NewDocument()
	doc.Metadata.Title = "Sample"
	for i := 0; i < 2; i++ {
		page := model.NewPage(a5.WidthMm, a5.HeightMm)
		page.AddElement(&model.Text{
			Text:   "Baisakh 2081",
			BBox:   model.NewBBox(8, 8, 132, 6),
			Font:   text.HelveticaBold,
			SizePt: 14,
			Style:  model.TextStyle{Align: model.AlignCenter},
			Attrs:  model.Attrs{model.AttrRole: "header"},
		})
		grey := model.Color{R: 220, G: 220, B: 220}
		page.AddElement(&model.Rect{BBox: model.NewBBox(8, 20, 17, 17), Fill: &grey, Stroke: &model.Color{}})
		page.AddElement(&model.Line{Start: model.Point{X: 8, Y: 190}, End: model.Point{X: 140, Y: 190}})
		page.AddElement(qr.Element(model.NewBBox(130, 192, 10, 10), "contact"))
		doc.AddPage(page)
	}
	return doc
}

func TestRenderReplaysInOrder(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, Render(sampleDoc(t), rec))

	assert.Equal(t, 2, rec.Pages())
	assert.Equal(t, "Sample", rec.Metadata.Title)

	var kinds []OpKind
	for _, op := range rec.Ops {
		kinds = append(kinds, op.Kind)
	}
	page := []OpKind{OpPage, OpText, OpRect, OpLine, OpImage}
	assert.Equal(t, append(append([]OpKind{}, page...), page...), kinds)
	assert.Equal(t, []string{"Baisakh 2081"}, rec.Texts(2))
	assert.Equal(t, "header", rec.Ops[1].Role)
}

func TestRenderNilDocument(t *testing.T) {
	assert.Error(t, Render(nil, NewRecorder()))
}

func TestRecorderRejectsDrawBeforePage(t *testing.T) {
	rec := NewRecorder()
	assert.Error(t, rec.DrawText(&model.Text{Text: "x"}))
}

func TestRecorderDump(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, Render(sampleDoc(t), rec))

	var buf bytes.Buffer
	require.NoError(t, rec.Write(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(rec.Ops))
	assert.Contains(t, lines[1], `"Baisakh 2081"`)
	assert.Contains(t, lines[1], "role=header")
}

func TestPDFWrite(t *testing.T) {
	pdf := NewPDF(a5)
	require.NoError(t, Render(sampleDoc(t), pdf))
	assert.Equal(t, 2, pdf.PageCount())

	var buf bytes.Buffer
	require.NoError(t, pdf.Write(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFSave(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.pdf")
	pdf := NewPDF(a5)
	require.NoError(t, Render(sampleDoc(t), pdf))
	require.NoError(t, pdf.Save(name))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFMeasureMatchesStandardMetrics(t *testing.T) {
	pdf := NewPDF(a5)
	m, ok := text.StandardMetrics(text.Helvetica)
	require.True(t, ok)

	for _, s := range []string{"Hello", "Magh 2080", "+3 more"} {
		assert.InDelta(t, m.Measure(s, 12), pdf.MeasureWidth(s, text.Helvetica, 12), 0.01, s)
	}
	assert.Greater(t, pdf.MeasureWidth("Hello", text.HelveticaBold, 12), pdf.MeasureWidth("Hello", text.Helvetica, 12))
}

func TestPDFWrapToWidth(t *testing.T) {
	pdf := NewPDF(a5)
	body := strings.Repeat("The festival falls in the month of Kartik. ", 6)

	lines := pdf.WrapToWidth(body, text.Helvetica, 9, 50)
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.LessOrEqual(t, pdf.MeasureWidth(l, text.Helvetica, 9), 50.5, l)
	}
}

func TestPDFRegisterFont(t *testing.T) {
	pdf := NewPDF(a5)
	for name, payload := range map[string][]byte{
		"Broken":    []byte("definitely not a font"),
		"Empty":     nil,
		"CFF":       append([]byte("OTTO"), goregular.TTF[4:]...),
		"Truncated": goregular.TTF[:64],
	} {
		assert.Error(t, pdf.RegisterFont(payload, name), name)
		assert.False(t, pdf.utf8[name], name)
	}
	assert.False(t, pdf.pdf.Err())

	require.NoError(t, pdf.RegisterFont(goregular.TTF, "GoRegular"))
	w := pdf.MeasureWidth("Ωμέγα", "GoRegular", 12)
	assert.Greater(t, w, 0.0)

	require.NoError(t, pdf.AddPage(a5.WidthMm, a5.HeightMm))
	require.NoError(t, pdf.DrawText(&model.Text{Text: "Ωμέγα", BBox: model.NewBBox(10, 10, 50, 6), Font: "GoRegular", SizePt: 12}))

	var buf bytes.Buffer
	require.NoError(t, pdf.Write(&buf))
}

func TestPDFRejectsEmptyImage(t *testing.T) {
	pdf := NewPDF(a5)
	require.NoError(t, pdf.AddPage(a5.WidthMm, a5.HeightMm))
	assert.Error(t, pdf.DrawImage(&model.Image{Format: model.ImageFormatPNG, BBox: model.NewBBox(0, 0, 10, 10)}))
}
