// Package text measures, wraps and classifies text runs for layout.
//
// # Measurement
//
// A [Measurer] reports the width of a run set in a named font, in
// millimetres, and wraps runs to a maximum width. [FaceMeasurer] works
// without an output surface: standard font names (see [StandardMetrics]) use
// built-in AFM width tables and fonts added with RegisterFont use their
// OpenType advances:
//
//	m := text.NewFaceMeasurer()
//	w := m.MeasureWidth("Baisakh 2081", text.HelveticaBold, 18)
//	lines := m.WrapToWidth(body, text.Helvetica, 9, 120)
//
// Output surfaces that can measure for themselves (the PDF surface in
// package render) implement the same interface, so layout always measures
// with the metrics the document will be drawn with.
//
// # Scripts and Direction
//
// [CharScript] classifies runes by writing system.
// [NeedsFallback] reports whether a run leaves the ASCII range and therefore
// needs a font with wider coverage than the standard fonts.
//
// The [Direction] type and [DetectDirection] classify runs as left-to-right,
// right-to-left or neutral. Right-to-left labels are drawn right-aligned.
package text
