package model

// ElementType identifies the kind of a page element.
type ElementType int

const (
	ElementTypeUnknown ElementType = iota
	ElementTypeText
	ElementTypeImage
	ElementTypeRect
	ElementTypeLine
)

// String returns a human-readable name for the element type.
func (et ElementType) String() string {
	switch et {
	case ElementTypeText:
		return "text"
	case ElementTypeImage:
		return "image"
	case ElementTypeRect:
		return "rect"
	case ElementTypeLine:
		return "line"
	default:
		return "unknown"
	}
}

// Element is a drawable item on a page.
type Element interface {
	Type() ElementType
	BoundingBox() BBox
	// Shift returns a copy of the element moved down by dy.
	Shift(dy float64) Element
	Attr(key string) string
}

// Attrs carries string annotations on an element, such as the role of a
// rectangle ("data-role": "grid-cell") or a Saturday marker. Renderers
// ignore them; tests and tooling use them to find elements.
type Attrs map[string]string

// Get returns the value for key, or "" when unset. Get on a nil map is safe.
func (a Attrs) Get(key string) string {
	return a[key]
}

func (a Attrs) clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Common attribute keys.
const (
	AttrRole     = "data-role"
	AttrSaturday = "data-saturday"
	AttrToday    = "data-today"
	AttrSelected = "data-selected"
	AttrApprox   = "data-approximate"
	AttrBSDay    = "data-bs-day"
	AttrSource   = "data-source"
	// AttrDirection is "rtl" on text detected as right-to-left.
	AttrDirection = "data-direction"
	// AttrPlaceholder marks a rectangle standing in for an image that could
	// not be loaded.
	AttrPlaceholder = "data-placeholder"
)

// Color represents an RGB color
type Color struct {
	R, G, B uint8
}

// TextAlignment represents horizontal text alignment within a box.
type TextAlignment int

const (
	AlignLeft TextAlignment = iota
	AlignCenter
	AlignRight
)

// TextStyle represents text styling
type TextStyle struct {
	Bold  bool
	Color Color
	Align TextAlignment
}

// Text is a single line of text. BBox.Height is the line height; the
// baseline sits inside it.
type Text struct {
	Text   string
	BBox   BBox
	Font   string
	SizePt float64
	Style  TextStyle
	Attrs  Attrs
}

func (t *Text) Type() ElementType      { return ElementTypeText }
func (t *Text) BoundingBox() BBox      { return t.BBox }
func (t *Text) Attr(key string) string { return t.Attrs.Get(key) }

// Shift implements Element.
func (t *Text) Shift(dy float64) Element {
	c := *t
	c.BBox.Y += dy
	c.Attrs = t.Attrs.clone()
	return &c
}

// ImageFormat represents image format
type ImageFormat int

const (
	ImageFormatUnknown ImageFormat = iota
	ImageFormatPNG
	ImageFormatJPEG
)

// String returns the format name as understood by PDF writers.
func (f ImageFormat) String() string {
	switch f {
	case ImageFormatPNG:
		return "PNG"
	case ImageFormatJPEG:
		return "JPG"
	default:
		return ""
	}
}

// Image is a raster image scaled into BBox. Data holds the encoded image.
type Image struct {
	Data        []byte
	Format      ImageFormat
	PixelWidth  int
	PixelHeight int
	BBox        BBox
	AltText     string
	Attrs       Attrs
}

func (i *Image) Type() ElementType      { return ElementTypeImage }
func (i *Image) BoundingBox() BBox      { return i.BBox }
func (i *Image) Attr(key string) string { return i.Attrs.Get(key) }

// Shift implements Element. Image data is shared, not copied.
func (i *Image) Shift(dy float64) Element {
	c := *i
	c.BBox.Y += dy
	c.Attrs = i.Attrs.clone()
	return &c
}

// Rect is a rectangle, filled and/or stroked.
type Rect struct {
	BBox      BBox
	Fill      *Color
	Stroke    *Color
	LineWidth float64
	Attrs     Attrs
}

func (r *Rect) Type() ElementType      { return ElementTypeRect }
func (r *Rect) BoundingBox() BBox      { return r.BBox }
func (r *Rect) Attr(key string) string { return r.Attrs.Get(key) }

// Shift implements Element.
func (r *Rect) Shift(dy float64) Element {
	c := *r
	c.BBox.Y += dy
	c.Attrs = r.Attrs.clone()
	return &c
}

// Line represents a straight line segment.
type Line struct {
	Start Point
	End   Point
	Width float64
	Color Color
	Attrs Attrs
}

func (l *Line) Type() ElementType      { return ElementTypeLine }
func (l *Line) BoundingBox() BBox      { return NewBBoxFromPoints(l.Start, l.End) }
func (l *Line) Attr(key string) string { return l.Attrs.Get(key) }

// Shift implements Element.
func (l *Line) Shift(dy float64) Element {
	c := *l
	c.Start.Y += dy
	c.End.Y += dy
	c.Attrs = l.Attrs.clone()
	return &c
}
