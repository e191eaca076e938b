package layout

import (
	"github.com/tsawler/patro/model"
)

// Kind classifies a block for logging and warnings.
type Kind int

const (
	KindText Kind = iota
	KindHeader
	KindImage
	KindGrid
	KindSection
	KindList
	KindSpacer
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindImage:
		return "image"
	case KindGrid:
		return "grid"
	case KindSection:
		return "section"
	case KindList:
		return "list"
	case KindSpacer:
		return "spacer"
	default:
		return "text"
	}
}

// SplitFunc divides a block so that head is at most avail tall. ok is false
// when no non-empty head fits.
type SplitFunc func(avail float64) (head, tail Block, ok bool)

// Block is one placeable unit of content. Element Y coordinates are
// relative to the top of the block; X coordinates are absolute.
type Block struct {
	Name   string
	Kind   Kind
	Height float64

	// KeepWithNext is the space that must remain on the page after this
	// block, so a heading is never left alone at the bottom of a page.
	KeepWithNext float64

	// Optional blocks are dropped, not moved, when they do not fit.
	Optional bool

	Elements []model.Element

	// Split, when set, lets a block taller than a page flow across pages.
	Split SplitFunc
}

// Spacer returns an empty block of the given height.
func Spacer(height float64) Block {
	return Block{Name: "spacer", Kind: KindSpacer, Height: height}
}

// Lines builds a block from equally tall rows. rows[i] holds the elements of
// row i, positioned relative to the row's top. The block can be split
// between rows.
func Lines(name string, kind Kind, rowHeight float64, rows [][]model.Element) Block {
	b := Block{Name: name, Kind: kind, Height: rowHeight * float64(len(rows))}
	for i, row := range rows {
		dy := rowHeight * float64(i)
		for _, e := range row {
			b.Elements = append(b.Elements, e.Shift(dy))
		}
	}
	if len(rows) > 1 {
		b.Split = func(avail float64) (Block, Block, bool) {
			n := int(avail / rowHeight)
			if n <= 0 {
				return Block{}, Block{}, false
			}
			if n >= len(rows) {
				return Lines(name, kind, rowHeight, rows), Block{}, true
			}
			return Lines(name, kind, rowHeight, rows[:n]), Lines(name, kind, rowHeight, rows[n:]), true
		}
	}
	return b
}

// Stack joins blocks vertically into one block, so they are placed (or
// skipped) together.
func Stack(name string, kind Kind, parts ...Block) Block {
	b := Block{Name: name, Kind: kind}
	for _, p := range parts {
		for _, e := range p.Elements {
			b.Elements = append(b.Elements, e.Shift(b.Height))
		}
		b.Height += p.Height
	}
	return b
}
