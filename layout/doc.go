// Package layout paginates blocks of positioned elements into a
// [model.Document].
//
// Layout runs in two phases. During placement a [Pager] stacks [Block]
// values top to bottom, opening a new page whenever the next block (plus
// the space it asks to keep after itself) does not fit above the footer
// band:
//
//	pager := layout.NewPager(paper.Resolve(paper.A4))
//	pager.SetChrome(monthHeader)
//	pager.Place(themeImage)
//	pager.Place(grid)
//
// Once everything is placed, [Pager.Finish] walks the pages a second time
// with a [Stamper] that knows the final page count; [Footer] stamps
// "Page X of N", the document title, contact details and a QR code.
//
// # Page Breaks
//
// A block that does not fit moves to a new page. Optional blocks are
// skipped instead and reported as [WarningSkipped]. A block taller than a
// whole usable page is split across pages when it has a [SplitFunc]
// (see [Lines]); otherwise it is clipped to one page. Both cases are
// reported as [WarningOverflow].
//
// Placement reads no clock and iterates no maps, so identical input always
// produces identical pages.
//
// # Truncation
//
// [Truncate] and [MoreLabel] implement the "+N more" convention for lists
// that run out of room.
package layout
