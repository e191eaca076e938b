// Package model provides the intermediate representation of a generated
// document.
//
// Layout produces a [Document] of fully positioned pages and renderers
// replay it onto an output surface. Keeping the two apart means a layout
// can be inspected, tested and stamped (page numbers need the final page
// count) before anything is drawn.
//
// # Document Structure
//
//	doc := model.NewDocument()
//	doc.Metadata.Title = "Calendar 2081"
//	doc.AddPage(model.NewPage(210, 297))
//
// # Elements
//
// Every page element implements [Element]. The concrete types are:
//
//   - [Text] - a single line of text in a named font
//   - [Image] - an encoded raster image scaled into its box
//   - [Rect] - a filled and/or stroked rectangle
//   - [Line] - a line segment
//
// Elements carry [Attrs], free-form string annotations used to mark roles
// such as grid cells or Saturdays.
//
// # Coordinates
//
// All geometry is in millimetres with the origin at the top-left corner of
// the page and Y growing downwards. [BBox.Fit] computes aspect-preserving
// placements for images.
package model
