// Package render replays laid-out documents onto an output surface.
//
// Layout decides what goes where; a [Surface] only knows how to draw it.
// [Render] walks the pages of a [model.Document] strictly in order, opening
// each page before drawing its elements, so a surface never has to revisit
// an earlier page:
//
//	pdf := render.NewPDF(profile)
//	if err := render.Render(doc, pdf); err != nil {
//	    return err
//	}
//	err := pdf.Save("calendar.pdf")
//
// Two surfaces are provided. [PDF] writes a PDF file through fpdf and also
// serves as the text measurer and font registrar for the same document, so
// wrapping decisions use the exact widths the file will contain. [Recorder]
// keeps a flat log of draw calls and is used in tests and for debugging
// layouts without producing a file.
//
// # Coordinates
//
// All positions are millimetres from the top-left corner of the page, the
// same convention the model package uses.
package render
