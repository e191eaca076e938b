// Package patro generates printable documents around a simulated Bikram
// Sambat (BS) calendar: year calendars with one month per page, and single
// chapter booklets.
//
// Basic usage:
//
//	warnings, err := patro.Calendar(2081).Save(ctx, "2081.pdf")
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", patro.FormatWarnings(warnings))
//	}
//
// With options:
//
//	warnings, err := patro.Calendar(2081).
//	    Paper(paper.A3).
//	    Events(events...).
//	    Themes(themes...).
//	    FallbackFont(devanagariTTF).
//	    Contact("Kathmandu Press", "https://example.com").
//	    Write(ctx, w)
//
// Generation degrades rather than fails: images that cannot be fetched
// become placeholders of the same size, a fallback font that cannot be
// embedded leaves non-Latin text in the base font, and approximate date
// conversions are marked. Each of these is reported as a [Warning]. Only
// invalid input and output errors are returned as errors.
//
// The date conversion, grid and layout packages (bsdate, monthgrid, layout)
// can also be used on their own.
package patro

import "github.com/tsawler/patro/model"

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustDocument wraps a call to Document and panics if the error is non-nil.
// Warnings are discarded.
//
// Example:
//
//	doc := patro.MustDocument(patro.Calendar(2081).Document(ctx))
func MustDocument(doc *model.Document, _ []Warning, err error) *model.Document {
	if err != nil {
		panic(err)
	}
	return doc
}
