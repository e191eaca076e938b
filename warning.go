package patro

import (
	"fmt"
	"strings"

	"github.com/tsawler/patro/layout"
)

// WarningKind classifies a non-fatal generation problem.
type WarningKind int

const (
	// WarningConversionImprecision marks dates that came from an inexact or
	// clamped BS conversion.
	WarningConversionImprecision WarningKind = iota
	// WarningAssetUnavailable marks an image replaced by a placeholder.
	WarningAssetUnavailable
	// WarningFontUnavailable marks a fallback font that could not be
	// registered; non-Latin runs use the base font.
	WarningFontUnavailable
	// WarningLayoutOverflow marks a block taller than a page that was split
	// or clipped.
	WarningLayoutOverflow
	// WarningSectionSkipped marks an optional section that did not fit.
	WarningSectionSkipped
	// WarningEventUnparsed marks an event whose date could not be parsed.
	WarningEventUnparsed
	// WarningEventUnplaced marks an event whose AD day no exact grid cell
	// shows.
	WarningEventUnplaced
)

func (k WarningKind) String() string {
	switch k {
	case WarningConversionImprecision:
		return "conversion imprecision"
	case WarningAssetUnavailable:
		return "asset unavailable"
	case WarningFontUnavailable:
		return "font unavailable"
	case WarningLayoutOverflow:
		return "layout overflow"
	case WarningSectionSkipped:
		return "section skipped"
	case WarningEventUnparsed:
		return "event unparsed"
	case WarningEventUnplaced:
		return "event unplaced"
	default:
		return "unknown"
	}
}

// Warning is a problem that degraded the output without stopping it.
type Warning struct {
	Kind    WarningKind
	Message string
	// Page is the 1-indexed page the warning relates to, or 0 when it
	// concerns the whole document.
	Page int
	// Err is the underlying error, if any.
	Err error
}

// String formats the warning on one line.
func (w Warning) String() string {
	var b strings.Builder
	if w.Page > 0 {
		fmt.Fprintf(&b, "page %d: ", w.Page)
	}
	b.WriteString(w.Kind.String())
	if w.Message != "" {
		b.WriteString(": ")
		b.WriteString(w.Message)
	}
	return b.String()
}

// FormatWarnings joins warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// HasWarning reports whether warnings contains one of kind.
func HasWarning(warnings []Warning, kind WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func fromLayout(w layout.Warning) Warning {
	kind := WarningLayoutOverflow
	if w.Kind == layout.WarningSkipped {
		kind = WarningSectionSkipped
	}
	return Warning{Kind: kind, Message: w.Message, Page: w.Page, Err: w.Err}
}
