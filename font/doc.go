// Package font chooses the font a text run is drawn with.
//
// Documents are set in the standard Helvetica family, which only covers
// ASCII reliably. A fallback font with wider coverage (Devanagari for month
// names and festival titles, for example) may be registered once per
// generation:
//
//	sel := font.NewSelector(logger)
//	if err := sel.Register(surface, payload); err != nil {
//	    // generation continues with the base font only
//	}
//	id := sel.Select("बैशाख") // font.Fallback when registration succeeded
//
// # Registration
//
// [Selector.Register] is attempted at most once. Empty or placeholder
// payloads, payloads that do not parse as OpenType or TrueType, and
// registrar errors all return [ErrFontUnavailable] and pin the selector to
// the base font for the rest of the generation.
//
// # Normalization
//
// Runs are normalized to Unicode NFC with [NormalizeUnicode] before
// selection and drawing, so decomposed input (a base letter followed by a
// combining mark) renders with precomposed glyphs where the font has them.
package font
