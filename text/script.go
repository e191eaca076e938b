package text

import (
	"unicode"
)

// Direction represents the writing direction of a text run.
type Direction int

const (
	// LTR (Left-to-Right) for Latin, Devanagari, Cyrillic, etc.
	LTR Direction = iota
	// RTL (Right-to-Left) for Arabic, Hebrew, etc.
	RTL
	// Neutral for numbers, punctuation, etc.
	Neutral
)

// String returns a string representation of the direction ("LTR", "RTL", or "Neutral").
func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	case Neutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// Script identifies the writing system of a run for font fallback decisions.
type Script int

const (
	ScriptCommon Script = iota // digits, punctuation, spaces
	ScriptLatin
	ScriptDevanagari
	ScriptArabic
	ScriptHebrew
	ScriptCyrillic
	ScriptGreek
	ScriptThai
	ScriptCJK
	ScriptOther
)

func (s Script) String() string {
	switch s {
	case ScriptCommon:
		return "Common"
	case ScriptLatin:
		return "Latin"
	case ScriptDevanagari:
		return "Devanagari"
	case ScriptArabic:
		return "Arabic"
	case ScriptHebrew:
		return "Hebrew"
	case ScriptCyrillic:
		return "Cyrillic"
	case ScriptGreek:
		return "Greek"
	case ScriptThai:
		return "Thai"
	case ScriptCJK:
		return "CJK"
	default:
		return "Other"
	}
}

// IsASCII reports whether every code point of s is in 0x00..0x7F.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// NeedsFallback reports whether a run contains a code point the base
// (Latin-only) font cannot be trusted to render.
func NeedsFallback(s string) bool {
	return !IsASCII(s)
}

// CharScript returns the script of a single rune.
func CharScript(r rune) Script {
	switch {
	case unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r):
		return ScriptCommon
	case isLatin(r):
		return ScriptLatin
	case isDevanagari(r):
		return ScriptDevanagari
	case isArabic(r):
		return ScriptArabic
	case isHebrew(r):
		return ScriptHebrew
	case isCyrillic(r):
		return ScriptCyrillic
	case isGreek(r):
		return ScriptGreek
	case isThai(r):
		return ScriptThai
	case isCJK(r):
		return ScriptCJK
	default:
		return ScriptOther
	}
}

// DetectDirection analyzes a string and returns its dominant text direction
// based on Unicode character properties. It counts strong directional characters
// and returns the direction with the higher count, or Neutral if no strong
// directional characters are present.
func DetectDirection(text string) Direction {
	ltrCount := 0
	rtlCount := 0

	for _, r := range text {
		switch GetCharDirection(r) {
		case LTR:
			ltrCount++
		case RTL:
			rtlCount++
		}
	}

	if ltrCount == 0 && rtlCount == 0 {
		return Neutral
	}
	if rtlCount > ltrCount {
		return RTL
	}
	return LTR
}

// GetCharDirection returns the inherent direction of a single Unicode character.
// Digits, punctuation, whitespace, and symbols are Neutral; Arabic and Hebrew
// return RTL; all other scripts return LTR.
func GetCharDirection(r rune) Direction {
	switch CharScript(r) {
	case ScriptCommon:
		return Neutral
	case ScriptArabic, ScriptHebrew:
		return RTL
	default:
		return LTR
	}
}

// isDevanagari reports whether r is in a Devanagari Unicode block.
// This includes:
//   - Devanagari: U+0900–U+097F
//   - Devanagari Extended: U+A8E0–U+A8FF
//   - Vedic Extensions: U+1CD0–U+1CFF
func isDevanagari(r rune) bool {
	return (r >= 0x0900 && r <= 0x097F) ||
		(r >= 0xA8E0 && r <= 0xA8FF) ||
		(r >= 0x1CD0 && r <= 0x1CFF)
}

// isArabic reports whether r is in an Arabic Unicode block.
// This includes:
//   - Arabic: U+0600–U+06FF
//   - Arabic Supplement: U+0750–U+077F
//   - Arabic Extended-A: U+08A0–U+08FF
//   - Arabic Presentation Forms-A: U+FB50–U+FDFF
//   - Arabic Presentation Forms-B: U+FE70–U+FEFF
func isArabic(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) ||
		(r >= 0x0750 && r <= 0x077F) ||
		(r >= 0x08A0 && r <= 0x08FF) ||
		(r >= 0xFB50 && r <= 0xFDFF) ||
		(r >= 0xFE70 && r <= 0xFEFF)
}

// isHebrew reports whether r is in a Hebrew Unicode block.
func isHebrew(r rune) bool {
	return (r >= 0x0590 && r <= 0x05FF) ||
		(r >= 0xFB1D && r <= 0xFB4F)
}

// isLatin reports whether r is in a Latin Unicode block
// (Basic Latin through Latin Extended-B, U+0000–U+024F).
func isLatin(r rune) bool {
	return r >= 0x0000 && r <= 0x024F
}

// isCyrillic reports whether r is in a Cyrillic Unicode block.
func isCyrillic(r rune) bool {
	return r >= 0x0400 && r <= 0x052F
}

// isGreek reports whether r is in a Greek Unicode block.
func isGreek(r rune) bool {
	return (r >= 0x0370 && r <= 0x03FF) ||
		(r >= 0x1F00 && r <= 0x1FFF)
}

// isThai reports whether r is in the Thai Unicode block (U+0E00–U+0E7F).
func isThai(r rune) bool {
	return r >= 0x0E00 && r <= 0x0E7F
}

// isCJK reports whether r is in a CJK (Chinese, Japanese, Korean) Unicode block.
// This includes:
//   - CJK Unified Ideographs: U+4E00–U+9FFF
//   - CJK Extension A: U+3400–U+4DBF
//   - Hiragana: U+3040–U+309F
//   - Katakana: U+30A0–U+30FF
//   - Hangul: U+AC00–U+D7AF
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x3040 && r <= 0x309F) ||
		(r >= 0x30A0 && r <= 0x30FF) ||
		(r >= 0xAC00 && r <= 0xD7AF)
}
