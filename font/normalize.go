package font

import "golang.org/x/text/unicode/norm"

// NormalizeUnicode returns s in Unicode Normalization Form C.
func NormalizeUnicode(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
