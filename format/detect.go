// Package format provides file format detection for patro inputs: data feeds
// (JSON, YAML, iCalendar, HTML, plain text) and images.
package format

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// JSON indicates a JSON data file.
	JSON
	// YAML indicates a YAML data file.
	YAML
	// ICS indicates an iCalendar (.ics) feed.
	ICS
	// HTML indicates an HTML document.
	HTML
	// Text indicates plain text.
	Text
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// GIF indicates a GIF image.
	GIF
	// WebP indicates a WebP image.
	WebP
	// BMP indicates a BMP image.
	BMP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case JSON:
		return "JSON"
	case YAML:
		return "YAML"
	case ICS:
		return "ICS"
	case HTML:
		return "HTML"
	case Text:
		return "Text"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case WebP:
		return "WebP"
	case BMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case YAML:
		return ".yaml"
	case ICS:
		return ".ics"
	case HTML:
		return ".html"
	case Text:
		return ".txt"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case WebP:
		return ".webp"
	case BMP:
		return ".bmp"
	default:
		return ""
	}
}

// IsImage reports whether the format is a raster image.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, GIF, WebP, BMP:
		return true
	default:
		return false
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	case ".ics", ".ical":
		return ICS
	case ".html", ".htm":
		return HTML
	case ".txt", ".md":
		return Text
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".gif":
		return GIF
	case ".webp":
		return WebP
	case ".bmp":
		return BMP
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine format.
// This provides more reliable detection than extension-based detection.
// Returns Unknown if the format cannot be determined from magic bytes alone.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WebP
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14:
		return BMP
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return Unknown
	}

	if bytes.HasPrefix(trimmed, []byte("BEGIN:VCALENDAR")) {
		return ICS
	}
	if detectHTMLMagic(trimmed) {
		return HTML
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return JSON
	}

	return Unknown
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	head := data[:min(len(data), 512)]
	upper := strings.ToUpper(string(head))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// Fragments such as chapter bodies usually open with a block element.
	for _, tag := range []string{"<P>", "<P ", "<DIV", "<H1", "<H2", "<H3", "<SECTION", "<ARTICLE", "<UL", "<OL"} {
		if strings.HasPrefix(upper, tag) {
			return true
		}
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML") {
		return true
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DetectFromReader reads up to 512 bytes from r and detects the format from
// them. The bytes read are returned so callers can replay them.
func DetectFromReader(r io.Reader) (Format, []byte, error) {
	magic := make([]byte, 512)
	n, err := io.ReadFull(r, magic)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, nil, err
	}
	magic = magic[:n]
	return DetectFromMagic(magic), magic, nil
}

// Resolve combines extension and content detection. Content wins for images
// and iCalendar feeds; otherwise the extension is trusted when known.
func Resolve(filename string, data []byte) Format {
	byMagic := DetectFromMagic(data)
	if byMagic.IsImage() || byMagic == ICS {
		return byMagic
	}
	if byExt := Detect(filename); byExt != Unknown {
		return byExt
	}
	return byMagic
}
