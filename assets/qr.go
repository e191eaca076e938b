package assets

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"

	"github.com/tsawler/patro/model"
)

// QR encodes content as a square PNG QR code of about px pixels. The code
// is never smaller than its module grid requires.
func QR(content string, px int) (Image, error) {
	if content == "" {
		return Image{}, fmt.Errorf("qr: empty content")
	}
	if px <= 0 {
		px = 256
	}
	data, err := qrcode.Encode(content, qrcode.Medium, px)
	if err != nil {
		return Image{}, fmt.Errorf("qr: %w", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("qr: %w", err)
	}
	return Image{Data: data, Format: model.ImageFormatPNG, Width: cfg.Width, Height: cfg.Height}, nil
}
