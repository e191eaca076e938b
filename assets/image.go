package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/patro/format"
	"github.com/tsawler/patro/model"
)

// DefaultMaxPixels bounds the longer side of embedded images.
const DefaultMaxPixels = 2000

// Image is an encoded image ready to embed: PNG or JPEG data plus its
// pixel size.
type Image struct {
	Data   []byte
	Format model.ImageFormat
	Width  int
	Height int
}

// Element returns the image fitted into box with its aspect ratio kept.
func (img Image) Element(box model.BBox, alt string) *model.Image {
	return &model.Image{
		Data:        img.Data,
		Format:      img.Format,
		PixelWidth:  img.Width,
		PixelHeight: img.Height,
		BBox:        box.Fit(float64(img.Width), float64(img.Height)),
		AltText:     alt,
	}
}

// Decode prepares raw image data for embedding. JPEGs within maxPx are
// passed through untouched; everything else is decoded, scaled so its
// longer side is at most maxPx, and re-encoded as PNG. maxPx <= 0 means
// DefaultMaxPixels.
func Decode(data []byte, maxPx int) (Image, error) {
	if maxPx <= 0 {
		maxPx = DefaultMaxPixels
	}
	f := format.DetectFromMagic(data)
	if !f.IsImage() {
		return Image{}, fmt.Errorf("%w: detected %s", ErrUnsupportedImage, f)
	}

	if f == format.JPEG {
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		if cfg.Width <= maxPx && cfg.Height <= maxPx && cfg.Width > 0 && cfg.Height > 0 {
			return Image{Data: data, Format: model.ImageFormatJPEG, Width: cfg.Width, Height: cfg.Height}, nil
		}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, f, err)
	}
	if b := src.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return Image{}, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	dst := downscale(src, maxPx)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}
	b := dst.Bounds()
	return Image{Data: buf.Bytes(), Format: model.ImageFormatPNG, Width: b.Dx(), Height: b.Dy()}, nil
}

// downscale returns src scaled so neither side exceeds maxPx.
func downscale(src image.Image, maxPx int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxPx && h <= maxPx {
		return src
	}
	if w >= h {
		h = max(1, h*maxPx/w)
		w = maxPx
	} else {
		w = max(1, w*maxPx/h)
		h = maxPx
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// Loader fetches and decodes images.
type Loader struct {
	fetcher Fetcher
	maxPx   int
	logger  *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(fetcher Fetcher, maxPx int, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, maxPx: maxPx, logger: logger}
}

// Load fetches ref and decodes it.
func (l *Loader) Load(ctx context.Context, ref string) (Image, error) {
	if l.fetcher == nil {
		return Image{}, fmt.Errorf("%w: no fetcher configured", ErrFetch)
	}
	data, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		l.logger.Warn("image fetch failed", zap.String("ref", ref), zap.Error(err))
		return Image{}, err
	}
	img, err := Decode(data, l.maxPx)
	if err != nil {
		l.logger.Warn("image decode failed", zap.String("ref", ref), zap.Error(err))
		return Image{}, err
	}
	return img, nil
}
