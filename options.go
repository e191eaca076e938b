package patro

import (
	"go.uber.org/zap"

	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/text"
)

// options holds the settings shared by the calendar and chapter builders.
type options struct {
	paper paper.Size
	title string

	fetcher    assets.Fetcher
	maxImagePx int

	fontPayload []byte

	contactText string
	contactURL  string

	measurer text.Measurer
	logger   *zap.Logger
}

// defaultOptions returns A4 output with the default image fetcher and no
// fallback font.
func defaultOptions() options {
	return options{
		paper:      paper.A4,
		maxImagePx: assets.DefaultMaxPixels,
	}
}

// clone copies the options. The font payload is shared; it is never
// modified.
func (o options) clone() options {
	return o
}

func (o options) fetcherOrDefault() assets.Fetcher {
	if o.fetcher != nil {
		return o.fetcher
	}
	return assets.NewMultiFetcher(assets.DefaultHTTPConfig(), "")
}

func (o options) loggerOrNop() *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	return zap.NewNop()
}
