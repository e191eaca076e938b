package font

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"

	"github.com/tsawler/patro/text"
)

// ErrFontUnavailable is returned when the fallback font cannot be registered.
var ErrFontUnavailable = errors.New("font: fallback font unavailable")

// ID names a font known to the output surface.
type ID string

const (
	// Base is the regular text font.
	Base ID = text.Helvetica
	// BaseBold is the heading font.
	BaseBold ID = text.HelveticaBold
	// Fallback is the name the fallback font is registered under.
	Fallback ID = "PatroFallback"
)

// String returns the font name.
func (id ID) String() string { return string(id) }

// Registrar embeds a font payload under a name. Output surfaces and
// measurers implement it.
type Registrar interface {
	RegisterFont(payload []byte, name string) error
}

// Registrars fans one registration out to several registrars, stopping at
// the first error.
type Registrars []Registrar

// RegisterFont implements Registrar.
func (rs Registrars) RegisterFont(payload []byte, name string) error {
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := r.RegisterFont(payload, name); err != nil {
			return err
		}
	}
	return nil
}

// Selector picks the base or fallback font for each run. It belongs to a
// single generation and is not safe for concurrent use.
type Selector struct {
	base     ID
	bold     ID
	fallback ID

	attempted  bool
	registered bool

	logger *zap.Logger
}

// NewSelector returns a selector that uses the base fonts until a fallback
// is registered. A nil logger disables logging.
func NewSelector(logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		base:     Base,
		bold:     BaseBold,
		fallback: Fallback,
		logger:   logger,
	}
}

// Register validates payload and embeds it with reg as the fallback font.
// Only the first call does anything; later calls return the first outcome.
func (s *Selector) Register(reg Registrar, payload []byte) error {
	if s.attempted {
		if s.registered {
			return nil
		}
		return ErrFontUnavailable
	}
	s.attempted = true

	if err := validatePayload(payload); err != nil {
		s.logger.Warn("fallback font rejected, using base font", zap.Error(err))
		return err
	}
	if reg == nil {
		return fmt.Errorf("%w: no registrar", ErrFontUnavailable)
	}
	if err := reg.RegisterFont(payload, string(s.fallback)); err != nil {
		s.logger.Warn("fallback font registration failed, using base font", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}

	s.registered = true
	s.logger.Debug("fallback font registered", zap.Int("bytes", len(payload)))
	return nil
}

// Registered reports whether the fallback font is available.
func (s *Selector) Registered() bool {
	return s.registered
}

// Select returns the font for a regular-weight run: the fallback when the
// run leaves ASCII and a fallback is registered, the base font otherwise.
func (s *Selector) Select(run string) ID {
	if s.registered && text.NeedsFallback(run) {
		return s.fallback
	}
	return s.base
}

// SelectBold is Select for headings. The fallback font has no bold face, so
// non-ASCII headings use the regular fallback.
func (s *Selector) SelectBold(run string) ID {
	if s.registered && text.NeedsFallback(run) {
		return s.fallback
	}
	return s.bold
}

// sfnt version tags accepted as font payloads.
var sfntMagic = [][]byte{
	{0x00, 0x01, 0x00, 0x00},
	[]byte("OTTO"),
	[]byte("true"),
	[]byte("ttcf"),
}

// IsPlaceholder reports whether payload is empty or is not a font file at
// all (a stand-in value left where font data should be).
func IsPlaceholder(payload []byte) bool {
	if len(bytes.TrimSpace(payload)) == 0 || len(payload) < 12 {
		return true
	}
	for _, m := range sfntMagic {
		if bytes.HasPrefix(payload, m) {
			return false
		}
	}
	return true
}

func validatePayload(payload []byte) error {
	if IsPlaceholder(payload) {
		return fmt.Errorf("%w: placeholder payload", ErrFontUnavailable)
	}
	if bytes.HasPrefix(payload, []byte("ttcf")) {
		if _, err := opentype.ParseCollection(payload); err != nil {
			return fmt.Errorf("%w: %v", ErrFontUnavailable, err)
		}
		return nil
	}
	if _, err := opentype.Parse(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrFontUnavailable, err)
	}
	return nil
}
