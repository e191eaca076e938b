package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/patro/format"
	"github.com/tsawler/patro/htmldoc"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks a record against its struct tags.
func Validate(record any) error {
	if err := validate.Struct(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// LoadEvents reads events in the given format (JSON, YAML or ICS).
func LoadEvents(r io.Reader, f format.Format) ([]Event, error) {
	var events []Event
	switch f {
	case format.ICS:
		return LoadICS(r)
	case format.JSON, format.YAML:
		if err := decode(r, f, &events); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported event format: %s", f)
	}

	for i := range events {
		if err := Validate(events[i]); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return events, nil
}

// LoadThemes reads theme image records (JSON or YAML).
func LoadThemes(r io.Reader, f format.Format) ([]ThemeImage, error) {
	var themes []ThemeImage
	if err := decode(r, f, &themes); err != nil {
		return nil, err
	}
	for i := range themes {
		if err := Validate(themes[i]); err != nil {
			return nil, fmt.Errorf("theme %d: %w", i, err)
		}
	}
	return themes, nil
}

// LoadChapter reads a single chapter (JSON or YAML). An HTML source keeps its
// markup as the body and takes its title from the first heading, then the
// <title> element. Plain text is titled after its first non-empty line.
func LoadChapter(r io.Reader, f format.Format) (Chapter, error) {
	var ch Chapter
	switch f {
	case format.JSON, format.YAML:
		if err := decode(r, f, &ch); err != nil {
			return Chapter{}, err
		}
	case format.HTML:
		data, err := io.ReadAll(r)
		if err != nil {
			return Chapter{}, fmt.Errorf("reading chapter: %w", err)
		}
		doc, err := htmldoc.Parse(bytes.NewReader(data))
		if err != nil {
			return Chapter{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		ch.Body = string(data)
		ch.Title = firstNonEmpty(doc.FirstHeading(), doc.Title, firstLine(doc.Text()))
		ch.Author = doc.Meta["author"]
		ch.Published = firstNonEmpty(doc.Meta["article:published_time"], doc.Meta["date"])
		if ch.Published != "" {
			if _, err := ParseDate(ch.Published); err != nil {
				ch.Published = ""
			}
		}
		ch.ImageURLs = doc.Images()
		if og := doc.Meta["og:image"]; og != "" && len(ch.ImageURLs) == 0 {
			ch.ImageURLs = []string{og}
		}
	case format.Text:
		data, err := io.ReadAll(r)
		if err != nil {
			return Chapter{}, fmt.Errorf("reading chapter: %w", err)
		}
		ch.Body = string(data)
		ch.Title = firstLine(ch.Body)
	default:
		return Chapter{}, fmt.Errorf("unsupported chapter format: %s", f)
	}

	if err := Validate(ch); err != nil {
		return Chapter{}, err
	}
	return ch, nil
}

func decode(r io.Reader, f format.Format, v any) error {
	switch f {
	case format.JSON:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("%w: decoding JSON: %v", ErrInvalidRecord, err)
		}
	case format.YAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: decoding YAML: %v", ErrInvalidRecord, err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// LoadICS reads VEVENT entries from an iCalendar feed. All-day events keep
// their date; timed events also carry a "15:04" start time.
func LoadICS(r io.Reader) ([]Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing calendar: %v", ErrInvalidRecord, err)
	}

	var events []Event
	for _, ev := range cal.Events() {
		start, allDay, err := eventStart(ev)
		if err != nil {
			return nil, fmt.Errorf("%w: event %q: %v", ErrInvalidRecord, ev.Id(), err)
		}

		e := Event{
			ID:   ev.Id(),
			Date: start.Format("2006-01-02"),
		}
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			e.Title = p.Value
		}
		if !allDay {
			e.Time = start.Format("15:04")
		}
		if err := Validate(e); err != nil {
			return nil, fmt.Errorf("event %q: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func eventStart(ev *ics.VEvent) (time.Time, bool, error) {
	if p := ev.GetProperty(ics.ComponentPropertyDtStart); p != nil && len(p.Value) == len("20060102") {
		t, err := ev.GetAllDayStartAt()
		return t, true, err
	}
	t, err := ev.GetStartAt()
	return t, false, err
}
