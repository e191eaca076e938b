package content

import "time"

// ThemeImage lists the images shown for one BS month.
type ThemeImage struct {
	Year      int      `json:"year" yaml:"year" validate:"gt=0"`
	Month     int      `json:"month" yaml:"month" validate:"min=1,max=12"`
	ImageURLs []string `json:"imageUrls" yaml:"image_urls" validate:"dive,required"`
	Caption   string   `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// Primary returns the first image URL, or "" when there is none.
func (t ThemeImage) Primary() string {
	if len(t.ImageURLs) == 0 {
		return ""
	}
	return t.ImageURLs[0]
}

// Secondary returns every image URL after the first.
func (t ThemeImage) Secondary() []string {
	if len(t.ImageURLs) < 2 {
		return nil
	}
	return t.ImageURLs[1:]
}

// ThemeFor returns the first theme for a BS year and month.
func ThemeFor(themes []ThemeImage, year, month int) (ThemeImage, bool) {
	for _, t := range themes {
		if t.Year == year && t.Month == month {
			return t, true
		}
	}
	return ThemeImage{}, false
}

// Chapter is a long-form text chapter rendered as its own document.
type Chapter struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title" validate:"required"`
	Author    string   `json:"author,omitempty" yaml:"author,omitempty"`
	Published string   `json:"published,omitempty" yaml:"published,omitempty" validate:"omitempty,isodate"`
	Body      string   `json:"body" yaml:"body" validate:"required"`
	ImageURLs []string `json:"imageUrls,omitempty" yaml:"image_urls,omitempty"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// PublishedDate parses the publication date. ok is false when the chapter
// has none or it does not parse.
func (c Chapter) PublishedDate() (t time.Time, ok bool) {
	if c.Published == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(c.Published)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
