package content

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/patro/format"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T23:30:00+05:45", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T08:00", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{" 2024-02-29 ", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "%s: got %s", tt.in, got)
	}

	_, err := ParseDate("15/01/2024")
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestEventLabel(t *testing.T) {
	assert.Equal(t, "Dashain", Event{Title: "Dashain"}.Label())
	assert.Equal(t, "Standup (09:30)", Event{Title: "Standup", Time: "09:30"}.Label())
}

func TestEventsOn(t *testing.T) {
	events := []Event{
		{ID: "1", Title: "a", Date: "2024-01-15"},
		{ID: "2", Title: "b", Date: "2024-01-16"},
		{ID: "3", Title: "c", Date: "2024-01-15T10:00:00Z"},
		{ID: "4", Title: "d", Date: "garbage"},
	}
	got := EventsOn(events, time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestLoadEventsJSON(t *testing.T) {
	src := `[{"id":"1","title":"New Year","date":"2024-04-13"},{"id":"2","title":"Standup","date":"2024-04-14","time":"09:00"}]`
	events, err := LoadEvents(strings.NewReader(src), format.JSON)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "09:00", events[1].Time)
}

func TestLoadEventsYAML(t *testing.T) {
	src := `
- id: "1"
  title: Teej
  date: "2024-09-06"
`
	events, err := LoadEvents(strings.NewReader(src), format.YAML)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Teej", events[0].Title)
}

func TestLoadEventsRejectsInvalid(t *testing.T) {
	_, err := LoadEvents(strings.NewReader(`[{"title":"x","date":"soon"}]`), format.JSON)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = LoadEvents(strings.NewReader(`[{"date":"2024-01-01"}]`), format.JSON)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = LoadEvents(strings.NewReader(`x`), format.HTML)
	assert.Error(t, err)
}

func TestLoadICS(t *testing.T) {
	src := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//patro//test//EN",
		"BEGIN:VEVENT",
		"UID:holiday-1",
		"DTSTART;VALUE=DATE:20240413",
		"SUMMARY:New Year",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:meeting-1",
		"DTSTART:20240415T093000Z",
		"SUMMARY:Planning",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	events, err := LoadICS(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "holiday-1", events[0].ID)
	assert.Equal(t, "New Year", events[0].Title)
	assert.Equal(t, "2024-04-13", events[0].Date)
	assert.Empty(t, events[0].Time)

	assert.Equal(t, "Planning", events[1].Title)
	assert.Equal(t, "2024-04-15", events[1].Date)
	assert.Equal(t, "09:30", events[1].Time)
}

func TestLoadThemes(t *testing.T) {
	src := `
- year: 2081
  month: 1
  image_urls: ["https://example.com/a.jpg", "https://example.com/b.jpg"]
  caption: Spring
`
	themes, err := LoadThemes(strings.NewReader(src), format.YAML)
	require.NoError(t, err)
	require.Len(t, themes, 1)

	theme, ok := ThemeFor(themes, 2081, 1)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a.jpg", theme.Primary())
	assert.Equal(t, []string{"https://example.com/b.jpg"}, theme.Secondary())

	_, ok = ThemeFor(themes, 2081, 2)
	assert.False(t, ok)

	_, err = LoadThemes(strings.NewReader(`[{"year":2081,"month":13}]`), format.JSON)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestLoadChapter(t *testing.T) {
	ch, err := LoadChapter(strings.NewReader(`{"title":"One","body":"Hello","published":"2024-01-15"}`), format.JSON)
	require.NoError(t, err)
	d, ok := ch.PublishedDate()
	require.True(t, ok)
	assert.Equal(t, 15, d.Day())

	ch, err = LoadChapter(strings.NewReader("\n\nThe Title\nbody text"), format.Text)
	require.NoError(t, err)
	assert.Equal(t, "The Title", ch.Title)

	page := `<html><head><title>Site | Story</title><meta name="author" content="Sita"></head>
<body><nav>Home</nav><article><h1>Monsoon</h1><p>Rain came early.</p><img src="/r.jpg"></article></body></html>`
	ch, err = LoadChapter(strings.NewReader(page), format.HTML)
	require.NoError(t, err)
	assert.Equal(t, "Monsoon", ch.Title)
	assert.Equal(t, "Sita", ch.Author)
	assert.Equal(t, []string{"/r.jpg"}, ch.ImageURLs)

	_, err = LoadChapter(strings.NewReader(`{"title":"x"}`), format.JSON)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
