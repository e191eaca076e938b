// Package content defines the read-only records supplied by the content
// repository: calendar events, monthly theme images and long-form chapters.
//
// Records are loaded from JSON, YAML or iCalendar sources and validated on the
// way in:
//
//	f, _ := os.Open("events.ics")
//	events, err := content.LoadEvents(f, format.ICS)
//
// Nothing in this module mutates a record after it has been loaded.
package content
