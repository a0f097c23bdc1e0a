package outfit

import (
	"net/url"
	"strings"
)

// Column is a catalog column name.
type Column string

// Known catalog columns.
const (
	Category   Column = "category"
	StyleNotes Column = "style_notes"
	Season     Column = "season"
	Occasion   Column = "occasion"
	Color      Column = "color"
	ImageURL   Column = "image_url"
)

// Columns lists the known columns in canonical order.
var Columns = []Column{Category, StyleNotes, Season, Occasion, Color, ImageURL}

// ParseColumn maps a header name to a known column (case- and space-insensitive).
func ParseColumn(name string) (Column, bool) {
	c := Column(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Columns {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Record is one outfit row. Missing values read as empty strings.
type Record struct {
	position int
	values   map[Column]string
}

// NewRecord creates a record at the given catalog position. values is copied.
func NewRecord(position int, values map[Column]string) Record {
	v := make(map[Column]string, len(values))
	for k, val := range values {
		v[k] = strings.TrimSpace(val)
	}
	return Record{position: position, values: v}
}

// Position returns the record's index in its catalog (tie-break key).
func (r Record) Position() int { return r.position }

// Get returns the value of col, or "" when absent.
func (r Record) Get(col Column) string { return r.values[col] }

// Category returns the garment/style label.
func (r Record) Category() string { return r.values[Category] }

// StyleNotes returns the free-text description.
func (r Record) StyleNotes() string { return r.values[StyleNotes] }

// Season returns the season value.
func (r Record) Season() string { return r.values[Season] }

// Occasion returns the occasion value.
func (r Record) Occasion() string { return r.values[Occasion] }

// Color returns the color value.
func (r Record) Color() string { return r.values[Color] }

// ImageURL returns the raw image URL, possibly empty or malformed.
func (r Record) ImageURL() string { return r.values[ImageURL] }

// PreviewURL returns the image URL when it is an absolute http(s) URL.
func (r Record) PreviewURL() (string, bool) {
	raw := r.values[ImageURL]
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return raw, true
}

// Text returns the style notes alone, or, when rich is set, every descriptive
// field joined with spaces (category, season, occasion, color, style notes).
func (r Record) Text(rich bool) string {
	if !rich {
		return r.values[StyleNotes]
	}
	parts := make([]string, 0, 5)
	for _, c := range []Column{Category, Season, Occasion, Color, StyleNotes} {
		if v := r.values[c]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
