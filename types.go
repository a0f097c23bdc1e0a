package stylist

import "github.com/kailas-cloud/stylist/internal/domain/outfit"

// Outfit is one catalog row. Empty fields are allowed.
type Outfit struct {
	Category   string
	StyleNotes string
	Season     string
	Occasion   string
	Color      string
	ImageURL   string
}

// Hit is a ranked outfit.
type Hit struct {
	Position   int // index in the catalog
	Outfit     Outfit
	Score      float64
	PreviewURL string // ImageURL when it is an absolute http(s) URL, else empty
}

// Facets lists the distinct filter values present in the catalog.
type Facets struct {
	Seasons   []string
	Occasions []string
	Colors    []string
}

func outfitToRow(o Outfit) map[outfit.Column]string {
	return map[outfit.Column]string{
		outfit.Category:   o.Category,
		outfit.StyleNotes: o.StyleNotes,
		outfit.Season:     o.Season,
		outfit.Occasion:   o.Occasion,
		outfit.Color:      o.Color,
		outfit.ImageURL:   o.ImageURL,
	}
}

func outfitFromRecord(r outfit.Record) Outfit {
	return Outfit{
		Category:   r.Category(),
		StyleNotes: r.StyleNotes(),
		Season:     r.Season(),
		Occasion:   r.Occasion(),
		Color:      r.Color(),
		ImageURL:   r.ImageURL(),
	}
}
