package mode

import "strings"

// Mode is the ranking strategy chosen for a query.
type Mode string

// Ranking mode constants.
const (
	// Text scores candidates by similarity to the query text.
	Text Mode = "text"
	// Filter keeps catalog order and relies on categorical filters only.
	Filter Mode = "filter"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Text || m == Filter
}

// ForText picks Text for non-blank input and Filter otherwise.
func ForText(text string) Mode {
	if strings.TrimSpace(text) == "" {
		return Filter
	}
	return Text
}
