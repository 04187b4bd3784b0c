// Package search resolves a query into playable tracks. It normalizes the
// heterogeneous records returned by catalog collaborators, caches non-empty
// results in a key/value Store and issues one fallback query when a search
// comes back empty.
package search

import (
	"strings"
)

// PlaceholderImage is shown for tracks without any usable artwork.
const PlaceholderImage = "https://via.placeholder.com/100"

// Defaults applied during normalization.
const (
	UnknownTitle  = "Unknown Track"
	UnknownArtist = "Unknown Artist"
)

// Track is a normalized playable unit.
type Track struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artists  []string `json:"artists"`
	Images   []string `json:"images"`
	MediaURL string   `json:"mp3_url"`
	Duration int      `json:"duration"` // seconds
}

// Image returns the first usable image URL, or PlaceholderImage.
func (t Track) Image() string {
	for _, img := range t.Images {
		if usableURL(img) {
			return img
		}
	}
	return PlaceholderImage
}

// Artist returns the artist names joined for display.
func (t Track) Artist() string {
	if len(t.Artists) == 0 {
		return UnknownArtist
	}
	return strings.Join(t.Artists, ", ")
}

// Record is one raw track record as returned by a catalog collaborator.
// Field names vary between providers; see Normalize.
type Record map[string]any

func usableURL(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "#"
}
