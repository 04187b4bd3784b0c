package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-mood-music/internal/search"
)

var _ search.Searcher = (*Client)(nil)

// Search returns catalog tracks for query as raw records. Tracks without a
// preview URL are kept here and dropped by the normalizer.
func (c *Client) Search(ctx context.Context, query string) ([]search.Record, error) {
	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(c.limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}

	if res.Tracks == nil {
		return []search.Record{}, nil
	}

	records := make([]search.Record, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		records = append(records, convertTrack(t))
	}
	return records, nil
}

// convertTrack converts a Spotify FullTrack to the record shape the
// normalizer reads.
func convertTrack(t spotify.FullTrack) search.Record {
	artists := make([]any, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = map[string]any{"name": a.Name}
	}

	images := make([]any, 0, len(t.Album.Images))
	for _, img := range t.Album.Images {
		images = append(images, map[string]any{"url": img.URL})
	}

	rec := search.Record{
		"id":          t.ID.String(),
		"name":        t.Name,
		"artists":     artists,
		"image":       images,
		"duration_ms": float64(t.Duration),
	}
	if t.PreviewURL != "" {
		rec["preview_url"] = t.PreviewURL
	}
	return rec
}
