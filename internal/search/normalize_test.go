package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMinimalRecord(t *testing.T) {
	r := Record{
		"name":        "Tum Hi Ho",
		"downloadUrl": []any{map[string]any{"url": "https://cdn.example/tum.mp4"}},
	}

	got, ok := Normalize(r)
	require.True(t, ok)
	assert.Equal(t, "Tum Hi Ho", got.Title)
	assert.Equal(t, "https://cdn.example/tum.mp4", got.MediaURL)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, []string{UnknownArtist}, got.Artists)
	assert.Equal(t, PlaceholderImage, got.Image())

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "https://cdn.example/tum.mp4", wire["mp3_url"])
	assert.Equal(t, "Tum Hi Ho", wire["title"])
}

func TestNormalizeAlternates(t *testing.T) {
	tests := []struct {
		name        string
		record      Record
		wantOK      bool
		wantTitle   string
		wantArtists []string
		wantImage   string
		wantMedia   string
		wantSecs    int
	}{
		{
			name: "saavn record prefers quality index four",
			record: Record{
				"id":             "abc",
				"name":           "Kesariya &amp; more",
				"primaryArtists": "Arijit Singh, Pritam",
				"image": []any{
					map[string]any{"quality": "50x50", "url": "https://img/50.jpg"},
					map[string]any{"quality": "500x500", "url": "https://img/500.jpg"},
				},
				"downloadUrl": []any{
					map[string]any{"url": "https://dl/12.mp4"},
					map[string]any{"url": "https://dl/48.mp4"},
					map[string]any{"url": "https://dl/96.mp4"},
					map[string]any{"url": "https://dl/160.mp4"},
					map[string]any{"url": "https://dl/320.mp4"},
				},
				"duration": "268",
			},
			wantOK:      true,
			wantTitle:   "Kesariya & more",
			wantArtists: []string{"Arijit Singh", "Pritam"},
			wantImage:   "https://img/50.jpg",
			wantMedia:   "https://dl/320.mp4",
			wantSecs:    268,
		},
		{
			name: "nested primary artists and link images",
			record: Record{
				"title":       "Song",
				"artists":     map[string]any{"primary": []any{map[string]any{"name": "A"}, map[string]any{"name": "B"}}},
				"images":      []any{map[string]any{"link": "https://img/l.jpg"}},
				"downloadUrl": []any{map[string]any{"link": "https://dl/only.mp4"}},
				"duration":    float64(201),
			},
			wantOK:      true,
			wantTitle:   "Song",
			wantArtists: []string{"A", "B"},
			wantImage:   "https://img/l.jpg",
			wantMedia:   "https://dl/only.mp4",
			wantSecs:    201,
		},
		{
			name: "download list falls back to last usable entry",
			record: Record{
				"song":        "S",
				"singers":     "Solo",
				"downloadUrl": []any{map[string]any{"url": "#"}, map[string]any{"url": "https://dl/last.mp4"}},
			},
			wantOK:      true,
			wantTitle:   "S",
			wantArtists: []string{"Solo"},
			wantImage:   PlaceholderImage,
			wantMedia:   "https://dl/last.mp4",
		},
		{
			name: "spotify shaped record",
			record: Record{
				"id":          "sp1",
				"name":        "Dreams",
				"artists":     []any{map[string]any{"name": "Fleetwood Mac"}},
				"album":       map[string]any{"images": []any{map[string]any{"url": "https://i.scdn/x"}}},
				"preview_url": "https://p.scdn/preview",
				"duration_ms": 257800,
			},
			wantOK:      true,
			wantTitle:   "Dreams",
			wantArtists: []string{"Fleetwood Mac"},
			wantImage:   "https://i.scdn/x",
			wantMedia:   "https://p.scdn/preview",
			wantSecs:    257,
		},
		{
			name: "thumbnail and media_url",
			record: Record{
				"name":      "T",
				"artist":    "X",
				"thumbnail": "https://img/t.jpg",
				"media_url": "https://m/1.mp3",
			},
			wantOK:      true,
			wantTitle:   "T",
			wantArtists: []string{"X"},
			wantImage:   "https://img/t.jpg",
			wantMedia:   "https://m/1.mp3",
		},
		{
			name:   "hash media disqualifies",
			record: Record{"name": "N", "mp3_url": "#"},
			wantOK: false,
		},
		{
			name:   "missing media disqualifies",
			record: Record{"name": "N", "artist": "A"},
			wantOK: false,
		},
		{
			name:        "no title",
			record:      Record{"stream_url": "https://s/1"},
			wantOK:      true,
			wantTitle:   UnknownTitle,
			wantArtists: []string{UnknownArtist},
			wantImage:   PlaceholderImage,
			wantMedia:   "https://s/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.record)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantArtists, got.Artists)
			assert.Equal(t, tt.wantImage, got.Image())
			assert.Equal(t, tt.wantMedia, got.MediaURL)
			assert.Equal(t, tt.wantSecs, got.Duration)
		})
	}
}

func TestNormalizeAllAppliesLimitAfterFiltering(t *testing.T) {
	records := []Record{
		{"name": "bad", "mp3_url": "#"},
		{"name": "a", "mp3_url": "https://m/a"},
		{"name": "b", "mp3_url": "https://m/b"},
		{"name": "c", "mp3_url": "https://m/c"},
	}

	got := NormalizeAll(records, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "b", got[1].Title)

	assert.Len(t, NormalizeAll(records, 0), 3)
	assert.Empty(t, NormalizeAll(nil, 8))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "search:v1:upbeat pop", CacheKey("  Upbeat   POP "))
	assert.Equal(t, CacheKey("lo-fi"), CacheKey("LO-FI"))
}
