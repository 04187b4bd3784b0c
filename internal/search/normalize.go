package search

import (
	"encoding/json"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Normalize converts a raw record into a Track. The second return value is
// false when the record carries no usable media URL.
//
// Each field is read from the first alternative present:
//
//	title    name, title, song
//	artists  primaryArtists, artists.primary[].name, artists, artist, singers
//	images   image, images, thumbnail, album.images
//	media    downloadUrl, media_url, mp3_url, preview_url, stream_url
//	duration duration (seconds), duration_ms
func Normalize(r Record) (Track, bool) {
	media := mediaURL(r)
	if media == "" {
		return Track{}, false
	}

	t := Track{
		ID:       idOf(r),
		Title:    titleOf(r),
		Artists:  artistsOf(r),
		Images:   imagesOf(r),
		MediaURL: media,
		Duration: durationOf(r),
	}
	return t, true
}

// NormalizeAll normalizes records in order, drops unplayable ones and keeps
// at most limit tracks. A limit of zero or less keeps all of them.
func NormalizeAll(records []Record, limit int) []Track {
	tracks := make([]Track, 0, len(records))
	for _, r := range records {
		if limit > 0 && len(tracks) == limit {
			break
		}
		if t, ok := Normalize(r); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

func idOf(r Record) string {
	switch v := r["id"].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	}
	return uuid.NewString()
}

func titleOf(r Record) string {
	for _, key := range []string{"name", "title", "song"} {
		if s := cleanString(r[key]); s != "" {
			return s
		}
	}
	return UnknownTitle
}

func artistsOf(r Record) []string {
	if names := nameList(r["primaryArtists"]); len(names) > 0 {
		return names
	}
	if m, ok := r["artists"].(map[string]any); ok {
		if names := nameList(m["primary"]); len(names) > 0 {
			return names
		}
	}
	for _, key := range []string{"artists", "artist", "singers"} {
		if names := nameList(r[key]); len(names) > 0 {
			return names
		}
	}
	return []string{UnknownArtist}
}

// nameList reads "A, B", ["A", "B"], [{"name": "A"}] or {"name": "A"}.
func nameList(v any) []string {
	var out []string
	switch v := v.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := cleanString(part); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if s = cleanString(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			out = append(out, nameList(item)...)
		}
	case map[string]any:
		if s := cleanString(v["name"]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func imagesOf(r Record) []string {
	for _, key := range []string{"image", "images", "thumbnail"} {
		if urls := urlList(r[key]); len(urls) > 0 {
			return urls
		}
	}
	if album, ok := r["album"].(map[string]any); ok {
		if urls := urlList(album["images"]); len(urls) > 0 {
			return urls
		}
	}
	return nil
}

// urlList reads a URL string, a list of strings, or a list of objects
// carrying "url" or "link".
func urlList(v any) []string {
	var out []string
	switch v := v.(type) {
	case string:
		if usableURL(v) {
			out = append(out, v)
		}
	case []string:
		for _, s := range v {
			if usableURL(s) {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			out = append(out, urlList(item)...)
		}
	case map[string]any:
		if s := linkOf(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func linkOf(m map[string]any) string {
	for _, key := range []string{"url", "link"} {
		if s, ok := m[key].(string); ok && usableURL(s) {
			return s
		}
	}
	return ""
}

// mediaURL prefers the download entry at index 4 (320kbps on saavn), then
// the first entry, then the last.
func mediaURL(r Record) string {
	if entries := urlEntries(r["downloadUrl"]); len(entries) > 0 {
		for _, i := range []int{4, 0, len(entries) - 1} {
			if i < len(entries) && usableURL(entries[i]) {
				return entries[i]
			}
		}
	}
	for _, key := range []string{"media_url", "mp3_url", "preview_url", "stream_url"} {
		if s, ok := r[key].(string); ok && usableURL(s) {
			return s
		}
	}
	return ""
}

// urlEntries keeps list positions so the quality index stays meaningful.
func urlEntries(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			switch item := item.(type) {
			case string:
				out[i] = item
			case map[string]any:
				out[i] = linkOf(item)
			}
		}
		return out
	}
	return nil
}

func durationOf(r Record) int {
	if secs, ok := number(r["duration"]); ok {
		return int(math.Round(secs))
	}
	if ms, ok := number(r["duration_ms"]); ok {
		return int(ms / 1000)
	}
	return 0
}

func number(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func cleanString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s))
}
