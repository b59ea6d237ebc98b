// Package imageutil unifies the image representations the backend and the
// form layer produce, and prepares inline images for upload.
//
// Point images arrive in three shapes: descriptor objects with an `image`
// path (the API's serialized form), absolute URLs, and inline base64 data
// URIs for photos the user just attached. Everything is resolved to a
// display-ready string exactly once, here.
package imageutil

import (
	"strings"

	"github.com/waymark-app/waymark/internal/model"

	"github.com/rs/zerolog"
)

// DataURIPrefix marks inline images pending upload.
const DataURIPrefix = "data:image/"

// Normalizer resolves raw image entries against the configured backend
// origin.
type Normalizer struct {
	baseURL     string
	mediaPrefix string
	log         zerolog.Logger
}

// NewNormalizer creates a normalizer. baseURL is the backend origin used to
// absolutize relative media paths; mediaPrefix is the path prefix the backend
// serves uploads under (typically "/media/").
func NewNormalizer(baseURL, mediaPrefix string, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		baseURL:     strings.TrimRight(baseURL, "/"),
		mediaPrefix: mediaPrefix,
		log:         log,
	}
}

// resolveString applies the string rules: data URIs and absolute URLs pass
// through, relative media paths get the backend origin prepended.
func (n *Normalizer) resolveString(s string) (string, bool) {
	switch {
	case strings.HasPrefix(s, DataURIPrefix):
		return s, true
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return s, true
	case strings.HasPrefix(s, n.mediaPrefix):
		return n.baseURL + s, true
	default:
		return "", false
	}
}

// Classify resolves a single raw entry into the model's image union.
// The second return is false for entries that match no known shape.
func (n *Normalizer) Classify(entry any) (model.Image, bool) {
	switch v := entry.(type) {
	case string:
		resolved, ok := n.resolveString(v)
		if !ok {
			return model.Image{}, false
		}
		if strings.HasPrefix(resolved, DataURIPrefix) {
			return model.PendingImage(resolved), true
		}
		return model.PersistedImage(resolved), true
	case map[string]any:
		// descriptor object from the API, e.g. {"id": 3, "image": "/media/p/1.jpg"}
		field, ok := v["image"].(string)
		if !ok {
			return model.Image{}, false
		}
		resolved, ok := n.resolveString(field)
		if !ok {
			return model.Image{}, false
		}
		return model.PersistedImage(resolved), true
	case model.Image:
		return v, v.Kind != model.ImageUnknown
	default:
		return model.Image{}, false
	}
}

// Normalize converts a mixed sequence of image entries into display-ready
// source strings. Unrecognized entries are dropped with a log line, never
// raised: they indicate backend format drift, not a user mistake. Running
// Normalize on its own output is a no-op.
func (n *Normalizer) Normalize(entries []any) []string {
	out := make([]string, 0, len(entries))
	for i, entry := range entries {
		img, ok := n.Classify(entry)
		if !ok {
			n.log.Warn().Int("index", i).Type("entryType", entry).
				Msg("Dropping unrecognized image entry")
			continue
		}
		out = append(out, img.Src)
	}
	return out
}

// Images converts a mixed sequence of raw entries into the model union,
// dropping what cannot be classified.
func (n *Normalizer) Images(entries []any) []model.Image {
	out := make([]model.Image, 0, len(entries))
	for i, entry := range entries {
		img, ok := n.Classify(entry)
		if !ok {
			n.log.Warn().Int("index", i).Type("entryType", entry).
				Msg("Dropping unrecognized image entry")
			continue
		}
		out = append(out, img)
	}
	return out
}

// FirstImage returns the first resolvable display source, or "" if none.
func (n *Normalizer) FirstImage(entries []any) string {
	processed := n.Normalize(entries)
	if len(processed) == 0 {
		return ""
	}
	return processed[0]
}

// Count returns the number of resolvable images among the entries.
func (n *Normalizer) Count(entries []any) int {
	return len(n.Normalize(entries))
}
