package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID creates a standardized, human-readable session ID.
// Format: sess-{mapSlug}-{8charHexUUID}
//
// Example:
//   - Input: mapName="Crossing the Line v2"
//   - Output: "sess-crossing-the-line-v2-a3f8e2b1"
//
// The map slug keeps session lists scannable while the UUID suffix keeps
// IDs globally unique.
func GenerateSessionID(mapName string) string {
	slug := slugify(mapName)
	if slug == "" {
		slug = "game"
	}
	return "sess-" + slug + "-" + generateShortUUID()
}

// slugify lowercases the name and collapses every non-alphanumeric run
// into a single hyphen.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// generateShortUUID creates an 8-character hex string from a UUID.
// This provides sufficient uniqueness while keeping IDs compact.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
