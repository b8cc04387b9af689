package vault

import (
	"strings"
	"time"
)

// typeLabels are the display prefixes used for fallback names.
var typeLabels = map[MediaType]string{
	MediaPhoto:    "Photo",
	MediaVideo:    "Video",
	MediaAudio:    "Audio",
	MediaDocument: "Document",
}

// EffectiveName returns the name an item resolves to for display and
// duplicate checks: the user-assigned name when present, otherwise a
// deterministic name derived from type and creation time.
func (m MediaItem) EffectiveName() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}

	label, ok := typeLabels[m.Type]
	if !ok {
		label = "Item"
	}

	ts := time.UnixMilli(m.Timestamp).UTC()

	return label + " " + ts.Format("2006-01-02 15.04.05")
}

// nameTaken reports whether candidate collides case-insensitively with
// the effective name of any non-deleted sibling. excludeID is the id
// of the item being renamed or moved, which never conflicts with
// itself.
func nameTaken(candidate string, siblings []MediaItem, excludeID string) bool {
	for _, s := range siblings {
		if s.ID == excludeID || s.Deleted() {
			continue
		}

		if strings.EqualFold(s.EffectiveName(), candidate) {
			return true
		}
	}

	return false
}
