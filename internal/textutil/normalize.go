package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTopic lowercases a meeting topic, strips diacritics, and collapses
// runs of whitespace so equivalent topics compare equal across channels that
// encode them differently.
func NormalizeTopic(topic string) string {
	folded, _, err := transform.String(foldTransformer, topic)
	if err != nil {
		folded = topic
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// ContainsMarker reports whether the normalized topic contains any of the
// provided markers. Markers are expected to be lowercase already.
func ContainsMarker(topic string, markers []string) bool {
	normalized := NormalizeTopic(topic)
	if normalized == "" {
		return false
	}
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
