package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	imageExtPattern = regexp.MustCompile(`(?i)\.(gif|png|jpg|jpeg)$`)
	hashMarkPattern = regexp.MustCompile(`#[0-9]+`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]`)
)

// MakeItemID derives the stable identifier for the item declared at index
// within a section. Identifiers survive display-name edits; they only change
// if the catalog's declaration order changes.
func MakeItemID(sectionKey string, index int) string {
	return fmt.Sprintf("%s:%03d", sectionKey, index)
}

// NormalizeName reduces a display name to the form used for creature
// identity: lower-cased, image-extension suffix stripped, "#123" markers
// stripped, every non-alphanumeric rune dropped. Two entries describe the
// same creature iff their normalized names are equal. Total: malformed input
// yields an empty string, never an error.
func NormalizeName(raw string) string {
	s := strings.ToLower(raw)
	s = imageExtPattern.ReplaceAllString(s, "")
	s = hashMarkPattern.ReplaceAllString(s, "")
	return nonAlnumPattern.ReplaceAllString(s, "")
}
