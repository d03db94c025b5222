// Package extract turns raw OCR text into identity fields using an ordered
// table of pattern rules per document side.
package extract

import (
	"strings"

	"github.com/idextract/idextract/internal/kyc"
)

// Extract applies the rules for side to text. Fields without a match are
// left out of the mapping. Extract is pure.
func Extract(text string, side kyc.Side) kyc.FieldMapping {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := kyc.FieldMapping{}
	for _, r := range Rules(side) {
		if v, ok := r.apply(text, lines); ok {
			out[r.Field] = v
		}
	}
	return out
}

// CountIdentity returns how many identity-number shaped substrings text
// contains. The orientation selector uses it as a text quality score.
func CountIdentity(text string) int {
	return len(IdentityShape.FindAllStringIndex(text, -1))
}
