package kyc

import (
	"fmt"
	"strings"
)

// ValidationError reports the required fields that could not be extracted.
// The raw OCR texts are kept so the caller can show what was read.
type ValidationError struct {
	Missing   []Field
	FrontText string
	BackText  string
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("essential fields missing: %s", strings.Join(names, ", "))
}

// MissingNames returns the missing field names as plain strings.
func (e *ValidationError) MissingNames() []string {
	out := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		out[i] = string(f)
	}
	return out
}

// Text is the combined diagnostic text, front first.
func (e *ValidationError) Text() string {
	return e.FrontText + "\n" + e.BackText
}

// Assemble merges the front and back mappings with the caller supplied user id
// and checks the required fields. frontText and backText only feed the
// ValidationError.
func Assemble(front, back FieldMapping, userID, frontText, backText string) (Record, *ValidationError) {
	merged := make(FieldMapping, len(front)+len(back))
	for _, f := range FrontFields {
		if v, ok := front.Get(f); ok {
			merged[f] = v
		}
	}
	for _, f := range BackFields {
		if v, ok := back.Get(f); ok {
			merged[f] = v
		}
	}

	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := merged.Get(f); !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return Record{}, &ValidationError{Missing: missing, FrontText: frontText, BackText: backText}
	}

	return Record{
		IdentityNumber: merged[IdentityNumber],
		SecondaryID:    merged[SecondaryID],
		DOB:            merged[DOB],
		Gender:         merged[Gender],
		Name:           merged[Name],
		Address:        merged[Address],
		UserID:         userID,
	}, nil
}
