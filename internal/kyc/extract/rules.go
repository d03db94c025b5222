package extract

import (
	"regexp"
	"strings"

	"github.com/idextract/idextract/internal/kyc"
)

// Shapes shared by several rules. The identity number is three groups of four
// digits separated by single spaces, the secondary id four groups of four.
var (
	IdentityShape  = regexp.MustCompile(`\b\d{4} \d{4} \d{4}\b`)
	SecondaryShape = regexp.MustCompile(`\d{4}\s?\d{4}\s?\d{4}\s?\d{4}`)
	postalCode     = regexp.MustCompile(`\b\d{6}\b`)
	nameLine       = regexp.MustCompile(`^[A-Z][A-Za-z]*(\s+[A-Z][A-Za-z]*)+$`)
)

// nameExcluded are tokens that disqualify a line from being the holder name.
var nameExcluded = map[string]bool{
	"male":   true,
	"female": true,
	"dob":    true,
	"vid":    true,
}

// Pattern is one candidate match for a field. Group selects the submatch to
// use as the value; Value, when set, replaces the matched text.
type Pattern struct {
	Re    *regexp.Regexp
	Group int
	Value string
}

// Rule extracts one field. Patterns are tried in order and the first one that
// matches anywhere in the text wins. Rules with a Lines func scan lines instead.
type Rule struct {
	Field    kyc.Field
	Patterns []Pattern
	Lines    func(lines []string) (string, bool)
}

var frontRules = []Rule{
	{
		Field:    kyc.IdentityNumber,
		Patterns: []Pattern{{Re: IdentityShape}},
	},
	{
		Field: kyc.SecondaryID,
		Patterns: []Pattern{
			{Re: regexp.MustCompile(`(?i)\bVID\b[\s:.\-]*(\d{4}\s?\d{4}\s?\d{4}\s?\d{4})`), Group: 1},
		},
	},
	{
		Field: kyc.DOB,
		Patterns: []Pattern{
			{Re: regexp.MustCompile(`(?i)(DOB|D\.O\.B\.?|Date of Birth|Birth Date|जन्म तिथि)[^\d\n]*(\d{2}[/-]\d{2}[/-]\d{4})\b`), Group: 2},
			{Re: regexp.MustCompile(`\b\d{2}[/-]\d{2}[/-]\d{4}\b`)},
		},
	},
	{
		Field: kyc.Gender,
		Patterns: []Pattern{
			{Re: regexp.MustCompile(`(?i)\bmale\b|पुरुष`), Value: "Male"},
			{Re: regexp.MustCompile(`(?i)\bfemale\b|महिला`), Value: "Female"},
		},
	},
	{
		Field: kyc.Name,
		Lines: findName,
	},
}

var backRules = []Rule{
	{
		Field: kyc.Address,
		Lines: findAddress,
	},
}

// Rules returns the ordered rule table for a side.
func Rules(side kyc.Side) []Rule {
	if side == kyc.Back {
		return backRules
	}
	return frontRules
}

func (r Rule) apply(text string, lines []string) (string, bool) {
	if r.Lines != nil {
		return r.Lines(lines)
	}
	for _, p := range r.Patterns {
		m := p.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if p.Value != "" {
			return p.Value, true
		}
		return strings.TrimSpace(m[p.Group]), true
	}
	return "", false
}

// IsName reports whether a single line looks like a holder name: two or more
// capitalized words, letters only, none of them an excluded keyword.
func IsName(line string) bool {
	line = strings.TrimSpace(line)
	if !nameLine.MatchString(line) {
		return false
	}
	for _, tok := range strings.Fields(line) {
		if nameExcluded[strings.ToLower(tok)] {
			return false
		}
	}
	return true
}

func findName(lines []string) (string, bool) {
	for _, l := range lines {
		if IsName(l) {
			return strings.Join(strings.Fields(l), " "), true
		}
	}
	return "", false
}

// findAddress takes the first line holding a postal code plus up to three
// lines on each side, dropping lines that carry an id number.
func findAddress(lines []string) (string, bool) {
	at := -1
	for i, l := range lines {
		if postalCode.MatchString(l) {
			at = i
			break
		}
	}
	if at < 0 {
		return "", false
	}

	lo, hi := max(at-3, 0), min(at+3, len(lines)-1)
	parts := make([]string, 0, hi-lo+1)
	for _, l := range lines[lo : hi+1] {
		if SecondaryShape.MatchString(l) || IdentityShape.MatchString(l) {
			continue
		}
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	addr := strings.TrimSpace(strings.Join(parts, " "))
	return addr, addr != ""
}
