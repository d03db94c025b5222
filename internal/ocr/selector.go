package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/idextract/idextract/internal/kyc/extract"
	"github.com/idextract/idextract/pkg/logger"
)

// ZeroMatchPolicy decides what the selector returns when no orientation
// produced a single identity-number shaped match.
type ZeroMatchPolicy int

const (
	// FallbackFirst returns the text read at 0 degrees.
	FallbackFirst ZeroMatchPolicy = iota
	// Empty returns no text at all.
	Empty
)

// ParseZeroMatchPolicy maps "first" and "empty" to a policy.
func ParseZeroMatchPolicy(s string) (ZeroMatchPolicy, error) {
	switch s {
	case "first", "":
		return FallbackFirst, nil
	case "empty":
		return Empty, nil
	}
	return FallbackFirst, fmt.Errorf("unknown zero-match policy %q", s)
}

// Attempt is the outcome of reading one orientation.
type Attempt struct {
	Angle int
	Score int
	Text  string
}

// Selection is the chosen text plus every attempt that led to it.
type Selection struct {
	Text     string
	Angle    int
	Score    int
	Attempts []Attempt
}

// Selector runs OCR over every orientation and keeps the best scoring text.
type Selector struct {
	rec    Recognizer
	policy ZeroMatchPolicy
	log    *logger.Component
}

func NewSelector(rec Recognizer, policy ZeroMatchPolicy) *Selector {
	return &Selector{rec: rec, policy: policy, log: logger.Named("ocr")}
}

// SelectBestText returns the text of the best orientation.
func (s *Selector) SelectBestText(ctx context.Context, img image.Image, languages []string) (string, error) {
	sel, err := s.Select(ctx, img, languages)
	if err != nil {
		return "", err
	}
	return sel.Text, nil
}

// Select tries each angle in Angles. The score of an angle is the number of
// identity-number shaped substrings in its text; only a strictly higher score
// replaces the current best, so ties go to the earlier angle. A selection
// always tries every angle; cancelling ctx does not stop it.
func (s *Selector) Select(ctx context.Context, img image.Image, languages []string) (Selection, error) {
	ctx = context.WithoutCancel(ctx)
	var sel Selection
	best := 0
	found := false
	for _, angle := range Angles {
		rotated, err := Rotate(img, angle)
		if err != nil {
			return Selection{}, err
		}
		text, err := s.rec.Recognize(ctx, rotated, languages)
		if err != nil {
			return Selection{}, fmt.Errorf("ocr at %d degrees: %w", angle, err)
		}
		score := extract.CountIdentity(text)
		sel.Attempts = append(sel.Attempts, Attempt{Angle: angle, Score: score, Text: text})
		s.log.Debugf("angle=%d score=%d chars=%d", angle, score, len(text))

		if score > best {
			best = score
			found = true
			sel.Text, sel.Angle, sel.Score = text, angle, score
		}
	}

	if !found {
		sel.Angle, sel.Score = 0, 0
		if s.policy == FallbackFirst && len(sel.Attempts) > 0 {
			sel.Text = sel.Attempts[0].Text
		}
		s.log.Debugf("no orientation matched an identity number, policy=%d", s.policy)
	}
	return sel, nil
}
