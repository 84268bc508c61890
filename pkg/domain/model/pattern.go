package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// stopwords dropped during signature normalization. Kept small on purpose:
// the signature should still look like the event title.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "for": {}, "in": {},
	"of": {}, "on": {}, "the": {}, "to": {}, "with": {},
}

// NormalizeSignature converts free event text into its signature form:
// lowercase, punctuation stripped, stopwords removed, whitespace collapsed.
func NormalizeSignature(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if _, ok := stopwords[tok]; ok {
			continue
		}
		tokens = append(tokens, tok)
	}

	return strings.Join(tokens, " ")
}

// SignatureSimilarity returns the token-set Jaccard similarity of two
// normalized signatures, in [0, 1].
func SignatureSimilarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	setA := map[string]struct{}{}
	for _, tok := range strings.Fields(a) {
		setA[tok] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, tok := range strings.Fields(b) {
		setB[tok] = struct{}{}
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var shared int
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			shared++
		}
	}

	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

// PatternSignature is one learned association between a normalized event text
// and a project/task outcome for a single user. Occurrences counts this exact
// signature→outcome pair; TotalOccurrences counts all outcomes observed for
// the signature. Built only from the owning user's accepted history.
type PatternSignature struct {
	UserID           types.UserID    `firestore:"user_id"`
	Signature        string          `firestore:"signature"`
	ProjectID        types.ProjectID `firestore:"project_id"`
	TaskID           types.TaskID    `firestore:"task_id"`
	Occurrences      int             `firestore:"occurrences"`
	TotalOccurrences int             `firestore:"total_occurrences"`
	LastSeen         time.Time       `firestore:"last_seen"`
}

// Validate checks if the PatternSignature is well-formed
func (x *PatternSignature) Validate() error {
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if x.Signature == "" {
		return goerr.New("signature cannot be empty")
	}
	if err := x.ProjectID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid project ID")
	}
	if err := x.TaskID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task ID")
	}
	if x.Occurrences <= 0 || x.TotalOccurrences < x.Occurrences {
		return goerr.New("inconsistent occurrence counts",
			goerr.V("occurrences", x.Occurrences),
			goerr.V("total", x.TotalOccurrences))
	}
	return nil
}

// Confidence returns the raw share of this outcome among all outcomes seen
// for the signature, before recency weighting.
func (x *PatternSignature) Confidence() float64 {
	if x.TotalOccurrences == 0 {
		return 0
	}
	return float64(x.Occurrences) / float64(x.TotalOccurrences)
}
