package usecase

import (
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// Tuning holds the pattern-matching thresholds. They are configuration, not
// constants, so a deployment can tighten or relax suggestion behavior without
// a rebuild.
type Tuning struct {
	// SimilarityThreshold is the minimum token-set similarity between an
	// event signature and a learned signature for the pattern to apply
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// ConfidenceThreshold is the minimum recency-weighted confidence a
	// suggestion needs to resolve an event
	ConfidenceThreshold float64 `toml:"confidence_threshold"`

	// MinSupport is the minimum number of observed occurrences a pattern
	// needs before it can resolve anything
	MinSupport int `toml:"min_support"`

	// RecencyHalfLifeDays controls the exponential decay applied to pattern
	// confidence by age of last observation
	RecencyHalfLifeDays float64 `toml:"recency_half_life_days"`

	// MaxSuggestions caps the number of ranked suggestions returned per
	// signature
	MaxSuggestions int `toml:"max_suggestions"`
}

// DefaultTuning returns the built-in thresholds
func DefaultTuning() Tuning {
	return Tuning{
		SimilarityThreshold: 0.6,
		ConfidenceThreshold: 0.5,
		MinSupport:          2,
		RecencyHalfLifeDays: 45,
		MaxSuggestions:      3,
	}
}

// Validate checks if the tuning values are usable
func (x Tuning) Validate() error {
	if x.SimilarityThreshold < 0 || x.SimilarityThreshold > 1 {
		return goerr.New("similarity_threshold must be in [0, 1]",
			goerr.V("value", x.SimilarityThreshold))
	}
	if x.ConfidenceThreshold < 0 || x.ConfidenceThreshold > 1 {
		return goerr.New("confidence_threshold must be in [0, 1]",
			goerr.V("value", x.ConfidenceThreshold))
	}
	if x.MinSupport < 1 {
		return goerr.New("min_support must be at least 1", goerr.V("value", x.MinSupport))
	}
	if x.RecencyHalfLifeDays <= 0 {
		return goerr.New("recency_half_life_days must be positive",
			goerr.V("value", x.RecencyHalfLifeDays))
	}
	if x.MaxSuggestions < 1 {
		return goerr.New("max_suggestions must be at least 1",
			goerr.V("value", x.MaxSuggestions))
	}
	return nil
}

// LoadTuning reads a TOML tuning file. Missing keys keep their defaults.
func LoadTuning(path string) (Tuning, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tuning{}, goerr.Wrap(err, "failed to open tuning file", goerr.V("path", path))
	}
	defer f.Close()

	return ReadTuning(f)
}

// ReadTuning parses TOML tuning values from r on top of the defaults
func ReadTuning(r io.Reader) (Tuning, error) {
	tuning := DefaultTuning()
	if err := toml.NewDecoder(r).Decode(&tuning); err != nil {
		return Tuning{}, goerr.Wrap(err, "failed to parse tuning file")
	}
	if err := tuning.Validate(); err != nil {
		return Tuning{}, err
	}
	return tuning, nil
}
