package reconcile

import (
	"fmt"

	"cardmatch/internal/common"
	"cardmatch/internal/match"
)

// Options configures one reconciliation run.
type Options struct {
	Vectorizer match.VectorizerConfig
	Features   match.FeatureConfig

	// SimilarityThreshold is the minimum score for a candidate to be
	// reported at all.
	SimilarityThreshold float64
	// MatrixThreshold zeroes similarity matrix entries before extraction.
	// Zero means half the similarity threshold.
	MatrixThreshold float64
	// AutoAcceptThreshold is the score at which a group's best candidate is
	// accepted without review. Zero disables auto-acceptance.
	AutoAcceptThreshold float64
	// MaxMatchesPerItem caps candidates per sell item.
	MaxMatchesPerItem int
	// SkipDecided drops sell items that already hold an accepted match.
	SkipDecided bool
}

// DefaultOptions returns the standard run configuration.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.2,
		AutoAcceptThreshold: 0.9,
		MaxMatchesPerItem:   5,
		SkipDecided:         true,
		Vectorizer:          match.DefaultVectorizerConfig(),
		Features:            match.DefaultFeatureConfig(),
	}
}

func (o Options) validate() error {
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %f out of [0,1]", common.ErrInvalidInput, o.SimilarityThreshold)
	}
	if o.AutoAcceptThreshold < 0 || o.AutoAcceptThreshold > 1 {
		return fmt.Errorf("%w: auto-accept threshold %f out of [0,1]", common.ErrInvalidInput, o.AutoAcceptThreshold)
	}
	if o.MatrixThreshold < 0 || o.MatrixThreshold > 1 {
		return fmt.Errorf("%w: matrix threshold %f out of [0,1]", common.ErrInvalidInput, o.MatrixThreshold)
	}
	if o.MaxMatchesPerItem <= 0 {
		return fmt.Errorf("%w: max matches per item must be positive", common.ErrInvalidInput)
	}
	return nil
}

func (o Options) matrixThreshold() float64 {
	if o.MatrixThreshold > 0 {
		return o.MatrixThreshold
	}
	return o.SimilarityThreshold * 0.5
}
