package model

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the engine wraps exactly one of
// these so callers can decide between aborting a job and skipping one
// (category, partition) unit.
var (
	// ErrConfig marks invalid configuration. Nothing may be written once a
	// configuration error is detected.
	ErrConfig = errors.New("configuration error")

	// ErrData marks bad input data for a single unit of work.
	ErrData = errors.New("data error")
)

var (
	ErrNoCategories       = fmt.Errorf("%w: empty category list", ErrConfig)
	ErrInvalidPercentages = fmt.Errorf("%w: invalid partition percentages", ErrConfig)
	ErrMissingArtifact    = fmt.Errorf("%w: missing extractor artifact", ErrConfig)
	ErrNotFitted          = fmt.Errorf("%w: feature builder not fitted on the training partition", ErrConfig)

	ErrMissingSentence   = fmt.Errorf("%w: sentence text not found", ErrData)
	ErrInvalidSentenceID = fmt.Errorf("%w: invalid sentence id", ErrData)
)

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsDataError reports whether err is a data error.
func IsDataError(err error) bool {
	return errors.Is(err, ErrData)
}
