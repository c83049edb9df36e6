package selector

import "errors"

var (
	// ErrNoPopulation signals that a grid selector was built without a
	// population.
	ErrNoPopulation = errors.New("no population")
	// ErrNoConfigurations signals that a selector was built with nothing to
	// cycle through.
	ErrNoConfigurations = errors.New("no configurations")
	// ErrVoterOutsideGrid signals that a voter lies outside the domain of one of
	// the grids.
	ErrVoterOutsideGrid = errors.New("voter outside grid")
)
