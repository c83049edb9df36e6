package sim

import (
	"github.com/votegrid/votegrid/catalog"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
	"golang.org/x/xerrors"
)

const (
	defaultSimName        = "sim"
	defaultPopulationSeed = 12
	defaultNoiseSeed      = 17
	defaultNoiseScale     = 3
	defaultVoterCount     = 500
	defaultWidth          = 1.0
	defaultHeight         = 1.0
)

var (
	defaultParties = [2]model.Party{{ID: "dem", Name: "DEM"}, {ID: "rep", Name: "REP"}}

	// The three plans cycled through by the demo.
	defaultGrids = [][][]int{
		{
			{6, 6, 3, 3, 3, 3},
			{6, 6, 6, 3, 4, 4},
			{1, 6, 1, 3, 4, 4},
			{1, 1, 1, 5, 4, 4},
			{2, 1, 2, 5, 5, 5},
			{2, 2, 2, 2, 5, 5},
		},
		{
			{6, 6, 6, 3, 3, 3},
			{6, 6, 1, 3, 3, 3},
			{6, 2, 1, 1, 1, 4},
			{2, 2, 1, 1, 4, 4},
			{2, 5, 5, 5, 4, 4},
			{2, 2, 5, 5, 5, 4},
		},
		{
			{1, 1, 1, 5, 4, 4},
			{1, 1, 5, 5, 4, 4},
			{1, 5, 5, 2, 4, 4},
			{6, 6, 5, 2, 2, 2},
			{6, 6, 3, 3, 3, 2},
			{6, 6, 3, 3, 3, 2},
		},
	}
)

type Option func(*options) error

type options struct {
	name string
	// population, when set, is used as is and the generation options below
	// are ignored.
	population *model.Population
	voterCount int
	seed       uint64
	field      PartyField
	parties    [2]model.Party
	width      float64
	height     float64
	grids      [][][]int
}

func newOptions(o ...Option) (*options, error) {
	var opts options
	for _, apply := range o {
		if err := apply(&opts); err != nil {
			return nil, err
		}
	}
	if opts.name == "" {
		opts.name = defaultSimName
	}
	if opts.voterCount == 0 {
		opts.voterCount = defaultVoterCount
	}
	if opts.seed == 0 {
		opts.seed = defaultPopulationSeed
	}
	if opts.field == nil {
		opts.field = NewNoise(defaultNoiseSeed, defaultNoiseScale)
	}
	if opts.parties[0].IsZero() || opts.parties[1].IsZero() {
		opts.parties = defaultParties
	}
	if opts.width == 0 {
		opts.width = defaultWidth
	}
	if opts.height == 0 {
		opts.height = defaultHeight
	}
	if len(opts.grids) == 0 {
		opts.grids = defaultGrids
	}
	return &opts, nil
}

// WithName sets the name the simulation is reported under.
func WithName(name string) Option {
	return func(o *options) error {
		o.name = name
		return nil
	}
}

// WithPopulation uses p instead of generating a population.
func WithPopulation(p *model.Population) Option {
	return func(o *options) error {
		if p == nil {
			return xerrors.New("nil population")
		}
		o.population = p
		return nil
	}
}

// WithVoterCount sets the number of generated voters. Defaults to 500.
func WithVoterCount(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return xerrors.Errorf("voter count must be positive, got %d", n)
		}
		o.voterCount = n
		return nil
	}
}

// WithSeed sets the seed voter positions are drawn with.
func WithSeed(seed uint64) Option {
	return func(o *options) error {
		o.seed = seed
		return nil
	}
}

// WithPartyField sets the field deciding each generated voter's party.
// Defaults to value noise.
func WithPartyField(f PartyField) Option {
	return func(o *options) error {
		o.field = f
		return nil
	}
}

// WithParties sets the two parties of generated voters: below for voters where
// the party field is negative, above for the rest.
func WithParties(below, above model.Party) Option {
	return func(o *options) error {
		if below.IsZero() || above.IsZero() || below == above {
			return xerrors.Errorf("two distinct parties are required, got %q and %q", below, above)
		}
		o.parties = [2]model.Party{below, above}
		return nil
	}
}

// WithExtent sets the width and height of the domain voters are placed in.
func WithExtent(width, height float64) Option {
	return func(o *options) error {
		if !(width > 0 && height > 0) {
			return xerrors.Errorf("extent %v x %v: %w", width, height, grid.ErrInvalidDimension)
		}
		o.width, o.height = width, height
		return nil
	}
}

// WithGrids sets the district arrays the simulation cycles through, replacing
// any set earlier.
func WithGrids(ids ...[][]int) Option {
	return func(o *options) error {
		o.grids = ids
		return nil
	}
}

// WithPlans appends the districts of the given catalog plans to the arrays
// the simulation cycles through.
func WithPlans(plans ...*catalog.Plan) Option {
	return func(o *options) error {
		for _, p := range plans {
			if err := p.Validate(); err != nil {
				return err
			}
			o.grids = append(o.grids, p.Districts)
		}
		return nil
	}
}
