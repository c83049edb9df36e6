package sim

import (
	"math"

	"github.com/votegrid/votegrid/model"
	"golang.org/x/xerrors"
)

// A population generator.
// This uses a fast xorshift PRNG to place voters. The statistical properties
// of the positions are not important to correctness.
type Generator struct {
	xorshiftState uint64
}

// NewGenerator returns a generator seeded with seed. A zero seed, which would
// make xorshift emit only zeros, is replaced with a fixed non-zero one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = defaultPopulationSeed
	}
	return &Generator{seed}
}

// Float64 returns a number in [0, 1).
func (g *Generator) Float64() float64 {
	return float64(g.next()>>11) / (1 << 53)
}

// Uniform returns n points spread uniformly over a width x height domain.
func (g *Generator) Uniform(n int, width, height float64) []model.Point {
	points := make([]model.Point, n)
	for i := range points {
		points[i] = model.Point{X: g.Float64() * width, Y: g.Float64() * height}
	}
	return points
}

// Population places n voters uniformly over a width x height domain. Each
// voter belongs to below if field samples negative at its position, scaled to
// the unit square, and to above otherwise.
func (g *Generator) Population(n int, width, height float64, field PartyField, below, above model.Party) (*model.Population, error) {
	if n < 0 {
		return nil, xerrors.Errorf("negative voter count: %d", n)
	}
	var b model.PopulationBuilder
	for _, p := range g.Uniform(n, width, height) {
		party := above
		if field.Sample(p.X/width, p.Y/height) < 0 {
			party = below
		}
		b.AddVoter(model.Voter{Position: p, Party: party})
	}
	return b.Build()
}

func (g *Generator) next() uint64 {
	x := g.xorshiftState
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.xorshiftState = x
	return x
}

// PartyField decides party affiliation across the unit square: voters where
// the field is negative lean one way, the rest the other.
type PartyField interface {
	Sample(x, y float64) float64
}

var (
	_ PartyField = Radial{}
	_ PartyField = (*Noise)(nil)
)

// Radial is negative inside a circle of the given radius centred on the unit
// square.
type Radial struct {
	Radius float64
}

func (r Radial) Sample(x, y float64) float64 {
	return math.Hypot(x-0.5, y-0.5) - r.Radius
}

// Noise is smooth two-dimensional value noise in [-1, 1]. Scale sets the
// number of lattice cells across the unit square.
type Noise struct {
	scale float64
	perm  [256]uint8
	value [256]float64
}

// NewNoise returns noise derived from seed.
func NewNoise(seed uint64, scale float64) *Noise {
	g := NewGenerator(seed)
	n := &Noise{scale: scale}
	for i := range n.perm {
		n.perm[i] = uint8(i)
		n.value[i] = g.Float64()*2 - 1
	}
	for i := len(n.perm) - 1; i > 0; i-- {
		j := int(g.next() % uint64(i+1))
		n.perm[i], n.perm[j] = n.perm[j], n.perm[i]
	}
	return n
}

func (n *Noise) Sample(x, y float64) float64 {
	x, y = x*n.scale, y*n.scale
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := smoothstep(x-x0), smoothstep(y-y0)
	i, j := int(x0), int(y0)
	v00 := n.lattice(i, j)
	v10 := n.lattice(i+1, j)
	v01 := n.lattice(i, j+1)
	v11 := n.lattice(i+1, j+1)
	top := v00 + (v10-v00)*fx
	bottom := v01 + (v11-v01)*fx
	return top + (bottom-top)*fy
}

func (n *Noise) lattice(i, j int) float64 {
	return n.value[n.perm[(int(n.perm[i&0xff])+j)&0xff]]
}

func smoothstep(t float64) float64 { return t * t * (3 - 2*t) }
