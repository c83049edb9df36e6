package tally

import (
	"errors"

	"golang.org/x/xerrors"
)

var (
	// ErrInvalidKey signals that a part was addressed by the zero value of its
	// key type.
	ErrInvalidKey = errors.New("key is the zero value")
	// ErrNegativeAmount signals an attempt to set a part to a negative amount.
	ErrNegativeAmount = errors.New("amount is negative")
)

// PartToWhole tracks a collection of non-negative parts keyed by K, together
// with the whole they add up to. Keys are remembered in the order they were
// first set.
//
// The whole is maintained incrementally: setting an existing part adjusts the
// whole by the difference between the new and the old amount. There is no
// removal; a part is cleared by setting it to zero.
type PartToWhole[K comparable] struct {
	keys  []K
	parts map[K]int64
	whole int64
}

// NewPartToWhole returns an empty collection.
func NewPartToWhole[K comparable]() *PartToWhole[K] {
	return &PartToWhole[K]{parts: make(map[K]int64)}
}

// SetPart sets the amount associated with key, replacing any previous amount.
// It returns the previous amount and whether one existed.
func (p *PartToWhole[K]) SetPart(key K, amount int64) (previous int64, existed bool, err error) {
	var zero K
	switch {
	case key == zero:
		return 0, false, ErrInvalidKey
	case amount < 0:
		return 0, false, xerrors.Errorf("setting part %v to %d: %w", key, amount, ErrNegativeAmount)
	}
	previous, existed = p.parts[key]
	if !existed {
		p.keys = append(p.keys, key)
	}
	p.parts[key] = amount
	p.whole += amount - previous
	return previous, existed, nil
}

// Add increments the part associated with key by delta, creating it if
// absent, and returns the new amount.
func (p *PartToWhole[K]) Add(key K, delta int64) (int64, error) {
	amount := p.Part(key) + delta
	if _, _, err := p.SetPart(key, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// Part returns the amount associated with key, or zero if there is none. Use
// HasPart to tell a missing part from a zero one.
func (p *PartToWhole[K]) Part(key K) int64 {
	return p.parts[key]
}

// HasPart checks whether a part has been set for key.
func (p *PartToWhole[K]) HasPart(key K) bool {
	_, found := p.parts[key]
	return found
}

// PartKeys returns the keys in the order they were first set.
func (p *PartToWhole[K]) PartKeys() []K {
	keys := make([]K, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// NumberOfParts returns the number of parts in the collection.
func (p *PartToWhole[K]) NumberOfParts() int { return len(p.keys) }

// Whole returns the sum of all parts.
func (p *PartToWhole[K]) Whole() int64 { return p.whole }

// Percent returns the share of the whole held by key, in the range [0, 1].
// It is zero when the whole is zero.
func (p *PartToWhole[K]) Percent(key K) float64 {
	if p.whole == 0 {
		return 0
	}
	return float64(p.parts[key]) / float64(p.whole)
}

// Leader returns the key holding the strictly greatest part. Among keys with
// equal parts the one set first wins. ok is false when the collection is
// empty.
func (p *PartToWhole[K]) Leader() (leader K, amount int64, ok bool) {
	amount = -1
	for _, key := range p.keys {
		if part := p.parts[key]; part > amount {
			leader, amount, ok = key, part, true
		}
	}
	if !ok {
		amount = 0
	}
	return leader, amount, ok
}

// Clone returns an independent copy of p.
func (p *PartToWhole[K]) Clone() *PartToWhole[K] {
	c := &PartToWhole[K]{
		keys:  p.PartKeys(),
		parts: make(map[K]int64, len(p.parts)),
		whole: p.whole,
	}
	for k, v := range p.parts {
		c.parts[k] = v
	}
	return c
}
