package model

import "fmt"

// Party identifies a political party, or any other categorical key that votes
// are tabulated by. Parties are compared by value and are used directly as map
// keys. The zero Party is not a valid key.
type Party struct {
	ID   string
	Name string
}

// NewParty returns a party whose ID and display name are both name.
func NewParty(name string) Party {
	return Party{ID: name, Name: name}
}

// IsZero checks whether p is the zero Party.
func (p Party) IsZero() bool { return p == Party{} }

func (p Party) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// District identifies an electoral district. Identifiers need not be
// contiguous, and zero is a valid identifier.
type District int

func (d District) String() string { return fmt.Sprintf("District %d", int(d)) }

// Point is a position on a 2D plane.
type Point struct {
	X float64
	Y float64
}

// Voter is a single member of a population: where they live and which party
// they vote for.
type Voter struct {
	Position Point
	Party    Party
}
