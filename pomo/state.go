// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package pomo implements a polymorphism-aware phylogenetic model (PoMo)
// with boundary mutations,
// in which the state of a site
// is the allele composition of a virtual population
// of N individuals.
package pomo

import (
	"fmt"

	"github.com/js-arias/pomosim/rates"
)

// A State is the allele composition of a population
// at a given site.
//
// Count is the number of individuals
// (of the N individuals of the population)
// that carry the Derived allele,
// all other individuals carry the Ancestral allele.
//
// In its canonical form,
// a monomorphic state has Count 0
// and Derived equal to Ancestral,
// and a polymorphic state has Ancestral < Derived
// (in base order)
// and 0 < Count < N.
type State struct {
	Ancestral rates.Base
	Derived   rates.Base
	Count     int
}

// Fixed returns the monomorphic state of a base.
func Fixed(b rates.Base) State {
	return State{Ancestral: b, Derived: b}
}

// Monomorphic returns true if only a single allele
// is present in the state.
func (s State) Monomorphic() bool {
	return s.Count == 0 || s.Ancestral == s.Derived
}

// Canonical returns the canonical form of a state
// in a population of size n.
func (s State) Canonical(n int) State {
	if s.Count <= 0 || s.Ancestral == s.Derived {
		return Fixed(s.Ancestral)
	}
	if s.Count >= n {
		return Fixed(s.Derived)
	}
	if s.Ancestral > s.Derived {
		return State{
			Ancestral: s.Derived,
			Derived:   s.Ancestral,
			Count:     n - s.Count,
		}
	}
	return s
}

// Freqs returns the number of individuals
// with each base
// in a population of size n.
func (s State) Freqs(n int) [rates.NumBases]int {
	var f [rates.NumBases]int
	if s.Monomorphic() {
		f[s.Ancestral] = n
		return f
	}
	f[s.Derived] = s.Count
	f[s.Ancestral] = n - s.Count
	return f
}

// String returns a state in the form "A:C[1]"
// (ancestral, derived, and derived count),
// or the base of a monomorphic state.
func (s State) String() string {
	if s.Monomorphic() {
		return s.Ancestral.String()
	}
	return fmt.Sprintf("%s:%s[%d]", s.Ancestral, s.Derived, s.Count)
}

// FromCounts returns the canonical state
// from the number of individuals of each base.
// At most two bases can have individuals.
func FromCounts(c [rates.NumBases]int) (State, error) {
	var present []rates.Base
	n := 0
	for b, v := range c {
		if v < 0 {
			return State{}, fmt.Errorf("invalid count %d for base %s", v, rates.Base(b))
		}
		if v == 0 {
			continue
		}
		present = append(present, rates.Base(b))
		n += v
	}

	switch len(present) {
	case 0:
		return State{}, fmt.Errorf("empty population")
	case 1:
		return Fixed(present[0]), nil
	case 2:
		s := State{
			Ancestral: present[0],
			Derived:   present[1],
			Count:     c[present[1]],
		}
		return s.Canonical(n), nil
	}
	return State{}, fmt.Errorf("%d alleles in population: at most two alleles are allowed", len(present))
}
