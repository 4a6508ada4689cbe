// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pomo

import (
	"fmt"
	"math"

	"github.com/js-arias/pomosim/rates"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Space is the state space of a PoMo model
// with a population of size N.
//
// The first four states are the monomorphic states
// (in base order),
// followed by the N-1 polymorphic states
// of each base pair
// (in the order of rates.Pairs).
type Space int

// N returns the population size.
func (sp Space) N() int {
	return int(sp)
}

// Len returns the number of states.
func (sp Space) Len() int {
	return rates.NumBases + len(rates.Pairs)*(int(sp)-1)
}

// Index returns the index of a state.
func (sp Space) Index(s State) int {
	n := int(sp)
	s = s.Canonical(n)
	if s.Monomorphic() {
		return int(s.Ancestral)
	}
	p := rates.PairIndex(s.Ancestral, s.Derived)
	return rates.NumBases + p*(n-1) + s.Count - 1
}

// State returns the state at a given index.
func (sp Space) State(i int) State {
	if i < rates.NumBases {
		return Fixed(rates.Base(i))
	}
	n := int(sp)
	i -= rates.NumBases
	p := rates.Pairs[i/(n-1)]
	return State{
		Ancestral: p[0],
		Derived:   p[1],
		Count:     i%(n-1) + 1,
	}
}

// A Chain is the continuous time Markov chain
// of a PoMo model.
//
// Mutations only occur on monomorphic states
// (boundary mutation),
// and a fixed state of base x
// moves to a polymorphic state
// with a single individual of base y
// at rate N * Q[x][y].
// Polymorphic states change by Moran drift:
// a state with i individuals of the derived allele
// moves to i+1 and to i-1
// each at rate i(N-i)/N.
type Chain struct {
	q     *rates.Generator
	space Space
	gen   *mat.Dense

	stationary []float64
	rootCum    []float64
}

// NewChain creates a new PoMo chain
// from a mutation process
// and a population size.
func NewChain(q *rates.Generator, n int) (*Chain, error) {
	if n < 2 {
		return nil, fmt.Errorf("invalid population size %d", n)
	}
	sp := Space(n)
	k := sp.Len()
	gen := mat.NewDense(k, k, nil)
	nf := float64(n)

	for x := rates.A; x <= rates.T; x++ {
		from := sp.Index(Fixed(x))
		for y := rates.A; y <= rates.T; y++ {
			if x == y {
				continue
			}
			to := sp.Index(State{Ancestral: x, Derived: y, Count: 1})
			gen.Set(from, to, nf*q.Rate(x, y))
		}
	}

	for i := rates.NumBases; i < k; i++ {
		s := sp.State(i)
		c := float64(s.Count)
		drift := c * (nf - c) / nf

		up := s
		up.Count++
		gen.Set(i, sp.Index(up), drift)

		down := s
		down.Count--
		gen.Set(i, sp.Index(down), drift)
	}

	for i := 0; i < k; i++ {
		var sum float64
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			sum += gen.At(i, j)
		}
		gen.Set(i, i, -sum)
	}

	c := &Chain{
		q:     q,
		space: sp,
		gen:   gen,
	}
	c.setStationary()
	return c, nil
}

// SetStationary sets the stationary distribution
// of the chain.
//
// For a reversible mutation process,
// the stationary probability of a fixed state x
// is proportional to pi_x,
// and of a polymorphic state (x, y, i)
// is proportional to pi_x pi_y r_xy N^2 / (i (N-i)).
func (c *Chain) setStationary() {
	n := c.space.N()
	nf := float64(n)
	k := c.space.Len()

	st := make([]float64, k)
	for i := range st {
		s := c.space.State(i)
		if s.Monomorphic() {
			st[i] = c.q.Freq(s.Ancestral)
			continue
		}
		x, y := s.Ancestral, s.Derived
		ci := float64(s.Count)
		st[i] = c.q.Freq(x) * c.q.Freq(y) * c.q.Exchangeability(x, y) * nf * nf / (ci * (nf - ci))
	}
	floats.Scale(1/floats.Sum(st), st)

	cum := floats.CumSum(make([]float64, k), st)
	cum[k-1] = 1

	c.stationary = st
	c.rootCum = cum
}

// Generator returns a copy of the instantaneous rate matrix
// of the chain.
func (c *Chain) Generator() *mat.Dense {
	return mat.DenseCopyOf(c.gen)
}

// Mutation returns the mutation process of the chain.
func (c *Chain) Mutation() *rates.Generator {
	return c.q
}

// N returns the population size of the chain.
func (c *Chain) N() int {
	return c.space.N()
}

// Space returns the state space of the chain.
func (c *Chain) Space() Space {
	return c.space
}

// Stationary returns the stationary distribution
// of the chain.
func (c *Chain) Stationary() []float64 {
	st := make([]float64, len(c.stationary))
	copy(st, c.stationary)
	return st
}

// Root draws a state from the stationary distribution.
// It uses a single random number.
func (c *Chain) Root(rng *rand.Rand) State {
	return c.space.State(pick(c.rootCum, rng.Float64()))
}

// Transition returns the probability distribution
// over all states
// (in the order of the state space)
// after a time t,
// starting from a given state.
func (c *Chain) Transition(s State, t float64) ([]float64, error) {
	b, err := c.Branch(t)
	if err != nil {
		return nil, err
	}
	return b.Row(s), nil
}

// Branch returns the transition probabilities
// of a branch with a given length.
//
// Probabilities are calculated with the exact
// matrix exponential of the chain generator,
// P(t) = exp(Q t).
// A branch of length zero is the identity.
func (c *Chain) Branch(t float64) (*Branch, error) {
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, fmt.Errorf("invalid branch length %v", t)
	}

	k := c.space.Len()
	p := mat.NewDense(k, k, nil)
	if t == 0 {
		for i := 0; i < k; i++ {
			p.Set(i, i, 1)
		}
	} else {
		var qt mat.Dense
		qt.Scale(t, c.gen)
		p.Exp(&qt)
	}

	b := &Branch{
		length: t,
		space:  c.space,
		cum:    make([][]float64, k),
		prob:   make([][]float64, k),
	}
	for i := 0; i < k; i++ {
		row := mat.Row(nil, i, p)
		for j, v := range row {
			// round-off from the exponential
			if v < 0 {
				row[j] = 0
			}
		}
		sum := floats.Sum(row)
		if sum <= 0 || math.IsNaN(sum) {
			return nil, fmt.Errorf("branch length %.6f: invalid transition row %d", t, i)
		}
		floats.Scale(1/sum, row)
		cum := floats.CumSum(make([]float64, k), row)
		cum[k-1] = 1
		b.prob[i] = row
		b.cum[i] = cum
	}
	return b, nil
}
