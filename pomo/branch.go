// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pomo

import (
	"sort"

	"golang.org/x/exp/rand"
)

// A Branch stores the transition probabilities
// of a branch of a given length.
// Once created,
// a branch is read only,
// so it can be shared by concurrent simulations.
type Branch struct {
	length float64
	space  Space
	prob   [][]float64
	cum    [][]float64
}

// Len returns the length of the branch.
func (b *Branch) Len() float64 {
	return b.length
}

// Prob returns the probability of ending the branch
// in state to,
// given that the branch starts in state from.
func (b *Branch) Prob(from, to State) float64 {
	return b.prob[b.space.Index(from)][b.space.Index(to)]
}

// Row returns the probability distribution
// at the end of the branch,
// given a starting state.
func (b *Branch) Row(s State) []float64 {
	row := b.prob[b.space.Index(s)]
	cp := make([]float64, len(row))
	copy(cp, row)
	return cp
}

// Simulate draws the state at the end of the branch
// given the starting state.
// It always uses a single random number,
// even if the branch length is zero.
func (b *Branch) Simulate(s State, rng *rand.Rand) State {
	u := rng.Float64()
	return b.space.State(pick(b.cum[b.space.Index(s)], u))
}

// Pick returns the first index
// with a cumulative probability larger than u.
func pick(cum []float64, u float64) int {
	i := sort.Search(len(cum), func(i int) bool {
		return cum[i] > u
	})
	if i == len(cum) {
		i--
	}
	return i
}
