// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package introgress implements the mixing
// of the populations of two lineages
// at an hybridization event.
package introgress

import (
	"fmt"
	"slices"

	"github.com/js-arias/pomosim/pomo"
	"github.com/js-arias/pomosim/rates"
	"github.com/js-arias/pomosim/sampler"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Param are the parameters of an introgression event.
type Param struct {
	// Phi is the probability that a site
	// is affected by introgression.
	Phi float64

	// GammaB is the expected fraction of the B lineage
	// that comes from the C lineage.
	GammaB float64

	// GammaC is the expected fraction of the C lineage
	// that comes from the B lineage.
	GammaC float64
}

// String returns the parameters as a string.
func (p Param) String() string {
	return fmt.Sprintf("phi=%.6f gammaB=%.6f gammaC=%.6f", p.Phi, p.GammaB, p.GammaC)
}

// Mix mixes the populations of lineages B and C
// in a population of size n.
// It returns the new states of the B and C lineages,
// and true if the site was affected by introgression.
//
// Random numbers are used in a fixed order.
// First,
// a single random number decides
// if the site is introgressed
// (with probability Phi).
// If it is not,
// the states are returned unchanged.
// Otherwise the new B lineage is built
// and then the new C lineage,
// both from the states before mixing.
//
// The new population of B is built
// by taking k ~ Binomial(n, GammaB) migrants
// sampled without replacement from the population of C,
// and n-k residents
// sampled without replacement from the population of B.
// The new population of C is built in the same way
// using GammaC.
// If gamma is 0 or 1,
// no migrants or only migrants are taken
// without using the binomial draw,
// so a gamma of 0 keeps the resident population
// and a gamma of 1 replaces it with the other population.
//
// If the new population has more than two alleles,
// only the two most frequent alleles are kept
// (on ties, the first in base order),
// and each individual with a discarded allele
// takes one of the kept alleles
// with probability proportional to its frequency.
func Mix(b, c pomo.State, p Param, n int, rng *rand.Rand) (pomo.State, pomo.State, bool) {
	b = b.Canonical(n)
	c = c.Canonical(n)

	ber := distuv.Bernoulli{P: p.Phi, Src: rng}
	if ber.Rand() == 0 {
		return b, c, false
	}

	nb := blend(b, c, p.GammaB, n, rng)
	nc := blend(c, b, p.GammaC, n, rng)
	return nb, nc, true
}

// Blend returns the population of a lineage
// after receiving migrants from a donor lineage.
func blend(own, donor pomo.State, gamma float64, n int, rng *rand.Rand) pomo.State {
	k := migrants(n, gamma, rng)
	if k == 0 {
		return own
	}
	if k == n {
		return donor
	}

	// size is always in range,
	// so sampling never fails.
	m, _ := sampler.Sample(donor, n, k, rng)
	r, _ := sampler.Sample(own, n, n-k, rng)

	var counts [rates.NumBases]int
	for i := range counts {
		counts[i] = m.Counts[i] + r.Counts[i]
	}
	return reduce(counts, rng)
}

func migrants(n int, gamma float64, rng *rand.Rand) int {
	if gamma <= 0 {
		return 0
	}
	if gamma >= 1 {
		return n
	}
	bin := distuv.Binomial{
		N:   float64(n),
		P:   gamma,
		Src: rng,
	}
	return int(bin.Rand())
}

// Reduce returns a biallelic state
// from the counts of each base.
func reduce(counts [rates.NumBases]int, rng *rand.Rand) pomo.State {
	bases := make([]rates.Base, 0, rates.NumBases)
	for b, v := range counts {
		if v > 0 {
			bases = append(bases, rates.Base(b))
		}
	}
	if len(bases) > 2 {
		slices.SortStableFunc(bases, func(x, y rates.Base) int {
			return counts[y] - counts[x]
		})
		b1, b2 := bases[0], bases[1]

		var m int
		for _, b := range bases[2:] {
			m += counts[b]
			counts[b] = 0
		}
		bin := distuv.Binomial{
			N:   float64(m),
			P:   float64(counts[b2]) / float64(counts[b1]+counts[b2]),
			Src: rng,
		}
		x := int(bin.Rand())
		counts[b2] += x
		counts[b1] += m - x
	}

	// at most two alleles are present
	s, _ := pomo.FromCounts(counts)
	return s
}
