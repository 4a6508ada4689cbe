// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sampler implements the sampling
// of observed allele counts
// from the true allele composition of a population.
package sampler

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/js-arias/pomosim/pomo"
	"github.com/js-arias/pomosim/rates"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/combin"
)

// ErrSampling is returned when the sample size
// or the population state
// are outside the support of the sampling distribution.
var ErrSampling = errors.New("sampling error")

// A Draw is the number of sampled individuals
// with each base.
type Draw struct {
	Counts [rates.NumBases]int
}

// Alleles returns the bases present in the sample.
func (d Draw) Alleles() []rates.Base {
	var bs []rates.Base
	for b, c := range d.Counts {
		if c > 0 {
			bs = append(bs, rates.Base(b))
		}
	}
	return bs
}

// Size returns the number of sampled individuals.
func (d Draw) Size() int {
	var n int
	for _, c := range d.Counts {
		n += c
	}
	return n
}

// String returns the counts of a draw
// as comma separated values
// in the order A, C, G, T.
func (d Draw) String() string {
	s := make([]string, len(d.Counts))
	for i, c := range d.Counts {
		s[i] = strconv.Itoa(c)
	}
	return strings.Join(s, ",")
}

// ParseDraw reads a draw from comma separated counts
// in the order A, C, G, T.
func ParseDraw(s string) (Draw, error) {
	f := strings.Split(s, ",")
	if len(f) != rates.NumBases {
		return Draw{}, fmt.Errorf("invalid counts %q: expecting %d values", s, rates.NumBases)
	}
	var d Draw
	for i, v := range f {
		c, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Draw{}, fmt.Errorf("invalid counts %q: %v", s, err)
		}
		if c < 0 {
			return Draw{}, fmt.Errorf("invalid counts %q: negative value", s)
		}
		d.Counts[i] = c
	}
	return d, nil
}

// Sample draws size individuals without replacement
// from a population of n individuals
// with the indicated state.
//
// The number of individuals with the derived allele
// is drawn from an hypergeometric distribution
// using a single random number.
// A sample of size zero returns an empty draw
// and does not use a random number.
func Sample(s pomo.State, n, size int, rng *rand.Rand) (Draw, error) {
	if size < 0 || size > n {
		return Draw{}, fmt.Errorf("%w: sample size %d with population size %d", ErrSampling, size, n)
	}
	if s.Count < 0 || s.Count > n {
		return Draw{}, fmt.Errorf("%w: state %v with population size %d", ErrSampling, s, n)
	}

	var d Draw
	if size == 0 {
		return d, nil
	}

	u := rng.Float64()
	if s.Monomorphic() {
		d.Counts[s.Ancestral] = size
		return d, nil
	}
	k := Hypergeometric(n, s.Count, size, u)
	d.Counts[s.Derived] = k
	d.Counts[s.Ancestral] = size - k
	return d, nil
}

// Hypergeometric returns the number of successes
// when drawing size elements without replacement
// from a population of n elements
// of which k are successes,
// using the inverse of the cumulative distribution
// at u.
func Hypergeometric(n, k, size int, u float64) int {
	lo := size - (n - k)
	if lo < 0 {
		lo = 0
	}
	hi := size
	if k < hi {
		hi = k
	}
	if lo >= hi {
		return lo
	}

	total := combin.LogGeneralizedBinomial(float64(n), float64(size))
	var cum float64
	for x := lo; x < hi; x++ {
		lp := combin.LogGeneralizedBinomial(float64(k), float64(x))
		lp += combin.LogGeneralizedBinomial(float64(n-k), float64(size-x))
		cum += math.Exp(lp - total)
		if cum > u {
			return x
		}
	}
	return hi
}

// Prob returns the probability of x successes
// in an hypergeometric distribution.
func Prob(n, k, size, x int) float64 {
	if x < 0 || x > k || size-x < 0 || size-x > n-k {
		return 0
	}
	lp := combin.LogGeneralizedBinomial(float64(k), float64(x))
	lp += combin.LogGeneralizedBinomial(float64(n-k), float64(size-x))
	lp -= combin.LogGeneralizedBinomial(float64(n), float64(size))
	return math.Exp(lp)
}
