// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package rates implements a reversible
// (general time reversible)
// mutation process between nucleotide bases.
package rates

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidModel is returned when a rate matrix
// is not a valid reversible generator.
var ErrInvalidModel = errors.New("invalid mutation model")

// Base is a nucleotide base.
type Base int

// Valid bases.
const (
	A Base = iota
	C
	G
	T
)

// NumBases is the number of nucleotide bases.
const NumBases = 4

// String returns the one letter code of a base.
func (b Base) String() string {
	switch b {
	case A:
		return "A"
	case C:
		return "C"
	case G:
		return "G"
	case T:
		return "T"
	}
	return fmt.Sprintf("Base(%d)", int(b))
}

// ParseBase returns the base of a one letter code.
func ParseBase(s string) (Base, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return A, nil
	case "C":
		return C, nil
	case "G":
		return G, nil
	case "T":
		return T, nil
	}
	return 0, fmt.Errorf("unknown base %q", s)
}

// Pairs are the base pairs
// in the order used for the exchangeabilities:
// AC, AG, AT, CG, CT, and GT.
var Pairs = [6][2]Base{
	{A, C},
	{A, G},
	{A, T},
	{C, G},
	{C, T},
	{G, T},
}

// PairIndex returns the index of an unordered base pair
// in the exchangeability vector.
// It returns -1 if both bases are the same.
func PairIndex(x, y Base) int {
	if x == y {
		return -1
	}
	if x > y {
		x, y = y, x
	}
	for i, p := range Pairs {
		if p[0] == x && p[1] == y {
			return i
		}
	}
	return -1
}

// Generator is an instantaneous rate matrix
// of a reversible mutation process.
type Generator struct {
	freqs [NumBases]float64
	r     [6]float64
	q     *mat.Dense
}

// tolerance used for the generator checks.
const tolerance = 1e-9

// New returns a reversible generator
// from the stationary base frequencies
// (in the order A, C, G, T)
// and the six exchangeabilities
// (in the order AC, AG, AT, CG, CT, GT).
//
// The off-diagonal rates are Q[x][y] = r_xy * pi_y,
// and the diagonal is set so each row sums to zero.
func New(freqs [NumBases]float64, r [6]float64) (*Generator, error) {
	q := mat.NewDense(NumBases, NumBases, nil)
	for x := A; x <= T; x++ {
		var sum float64
		for y := A; y <= T; y++ {
			if x == y {
				continue
			}
			v := r[PairIndex(x, y)] * freqs[y]
			q.Set(int(x), int(y), v)
			sum += v
		}
		q.Set(int(x), int(x), -sum)
	}

	g := &Generator{
		freqs: freqs,
		r:     r,
		q:     q,
	}
	if err := g.check(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) check() error {
	var sum float64
	for _, f := range g.freqs {
		if f <= 0 || math.IsNaN(f) {
			return fmt.Errorf("%w: base frequency %.6f", ErrInvalidModel, f)
		}
		sum += f
	}
	if math.Abs(sum-1) > tolerance {
		return fmt.Errorf("%w: base frequencies sum to %.6f", ErrInvalidModel, sum)
	}

	for x := 0; x < NumBases; x++ {
		var row float64
		for y := 0; y < NumBases; y++ {
			v := g.q.At(x, y)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: rate %s->%s is %v", ErrInvalidModel, Base(x), Base(y), v)
			}
			if x != y && v <= 0 {
				return fmt.Errorf("%w: rate %s->%s is %.6f", ErrInvalidModel, Base(x), Base(y), v)
			}
			row += v
		}
		if math.Abs(row) > tolerance {
			return fmt.Errorf("%w: row %s sums to %.6f", ErrInvalidModel, Base(x), row)
		}
	}

	// detailed balance
	for x := 0; x < NumBases; x++ {
		for y := x + 1; y < NumBases; y++ {
			fw := g.freqs[x] * g.q.At(x, y)
			bw := g.freqs[y] * g.q.At(y, x)
			if math.Abs(fw-bw) > tolerance*math.Max(1, fw) {
				return fmt.Errorf("%w: %s<->%s is not reversible", ErrInvalidModel, Base(x), Base(y))
			}
		}
	}
	return nil
}

// Exchangeability returns the exchangeability
// between two different bases.
func (g *Generator) Exchangeability(x, y Base) float64 {
	i := PairIndex(x, y)
	if i < 0 {
		return 0
	}
	return g.r[i]
}

// Freq returns the stationary frequency of a base.
func (g *Generator) Freq(b Base) float64 {
	return g.freqs[b]
}

// Freqs returns the stationary base frequencies.
func (g *Generator) Freqs() [NumBases]float64 {
	return g.freqs
}

// Matrix returns a copy of the rate matrix.
func (g *Generator) Matrix() *mat.Dense {
	return mat.DenseCopyOf(g.q)
}

// MeanRate returns the expected number of mutations
// per unit of time at stationarity.
func (g *Generator) MeanRate() float64 {
	var mu float64
	for x := 0; x < NumBases; x++ {
		mu -= g.freqs[x] * g.q.At(x, x)
	}
	return mu
}

// Rate returns the instantaneous rate
// from base x to base y.
func (g *Generator) Rate(x, y Base) float64 {
	return g.q.At(int(x), int(y))
}
