// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cats implements discrete categories
// of relative substitution rates among sites,
// taken from a continuous probability distribution.
// Each category has the same probability,
// and the categories are scaled
// so the mean rate is 1.
package cats

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Valid names of rate functions.
const (
	GammaFunc     = "gamma"
	LogNormalFunc = "lognormal"
)

// Discrete is a discrete category distribution.
type Discrete interface {
	// Cats returns the rates of the different categories.
	Cats() []float64

	// String output for the function name and parameters.
	String() string
}

// New returns a discrete distribution
// from the name of the function,
// its parameter,
// and the number of categories.
//
// For a gamma distribution the parameter is the shape
// (alpha and beta set as equal);
// for a log normal distribution
// the parameter is sigma
// (mu is set so the mean is 1).
func New(fn string, param float64, n int) (Discrete, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid number of categories: %d", n)
	}
	if param <= 0 {
		return nil, fmt.Errorf("invalid parameter for %s rates: %.6f", fn, param)
	}

	switch strings.ToLower(fn) {
	case GammaFunc:
		return Gamma{
			Param: distuv.Gamma{
				Alpha: param,
				Beta:  param,
			},
			NumCat: n,
		}, nil
	case LogNormalFunc:
		return LogNormal{
			Param: distuv.LogNormal{
				Mu:    -param * param / 2,
				Sigma: param,
			},
			NumCat: n,
		}, nil
	}
	return nil, fmt.Errorf("unknown rate function %q", fn)
}

// Gamma is a discretized Gamma distribution.
type Gamma struct {
	Param  distuv.Gamma
	NumCat int
}

// Cats returns the rates of a Gamma distribution
// discretized in equal probability categories.
func (g Gamma) Cats() []float64 {
	return medians(g.Param, g.NumCat)
}

func (g Gamma) String() string {
	return fmt.Sprintf("gamma=%.6f", g.Param.Alpha)
}

// LogNormal is a discretized LogNormal distribution.
type LogNormal struct {
	Param  distuv.LogNormal
	NumCat int
}

// Cats returns the rates of a log normal distribution
// discretized in equal probability categories.
func (ln LogNormal) Cats() []float64 {
	return medians(ln.Param, ln.NumCat)
}

func (ln LogNormal) String() string {
	return fmt.Sprintf("lognormal=%.6f", ln.Param.Sigma)
}

// Rates returns the rates of the categories
// of a discrete distribution
// scaled so their mean is 1.
func Rates(d Discrete) []float64 {
	c := d.Cats()
	var sum float64
	for _, v := range c {
		sum += v
	}
	if sum <= 0 {
		return c
	}
	mean := sum / float64(len(c))
	for i, v := range c {
		c[i] = v / mean
	}
	return c
}

type quantiler interface {
	Quantile(p float64) float64
}

// Medians returns the value at the middle
// of each equal probability category.
func medians(q quantiler, n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		p := (float64(i) + 0.5) / float64(n)
		c[i] = q.Quantile(p)
	}
	return c
}
