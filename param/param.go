// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package param implements reading and writing
// of the parameters of a PoMo introgression simulation.
package param

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/pomosim/cats"
	"github.com/js-arias/pomosim/sim"
	"github.com/js-arias/pomosim/sptree"
)

// Param is a keyword to identify
// the type of parameter in a parameters file.
type Param string

// Valid parameters.
const (
	// BaseFreqs are the mutational base frequencies
	// of A, C, and G
	// (the frequency of T is 1 minus their sum).
	BaseFreqs Param = "base-freqs"

	// Gamma is the parameter of the distribution
	// of rates across sites.
	Gamma Param = "gamma"

	// IntrogressProb is the probability that a site
	// is affected by introgression.
	IntrogressProb Param = "introgress-prob"

	// MixingWts are the expected fractions of migrants
	// into B and into C
	// at an introgressed site.
	MixingWts Param = "mixing-wts"

	// NodeDepths are the depths of the hybridization,
	// sister group, ingroup, and root nodes.
	NodeDepths Param = "node-depths"

	// PopSize is the population size of the PoMo model.
	PopSize Param = "pop-size"

	// RateCats is the number of categories
	// of the rates across sites.
	RateCats Param = "rate-cats"

	// RateFunc is the distribution function
	// of the rates across sites.
	RateFunc Param = "rate-func"

	// RMat are the exchangeabilities
	// AC, AG, AT, CG, CT, and GT.
	RMat Param = "r-mat"

	// SampleCounts is the number of sampled individuals
	// of taxa A, B, C, and D.
	SampleCounts Param = "sample-counts"

	// Seed is the seed of the random number generator.
	Seed Param = "seed"

	// Sites is the number of simulated sites.
	Sites Param = "sites"
)

// P represents a collection of simulation parameters.
type P struct {
	name string // file name

	counts [sptree.NumTaxa]int
	sites  int
	seed   uint64

	freqs [3]float64
	r     [6]float64
	n     int

	depths sptree.Depths

	phi    float64
	gammaB float64
	gammaC float64

	fn    string
	alpha float64
	cats  int
}

// New creates a new parameter collection
// with the default values.
func New(name string) *P {
	return &P{
		name:   name,
		counts: [sptree.NumTaxa]int{1, 1, 1, 1},
		sites:  100,
		freqs:  [3]float64{0.25, 0.25, 0.25},
		r:      [6]float64{1, 1, 1, 1, 1, 1},
		n:      4,
		depths: sptree.Depths{
			Hyb:     1,
			Sis:     2,
			Ingroup: 3,
			Root:    4,
		},
		phi:    1,
		gammaB: 0.5,
		gammaC: 0.5,
		fn:     cats.GammaFunc,
		cats:   4,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a parameters file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter,
//     multiple values are separated by commas
//
// Parameters not defined in the file
// keep their default values.
//
// Here is an example file:
//
//	# pomosim parameters
//	parameter	value
//	sample-counts	1,1,1,1
//	sites	100
//	base-freqs	0.25,0.25,0.25
//	r-mat	1,1,1,1,1,1
//	pop-size	4
//	node-depths	1,2,3,4
//	introgress-prob	1
//	mixing-wts	0.5,0.5
func Read(name string) (*P, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	p.name = name
	return p, nil
}

// ReadTSV reads parameters from a TSV stream.
func ReadTSV(r io.Reader) (*P, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	p := New("")
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "parameter"
		k := Param(strings.ToLower(strings.TrimSpace(row[fields[f]])))

		f = "value"
		v := row[fields[f]]
		if err := p.Set(k, v); err != nil {
			return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
		}
	}
	return p, nil
}

// Set sets the value of a parameter
// from a string.
func (p *P) Set(k Param, v string) error {
	switch k {
	case BaseFreqs:
		f, err := parseFloats(v, 3)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetBaseFreqs([3]float64(f))
	case Gamma:
		a, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetGamma(a)
	case IntrogressProb:
		phi, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetIntrogressProb(phi)
	case MixingWts:
		g, err := parseFloats(v, 2)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetMixingWts(g[0], g[1])
	case NodeDepths:
		d, err := parseFloats(v, 4)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetNodeDepths(sptree.Depths{
			Hyb:     d[0],
			Sis:     d[1],
			Ingroup: d[2],
			Root:    d[3],
		})
	case PopSize:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetPopSize(n)
	case RateCats:
		c, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetRateCats(c)
	case RateFunc:
		return p.SetRateFunc(v)
	case RMat:
		r, err := parseFloats(v, 6)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetRMat([6]float64(r))
	case SampleCounts:
		c, err := parseInts(v, sptree.NumTaxa)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetSampleCounts([sptree.NumTaxa]int(c))
	case Seed:
		s, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		p.seed = s
		return nil
	case Sites:
		s, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return p.SetSites(s)
	}
	return fmt.Errorf("unknown parameter %q", k)
}

func parseFloats(s string, n int) ([]float64, error) {
	f := strings.Split(s, ",")
	if len(f) != n {
		return nil, fmt.Errorf("invalid value %q: expecting %d values", s, n)
	}
	v := make([]float64, n)
	for i, x := range f {
		var err error
		v[i], err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %v", s, err)
		}
	}
	return v, nil
}

func parseInts(s string, n int) ([]int, error) {
	f := strings.Split(s, ",")
	if len(f) != n {
		return nil, fmt.Errorf("invalid value %q: expecting %d values", s, n)
	}
	v := make([]int, n)
	for i, x := range f {
		var err error
		v[i], err = strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %v", s, err)
		}
	}
	return v, nil
}

// Config returns the simulation configuration
// defined by the parameters.
func (p *P) Config() sim.Config {
	return sim.Config{
		SampleCounts: p.counts,
		Sites:        p.sites,
		Seed:         p.seed,
		Freqs:        p.BaseFreqs(),
		R:            p.r,
		N:            p.n,
		Depths:       p.depths,
		Phi:          p.phi,
		GammaB:       p.gammaB,
		GammaC:       p.gammaC,
		RateFunc:     p.fn,
		Alpha:        p.alpha,
		RateCats:     p.cats,
	}
}

// BaseFreqs returns the four mutational base frequencies.
func (p *P) BaseFreqs() [4]float64 {
	return [4]float64{
		p.freqs[0],
		p.freqs[1],
		p.freqs[2],
		1 - p.freqs[0] - p.freqs[1] - p.freqs[2],
	}
}

// Gamma returns the parameter
// of the distribution of rates across sites
// (the shape for gamma, sigma for lognormal).
// If zero,
// all sites evolve at the same rate.
func (p *P) Gamma() float64 {
	return p.alpha
}

// IntrogressProb returns the probability
// that a site is affected by introgression.
func (p *P) IntrogressProb() float64 {
	return p.phi
}

// MixingWts returns the mixing weights
// of lineages B and C.
func (p *P) MixingWts() (gammaB, gammaC float64) {
	return p.gammaB, p.gammaC
}

// Name returns the file name of the parameters.
func (p *P) Name() string {
	return p.name
}

// NodeDepths returns the depths of the internal nodes.
func (p *P) NodeDepths() sptree.Depths {
	return p.depths
}

// PopSize returns the PoMo population size.
func (p *P) PopSize() int {
	return p.n
}

// RateCats returns the number of categories
// of the rates across sites.
func (p *P) RateCats() int {
	return p.cats
}

// RateFunc returns the name of the distribution
// of rates across sites.
func (p *P) RateFunc() string {
	return p.fn
}

// RMat returns the exchangeabilities.
func (p *P) RMat() [6]float64 {
	return p.r
}

// SampleCounts returns the number of sampled individuals
// of each taxon.
func (p *P) SampleCounts() [sptree.NumTaxa]int {
	return p.counts
}

// Seed returns the seed of the random number generator.
// If zero,
// the generator is seeded from a random source.
func (p *P) Seed() uint64 {
	return p.seed
}

// Sites returns the number of sites to simulate.
func (p *P) Sites() int {
	return p.sites
}

// SetBaseFreqs sets the base frequencies
// of A, C, and G.
func (p *P) SetBaseFreqs(f [3]float64) error {
	var sum float64
	for _, v := range f {
		if math.IsNaN(v) || v <= 0 || v >= 1 {
			return fmt.Errorf("base-freqs must be in the range (0, 1): %.6f found", v)
		}
		sum += v
	}
	if sum >= 1 {
		return fmt.Errorf("base-freqs must sum to less than 1: sum %.6f found", sum)
	}
	p.freqs = f
	return nil
}

// SetGamma sets the parameter
// of the distribution of rates across sites.
// Use zero for no rate variation.
func (p *P) SetGamma(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
		return fmt.Errorf("invalid gamma value: %.6f", a)
	}
	p.alpha = a
	return nil
}

// SetIntrogressProb sets the probability
// that a site is affected by introgression.
func (p *P) SetIntrogressProb(phi float64) error {
	if math.IsNaN(phi) || phi < 0 || phi > 1 {
		return fmt.Errorf("introgress-prob must be in the range [0, 1]: %.6f found", phi)
	}
	p.phi = phi
	return nil
}

// SetMixingWts sets the mixing weights
// of lineages B and C.
func (p *P) SetMixingWts(gammaB, gammaC float64) error {
	for _, g := range []float64{gammaB, gammaC} {
		if math.IsNaN(g) || g < 0 || g > 1 {
			return fmt.Errorf("mixing-wts must be in the range [0, 1]: %.6f found", g)
		}
	}
	p.gammaB = gammaB
	p.gammaC = gammaC
	return nil
}

// SetName sets the file name of the parameters.
func (p *P) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.name = name
}

// SetNodeDepths sets the depths of the internal nodes.
func (p *P) SetNodeDepths(d sptree.Depths) error {
	if err := d.Check(); err != nil {
		return err
	}
	p.depths = d
	return nil
}

// SetPopSize sets the PoMo population size.
func (p *P) SetPopSize(n int) error {
	if n < 2 {
		return fmt.Errorf("pop-size must be greater than 1: %d found", n)
	}
	p.n = n
	return nil
}

// SetRateCats sets the number of categories
// of the rates across sites.
func (p *P) SetRateCats(c int) error {
	if c < 1 {
		return fmt.Errorf("invalid number of categories: %d", c)
	}
	p.cats = c
	return nil
}

// SetRateFunc sets the distribution
// of the rates across sites.
// Valid values are "gamma" and "lognormal".
func (p *P) SetRateFunc(fn string) error {
	fn = strings.ToLower(strings.TrimSpace(fn))
	switch fn {
	case cats.GammaFunc:
	case cats.LogNormalFunc:
	default:
		return fmt.Errorf("unknown rate function %q", fn)
	}
	p.fn = fn
	return nil
}

// SetRMat sets the exchangeabilities.
func (p *P) SetRMat(r [6]float64) error {
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("r-mat must be > 0: %.6f found", v)
		}
	}
	p.r = r
	return nil
}

// SetSampleCounts sets the number of sampled individuals
// of each taxon.
func (p *P) SetSampleCounts(c [sptree.NumTaxa]int) error {
	for _, v := range c {
		if v < 0 {
			return fmt.Errorf("sample-counts must be non-negative: %d found", v)
		}
	}
	p.counts = c
	return nil
}

// SetSeed sets the seed of the random number generator.
// Use zero to seed from a random source.
func (p *P) SetSeed(s uint64) {
	p.seed = s
}

// SetSites sets the number of sites to simulate.
func (p *P) SetSites(s int) error {
	if s < 1 {
		return fmt.Errorf("sites must be a positive integer: %d found", s)
	}
	p.sites = s
	return nil
}

// Validate checks the parameters that depend on each other.
func (p *P) Validate() error {
	for i, c := range p.counts {
		if c > p.n {
			return fmt.Errorf("sample-counts: taxon %s: %d individuals with pop-size %d", sptree.Taxon(i), c, p.n)
		}
	}
	return nil
}

// Write writes a parameter collection into a file.
func (p *P) Write() (err error) {
	f, err := os.Create(p.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# pomosim parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	if err := p.TSV(bw); err != nil {
		return fmt.Errorf("on file %q: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}

// TSV writes the parameters as a TSV stream.
func (p *P) TSV(w io.Writer) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	d := p.depths
	rows := [][]string{
		{string(SampleCounts), joinInts(p.counts[:])},
		{string(Sites), strconv.Itoa(p.sites)},
		{string(Seed), strconv.FormatUint(p.seed, 10)},
		{string(BaseFreqs), joinFloats(p.freqs[:])},
		{string(RMat), joinFloats(p.r[:])},
		{string(PopSize), strconv.Itoa(p.n)},
		{string(NodeDepths), joinFloats([]float64{d.Hyb, d.Sis, d.Ingroup, d.Root})},
		{string(IntrogressProb), strconv.FormatFloat(p.phi, 'f', -1, 64)},
		{string(MixingWts), joinFloats([]float64{p.gammaB, p.gammaC})},
		{string(RateFunc), p.fn},
		{string(Gamma), strconv.FormatFloat(p.alpha, 'f', -1, 64)},
		{string(RateCats), strconv.Itoa(p.cats)},
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return err
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}

func joinFloats(v []float64) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strings.Join(s, ",")
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = strconv.Itoa(x)
	}
	return strings.Join(s, ",")
}
