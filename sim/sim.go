// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements the simulation
// of allele counts of independent sites
// under a PoMo model
// on a four taxa tree with introgression.
package sim

import (
	"context"
	"fmt"
	randv2 "math/rand/v2"
	"runtime"
	"sync"

	"github.com/js-arias/pomosim/cats"
	"github.com/js-arias/pomosim/introgress"
	"github.com/js-arias/pomosim/pomo"
	"github.com/js-arias/pomosim/rates"
	"github.com/js-arias/pomosim/sampler"
	"github.com/js-arias/pomosim/sptree"
	"golang.org/x/exp/rand"
)

// Config is the configuration of a simulation.
// It is expected to be already validated.
type Config struct {
	// SampleCounts is the number of sampled individuals
	// of each taxon
	// (in the order A, B, C, D).
	SampleCounts [sptree.NumTaxa]int

	// Sites is the number of simulated sites.
	Sites int

	// Seed is the seed of the random number generator.
	// If zero,
	// the seed is taken from a random source.
	Seed uint64

	// Freqs are the mutational base frequencies
	// (A, C, G, T).
	Freqs [rates.NumBases]float64

	// R are the mutational exchangeabilities
	// (AC, AG, AT, CG, CT, GT).
	R [6]float64

	// N is the size of the PoMo population.
	N int

	// Depths are the node depths of the tree.
	Depths sptree.Depths

	// Introgression parameters.
	Phi    float64
	GammaB float64
	GammaC float64

	// RateFunc is the name of the distribution
	// of rates across sites,
	// either "gamma" (the default) or "lognormal".
	RateFunc string

	// Alpha is the parameter
	// of the distribution of rates across sites
	// (the shape for gamma, sigma for lognormal).
	// Used only if RateCats is larger than 1.
	Alpha float64

	// RateCats is the number of discrete categories
	// for the rates across sites.
	// If zero or one,
	// all sites evolve at the same rate.
	RateCats int

	// CPU is the number of concurrent workers.
	// If zero,
	// all available CPUs are used.
	// It does not change the results.
	CPU int
}

// Introgression returns the introgression parameters
// of a configuration.
func (c Config) Introgression() introgress.Param {
	return introgress.Param{
		Phi:    c.Phi,
		GammaB: c.GammaB,
		GammaC: c.GammaC,
	}
}

// Rates returns the relative rates
// of each rate category.
// It returns nil if all sites evolve at the same rate.
func (c Config) Rates() ([]float64, error) {
	if c.RateCats < 2 || c.Alpha <= 0 {
		return nil, nil
	}
	fn := c.RateFunc
	if fn == "" {
		fn = cats.GammaFunc
	}
	d, err := cats.New(fn, c.Alpha, c.RateCats)
	if err != nil {
		return nil, err
	}
	return cats.Rates(d), nil
}

// Site is a simulated site.
type Site struct {
	// Draws are the sampled allele counts
	// of each taxon.
	Draws [sptree.NumTaxa]sampler.Draw

	// History are the true population states
	// of the site.
	History sptree.History
}

// Output is the result of a simulation.
type Output struct {
	// Seed is the seed used by the simulation.
	Seed uint64

	Config Config
	Sites  []Site
}

// Run runs a simulation.
//
// Each site uses its own random source
// derived from the seed and the site index,
// so the output only depends on the configuration
// and the seed.
// The simulation can be stopped between sites
// by cancelling the context.
// If there is an error,
// no output is returned.
func Run(ctx context.Context, cfg Config) (*Output, error) {
	tree, err := sptree.New(cfg.Depths)
	if err != nil {
		return nil, err
	}

	for i, c := range cfg.SampleCounts {
		if c < 0 || c > cfg.N {
			return nil, fmt.Errorf("%w: taxon %s: sample size %d with population size %d", sampler.ErrSampling, sptree.Taxon(i), c, cfg.N)
		}
	}

	q, err := rates.New(cfg.Freqs, cfg.R)
	if err != nil {
		return nil, err
	}
	chain, err := pomo.NewChain(q, cfg.N)
	if err != nil {
		return nil, err
	}
	rc, err := cfg.Rates()
	if err != nil {
		return nil, err
	}
	s, err := sptree.NewSimulator(tree, chain, cfg.Introgression(), rc)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	for seed == 0 {
		seed = randv2.Uint64()
	}

	out := &Output{
		Seed:   seed,
		Config: cfg,
		Sites:  make([]Site, cfg.Sites),
	}
	if err := out.simulate(ctx, s); err != nil {
		return nil, err
	}
	return out, nil
}

type siteJob struct {
	site int
	wg   *sync.WaitGroup
}

func (o *Output) simulate(ctx context.Context, s *sptree.Simulator) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cpu := o.Config.CPU
	if cpu <= 0 {
		cpu = runtime.NumCPU()
	}
	if cpu > len(o.Sites) {
		cpu = len(o.Sites)
	}

	var once sync.Once
	var siteErr error
	fail := func(err error) {
		once.Do(func() {
			siteErr = err
			cancel()
		})
	}

	jobs := make(chan siteJob, cpu*2)
	for range cpu {
		go func() {
			for j := range jobs {
				if ctx.Err() == nil {
					site, err := o.site(s, j.site)
					if err != nil {
						fail(err)
					} else {
						o.Sites[j.site] = site
					}
				}
				j.wg.Done()
			}
		}()
	}

	var wg sync.WaitGroup
	for i := range o.Sites {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		jobs <- siteJob{site: i, wg: &wg}
	}
	close(jobs)
	wg.Wait()

	if siteErr != nil {
		return siteErr
	}
	return ctx.Err()
}

func (o *Output) site(s *sptree.Simulator, i int) (Site, error) {
	rng := SiteRand(o.Seed, i)
	h := s.Site(rng)

	site := Site{History: h}
	for tx := sptree.A; tx <= sptree.D; tx++ {
		d, err := sampler.Sample(h.Tip(tx), o.Config.N, o.Config.SampleCounts[tx], rng)
		if err != nil {
			return Site{}, fmt.Errorf("site %d: taxon %s: %w", i, tx, err)
		}
		site.Draws[tx] = d
	}
	return site, nil
}

// SiteRand returns the random source of a site.
//
// The source is a PCG generator
// seeded with a splitmix64 hash
// of the simulation seed
// and the site index.
func SiteRand(seed uint64, site int) *rand.Rand {
	return rand.New(rand.NewSource(mix(seed + mix(uint64(site)))))
}

// Mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
