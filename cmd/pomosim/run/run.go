// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package run implements a command to simulate
// allele counts.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/js-arias/command"
	"github.com/js-arias/pomosim/counts"
	"github.com/js-arias/pomosim/project"
	"github.com/js-arias/pomosim/sim"
	"github.com/js-arias/pomosim/sptree"
)

var Command = &command.Command{
	Usage: `run [-o|--output <file>] [--tree <file>]
	[--cpu <number>] [--seed <value>] [--chrom <name>]
	[-v|--verbose] <project-file>`,
	Short: "simulate allele counts",
	Long: `
Command run simulates the allele counts of independent sites evolving under
a PoMo model on the tree (((A,B),C),D), with introgression between B and C,
using the parameters defined in a pomosim project.

The argument of the command is the name of the project file. If no project
file exists, a new project will be created, and the default parameters will
be used.

The simulated counts will be stored in the counts file currently defined for
the project. If the project does not have a counts file, a new one will be
created with the name 'counts.tab'. A different file name can be defined
using the flag --output, or -o. Counts are written in the format of PoMo
counts files (see 'pomosim help counts').

The species tree used in the simulation is stored in the tree file of the
project. If the project does not have a tree file, a new one will be created
with the name 'tree.tab'. Use the flag --tree to define a different file.
Node ages in the tree file are stored with a resolution of 1e-6 depth units;
if the node depths can not be stored at that resolution, the simulation is
still done, but the tree file will not be written.

The flag --seed sets the seed of the random number generator, overriding the
seed defined in the parameters. If the seed is 0, the generator is seeded from
a random source, and the used seed is reported in the standard error. Two
runs with the same parameters and seed produce the same counts.

The flag --chrom sets the name of the chromosome used in the counts file. By
default it is "sim".

By default, all available CPUs will be used in the simulation. Use the flag
--cpu to set a different number of CPUs. The number of CPUs does not change
the simulated counts.

If the flag --verbose, or -v, is defined, a summary of the simulation will be
printed in the standard error.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var treeFile string
var chrom string
var numCPU int
var seed uint64
var verbose bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&treeFile, "tree", "", "")
	c.Flags().StringVar(&chrom, "chrom", counts.DefaultChrom, "")
	c.Flags().IntVar(&numCPU, "cpu", 0, "")
	c.Flags().Uint64Var(&seed, "seed", 0, "")
	c.Flags().BoolVar(&verbose, "verbose", false, "")
	c.Flags().BoolVar(&verbose, "v", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Open(args[0])
	if err != nil {
		return err
	}
	pp, err := p.Params()
	if err != nil {
		return err
	}
	if err := pp.Validate(); err != nil {
		return err
	}

	cfg := pp.Config()
	if seed != 0 {
		cfg.Seed = seed
	}
	cfg.CPU = numCPU

	tr, err := sptree.New(cfg.Depths)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	out, err := sim.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if verbose {
		summary(c.Stderr(), out)
	} else if cfg.Seed == 0 {
		fmt.Fprintf(c.Stderr(), "random seed: %d\n", out.Seed)
	}

	if output == "" {
		output = p.Path(project.Counts)
		if output == "" {
			output = "counts.tab"
		}
	}
	if err := counts.WriteFile(output, counts.FromOutput(out, chrom)); err != nil {
		return err
	}
	p.Add(project.Counts, output)

	if err := tr.Err(); err != nil {
		fmt.Fprintf(c.Stderr(), "warning: tree not stored: %v\n", err)
	} else {
		if treeFile == "" {
			treeFile = p.Path(project.Trees)
			if treeFile == "" {
				treeFile = "tree.tab"
			}
		}
		if err := tr.WriteFile(treeFile); err != nil {
			return err
		}
		p.Add(project.Trees, treeFile)
	}

	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func summary(w io.Writer, out *sim.Output) {
	cfg := out.Config
	fmt.Fprintf(w, "To simulate %d sites with:\n", cfg.Sites)
	for tx := sptree.A; tx <= sptree.D; tx++ {
		fmt.Fprintf(w, "  %d seqs from %s\n", cfg.SampleCounts[tx], tx)
	}
	if cfg.Seed != 0 {
		fmt.Fprintf(w, "RNG seed was %d\n", out.Seed)
	} else {
		fmt.Fprintf(w, "RNG seeded from random source (seed %d)\n", out.Seed)
	}
	fmt.Fprintf(w, "PoMo population size: %d\n", cfg.N)
	f := cfg.Freqs
	fmt.Fprintf(w, "base frequencies: A=%g C=%g G=%g T=%g\n", f[0], f[1], f[2], f[3])
	r := cfg.R
	fmt.Fprintf(w, "exchangeabilities: AC=%g AG=%g AT=%g CG=%g CT=%g GT=%g\n", r[0], r[1], r[2], r[3], r[4], r[5])
	fmt.Fprintf(w, "introgression probability (phi): %g\n", cfg.Phi)
	fmt.Fprintf(w, "mixing weights (gamma): B=%g C=%g\n", cfg.GammaB, cfg.GammaC)
	d := cfg.Depths
	fmt.Fprintf(w, "node depths: hyb=%g sis=%g ingroup=%g root=%g\n", d.Hyb, d.Sis, d.Ingroup, d.Root)
	if rc, _ := cfg.Rates(); len(rc) > 0 {
		fn := cfg.RateFunc
		if fn == "" {
			fn = "gamma"
		}
		fmt.Fprintf(w, "rates across sites: %s=%g categories=%d\n", fn, cfg.Alpha, len(rc))
	}

	var intro int
	for _, s := range out.Sites {
		if s.History.Introgressed {
			intro++
		}
	}
	fmt.Fprintf(w, "introgressed sites: %d\n", intro)
}
