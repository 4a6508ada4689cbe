// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(countsGuide)
	app.Add(paramsGuide)
	app.Add(projectsGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
Pomosim uses a single project file to keep the reference of the files used
and produced by a simulation. This guide explains the structure of the file,
but most of the time, the best way to edit or view this file is by using
pomosim commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# pomosim project files
	dataset	path
	params	params.tab
	counts	counts.tab
	trees	tree.tab

The valid file types are:

- Simulation parameters. Defined by the dataset keyword "params". This file
  contains the parameters of the simulation in the form of a tab-delimited
  file. The recommended way to add or edit the parameters is by using the
  command 'pomosim param'. If no parameters file is defined, the default
  parameters will be used.
- Allele counts. Defined by the dataset keyword "counts". This file contains
  the simulated allele counts in the form of a tab-delimited file. It is
  created by the command 'pomosim run'.
- Species tree. Defined by the dataset keyword "trees". This file contains
  the simulated species tree in the form of a tab-delimited file. It is
  created by the commands 'pomosim run' and 'pomosim tree'.
	`,
}

var paramsGuide = &command.Command{
	Usage: "params",
	Short: "about simulation parameters file",
	Long: `
The parameters of a simulation are stored in a tab-delimited file with the
following columns:

	- parameter  the name of the parameter
	- value      the value of the parameter, multiple values are
	             separated by commas

Here is an example file with the default values:

	# pomosim parameters
	parameter	value
	sample-counts	1,1,1,1
	sites	100
	seed	0
	base-freqs	0.25,0.25,0.25
	r-mat	1,1,1,1,1,1
	pop-size	4
	node-depths	1,2,3,4
	introgress-prob	1
	mixing-wts	0.5,0.5
	rate-func	gamma
	gamma	0
	rate-cats	4

The valid parameters are:

- sample-counts: the number of individuals sampled from taxa A, B, C, and D.
  Each value must be between 0 and pop-size.
- sites: the number of simulated sites.
- seed: the seed of the random number generator. If 0, the generator is
  seeded from a random source, and the seed used is reported by the command
  'pomosim run'.
- base-freqs: the mutational base frequencies of A, C, and G. The frequency
  of T is 1 minus their sum.
- r-mat: the exchangeabilities of the mutation model, in the order AC, AG,
  AT, CG, CT, and GT.
- pop-size: the virtual population size of the PoMo model.
- node-depths: the depths of the hybridization node (the split of A and B),
  the sister group node (the split of (A,B) and C), the ingroup node (the
  split of (A,B,C) and D), and the root. Depths must be positive and
  strictly increasing.
- introgress-prob: the probability that a site is affected by introgression.
- mixing-wts: the expected fraction of migrants into B (coming from C), and
  into C (coming from B), at an introgressed site.
- rate-func: the distribution of rates across sites. Valid values are
  "gamma" (with alpha and beta set as equal) and "lognormal" (with a mean
  of 1).
- gamma: the parameter of the distribution of rates across sites, the shape
  for a gamma, and sigma for a lognormal. If 0, all sites evolve at the same
  rate.
- rate-cats: the number of discrete categories for the rates across sites.
	`,
}

var countsGuide = &command.Command{
	Usage: "counts",
	Short: "about allele counts files",
	Long: `
Simulated allele counts are stored in a tab-delimited file in the format of
PoMo counts files. The first line indicates the number of populations and
sites, and it is followed by a header with the following columns:

	- CHROM  the name of the chromosome or locus
	- POS    the position of the site
	- A      the counts of taxon A
	- B      the counts of taxon B
	- C      the counts of taxon C
	- D      the counts of taxon D

Each taxon cell contains the number of sampled individuals with each base, in
the order A, C, G, and T, separated by commas.

Here is an example file:

	# pomosim counts
	COUNTSFILE	NPOP	4	NSITES	2
	CHROM	POS	A	B	C	D
	sim	1	1,0,0,0	1,0,0,0	0,1,0,0	0,1,0,0
	sim	2	0,0,2,0	0,0,1,1	0,0,0,1	0,0,0,1

In a pomosim project, the file that contains the counts is indicated with the
"counts" keyword.
	`,
}
