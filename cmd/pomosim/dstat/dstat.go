// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dstat implements a command to calculate
// Patterson's D statistic of simulated counts.
package dstat

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/pomosim/counts"
	"github.com/js-arias/pomosim/project"
)

var Command = &command.Command{
	Usage: `dstat [--counts <file>] <project-file>`,
	Short: "ABBA-BABA test of simulated counts",
	Long: `
Command dstat reads the allele counts of a pomosim project and calculates
Patterson's D statistic (the ABBA-BABA test) on the tree (((A,B),C),D), using
D as the outgroup. An excess of ABBA patterns (a positive D) indicates gene
flow between B and C.

The ancestral allele of each site is the most frequent base in the outgroup,
and patterns are weighted by the frequency of the derived allele in each
taxon. Only sites sampled in all taxa and with at most two bases are used.

The argument of the command is the name of the project file.

By default, the counts file of the project will be used. Use the flag
--counts to use a different counts file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var countsFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&countsFile, "counts", "", "")
}

func run(c *command.Command, args []string) error {
	var sites []counts.Site
	if countsFile != "" {
		var err error
		sites, err = counts.ReadFile(countsFile)
		if err != nil {
			return err
		}
	} else {
		if len(args) < 1 {
			return c.UsageError("expecting project file")
		}
		p, err := project.Read(args[0])
		if err != nil {
			return err
		}
		sites, err = p.Counts()
		if err != nil {
			return err
		}
	}

	ds := counts.Patterson(sites)
	fmt.Fprintf(c.Stdout(), "sites:\t%d\n", ds.Sites)
	fmt.Fprintf(c.Stdout(), "ABBA:\t%.6f\n", ds.ABBA)
	fmt.Fprintf(c.Stdout(), "BABA:\t%.6f\n", ds.BABA)
	fmt.Fprintf(c.Stdout(), "D:\t%.6f\n", ds.D())
	return nil
}
