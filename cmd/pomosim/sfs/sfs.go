// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sfs implements a command to calculate
// the site frequency spectrum of simulated counts.
package sfs

import (
	"fmt"
	"io"
	"strconv"

	"github.com/js-arias/blind"
	"github.com/js-arias/command"
	"github.com/js-arias/pomosim/counts"
	"github.com/js-arias/pomosim/project"
	"github.com/js-arias/pomosim/sptree"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `sfs [-o|--output <prefix>] [--counts <file>] <project-file>`,
	Short: "site frequency spectrum of simulated counts",
	Long: `
Command sfs reads the allele counts of a pomosim project and prints the folded
site frequency spectrum of each taxon in the standard output. The spectrum is
the number of sites in which the minor allele is found in a given number of
sampled individuals. Taxa without samples are ignored.

The argument of the command is the name of the project file.

By default, the counts file of the project will be used. Use the flag
--counts to use a different counts file.

A bar plot of the spectra will be stored in a PNG file. By default, the file
name will be 'sfs.png'. Use the flag --output, or -o, to define a different
prefix for the file name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var countsFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "sfs", "")
	c.Flags().StringVar(&output, "o", "sfs", "")
	c.Flags().StringVar(&countsFile, "counts", "", "")
}

type spectrum struct {
	taxon sptree.Taxon
	sfs   []int
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	sites, err := readCounts(args[0])
	if err != nil {
		return err
	}

	var spp []spectrum
	for tx := sptree.A; tx <= sptree.D; tx++ {
		if sites[0].Draws[tx].Size() == 0 {
			continue
		}
		sfs, err := counts.SFS(sites, tx)
		if err != nil {
			return err
		}
		spp = append(spp, spectrum{taxon: tx, sfs: sfs})
	}
	if len(spp) == 0 {
		return fmt.Errorf("counts without samples")
	}

	printSFS(c.Stdout(), sites, spp)

	name := output + ".png"
	if err := plotSFS(name, spp); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

func readCounts(name string) ([]counts.Site, error) {
	if countsFile != "" {
		return counts.ReadFile(countsFile)
	}
	p, err := project.Read(name)
	if err != nil {
		return nil, err
	}
	return p.Counts()
}

func printSFS(w io.Writer, sites []counts.Site, spp []spectrum) {
	fmt.Fprintf(w, "taxon\tminor\tsites\n")
	for _, sp := range spp {
		x := make([]float64, len(sp.sfs))
		wt := make([]float64, len(sp.sfs))
		for i, v := range sp.sfs {
			x[i] = float64(i)
			wt[i] = float64(v)
			fmt.Fprintf(w, "%s\t%d\t%d\n", sp.taxon, i, v)
		}
		mean := stat.Mean(x, wt)
		poly := counts.Polymorphic(sites, sp.taxon)
		fmt.Fprintf(w, "# %s: polymorphic sites %.6f, mean minor count %.6f\n", sp.taxon, poly, mean)
	}
}

func plotSFS(name string, spp []spectrum) error {
	var size int
	for _, sp := range spp {
		size = max(size, len(sp.sfs))
	}

	p := plot.New()
	p.X.Label.Text = "minor allele count"
	p.Y.Label.Text = "sites"
	p.Legend.Top = true

	w := vg.Points(40 / float64(len(spp)))
	for i, sp := range spp {
		v := make(plotter.Values, size)
		for j, x := range sp.sfs {
			v[j] = float64(x)
		}
		bars, err := plotter.NewBarChart(v, w)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = blind.Sequential(blind.Iridescent, float64(sp.taxon)/(sptree.NumTaxa-1))
		bars.Offset = w * vg.Length(i-len(spp)/2)
		p.Add(bars)
		p.Legend.Add(sp.taxon.String(), bars)
	}

	labels := make([]string, size)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	p.NominalX(labels...)

	return p.Save(6*vg.Inch, 4*vg.Inch, name)
}
