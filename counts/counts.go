// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package counts implements reading and writing
// of allele counts files,
// and summary statistics of the counts.
//
// A counts file is a tab-delimited file (TSV)
// in the layout used by PoMo implementations:
// an optional COUNTSFILE line,
// a header with the CHROM and POS columns
// followed by a column for each taxon,
// and a row for each site
// in which each taxon cell stores the number of sampled
// individuals with each base,
// in the order A, C, G, T,
// separated by commas.
package counts

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/pomosim/sampler"
	"github.com/js-arias/pomosim/sim"
	"github.com/js-arias/pomosim/sptree"
)

// DefaultChrom is the chromosome name
// used for simulated sites.
const DefaultChrom = "sim"

// Site is the observed allele counts
// of a site.
type Site struct {
	Chrom string
	Pos   int
	Draws [sptree.NumTaxa]sampler.Draw
}

// FromOutput returns the sites of a simulation.
// Positions start at 1.
func FromOutput(out *sim.Output, chrom string) []Site {
	if chrom == "" {
		chrom = DefaultChrom
	}
	sites := make([]Site, len(out.Sites))
	for i, s := range out.Sites {
		sites[i] = Site{
			Chrom: chrom,
			Pos:   i + 1,
			Draws: s.Draws,
		}
	}
	return sites
}

var header = []string{
	"chrom",
	"pos",
}

// ReadFile reads a counts file.
func ReadFile(name string) ([]Site, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sites, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return sites, nil
}

// Read reads sites from a counts TSV stream.
//
// The TSV must contain the following fields:
//
//   - CHROM, the name of the chromosome or locus
//   - POS, the position of the site
//   - A, B, C, D, the counts of each taxon
//
// Here is an example file:
//
//	# pomosim counts
//	COUNTSFILE	NPOP	4	NSITES	2
//	CHROM	POS	A	B	C	D
//	sim	1	1,0,0,0	1,0,0,0	0,1,0,0	0,1,0,0
//	sim	2	0,0,2,0	0,0,1,1	0,0,0,1	0,0,0,1
func Read(r io.Reader) ([]Site, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	if len(head) > 0 && strings.EqualFold(head[0], "COUNTSFILE") {
		head, err = tsv.Read()
		if err != nil {
			return nil, fmt.Errorf("header: %v", err)
		}
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}
	for tx := sptree.A; tx <= sptree.D; tx++ {
		if _, ok := fields[strings.ToLower(tx.String())]; !ok {
			return nil, fmt.Errorf("expecting field %q", tx.String())
		}
	}

	var sites []Site
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		if len(row) != len(head) {
			return nil, fmt.Errorf("on row %d: got %d fields, want %d", ln, len(row), len(head))
		}

		var s Site
		f := "chrom"
		s.Chrom = strings.TrimSpace(row[fields[f]])

		f = "pos"
		s.Pos, err = strconv.Atoi(strings.TrimSpace(row[fields[f]]))
		if err != nil {
			return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
		}

		for tx := sptree.A; tx <= sptree.D; tx++ {
			f = strings.ToLower(tx.String())
			d, err := sampler.ParseDraw(row[fields[f]])
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, tx, err)
			}
			s.Draws[tx] = d
		}
		sites = append(sites, s)
	}
	if len(sites) == 0 {
		return nil, errors.New("without sites")
	}
	return sites, nil
}

// WriteFile writes sites into a counts file.
func WriteFile(name string, sites []Site) (err error) {
	f, err := os.Create(name)
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
	fmt.Fprintf(bw, "# pomosim counts\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	if err := Write(bw, sites); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", name, err)
	}
	return nil
}

// Write writes sites as a counts TSV stream.
func Write(w io.Writer, sites []Site) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	cf := []string{
		"COUNTSFILE",
		"NPOP",
		strconv.Itoa(sptree.NumTaxa),
		"NSITES",
		strconv.Itoa(len(sites)),
	}
	if err := tsv.Write(cf); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	head := []string{"CHROM", "POS"}
	for tx := sptree.A; tx <= sptree.D; tx++ {
		head = append(head, tx.String())
	}
	if err := tsv.Write(head); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	for _, s := range sites {
		row := []string{
			s.Chrom,
			strconv.Itoa(s.Pos),
		}
		for _, d := range s.Draws {
			row = append(row, d.String())
		}
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
