// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package counts

import (
	"fmt"

	"github.com/js-arias/pomosim/rates"
	"github.com/js-arias/pomosim/sptree"
)

// SFS returns the folded site frequency spectrum
// of a taxon.
//
// The spectrum is the number of sites
// at which the minor allele is found
// in i individuals,
// with i from 0 to half the sample size.
// All sites must have the same sample size
// and at most two alleles in the taxon.
func SFS(sites []Site, tx sptree.Taxon) ([]int, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("taxon %s: without sites", tx)
	}

	n := sites[0].Draws[tx].Size()
	if n == 0 {
		return nil, fmt.Errorf("taxon %s: without samples", tx)
	}
	sfs := make([]int, n/2+1)
	for _, s := range sites {
		d := s.Draws[tx]
		if d.Size() != n {
			return nil, fmt.Errorf("taxon %s: site %s:%d: sample size %d, want %d", tx, s.Chrom, s.Pos, d.Size(), n)
		}
		al := d.Alleles()
		if len(al) > 2 {
			return nil, fmt.Errorf("taxon %s: site %s:%d: %d alleles", tx, s.Chrom, s.Pos, len(al))
		}
		minor := 0
		if len(al) == 2 {
			minor = min(d.Counts[al[0]], d.Counts[al[1]])
		}
		sfs[minor]++
	}
	return sfs, nil
}

// Polymorphic returns the fraction of sites
// in which a taxon has two alleles.
func Polymorphic(sites []Site, tx sptree.Taxon) float64 {
	if len(sites) == 0 {
		return 0
	}
	var p float64
	for _, s := range sites {
		if len(s.Draws[tx].Alleles()) > 1 {
			p++
		}
	}
	return p / float64(len(sites))
}

// DStat is the result of an ABBA-BABA test.
type DStat struct {
	// Sites is the number of sites used in the test.
	Sites int

	// ABBA and BABA are the sum of the pattern frequencies.
	ABBA float64
	BABA float64
}

// D returns Patterson's D statistic.
// It is zero if there are no informative sites.
func (d DStat) D() float64 {
	if d.ABBA+d.BABA == 0 {
		return 0
	}
	return (d.ABBA - d.BABA) / (d.ABBA + d.BABA)
}

// Patterson calculates the ABBA-BABA test
// on the tree (((A,B),C),D),
// using D as the outgroup.
//
// The ancestral allele of a site
// is the most frequent base in the outgroup
// (the first base in A, C, G, T order on ties),
// and the derived allele is the other base found at the site.
// Only sites sampled in all taxa
// and with at most two bases in total
// are used.
// Patterns are weighted by the derived allele frequencies
// of each taxon.
func Patterson(sites []Site) DStat {
	var ds DStat
	for _, s := range sites {
		var total [rates.NumBases]int
		ok := true
		for _, d := range s.Draws {
			if d.Size() == 0 {
				ok = false
				break
			}
			for b, c := range d.Counts {
				total[b] += c
			}
		}
		if !ok {
			continue
		}

		var bases []rates.Base
		for b, c := range total {
			if c > 0 {
				bases = append(bases, rates.Base(b))
			}
		}
		if len(bases) > 2 {
			continue
		}
		ds.Sites++
		if len(bases) < 2 {
			continue
		}

		out := s.Draws[sptree.D].Counts
		anc, der := bases[0], bases[1]
		if out[der] > out[anc] {
			anc, der = der, anc
		}

		var p [sptree.NumTaxa]float64
		for tx, d := range s.Draws {
			p[tx] = float64(d.Counts[der]) / float64(d.Size())
		}
		ds.ABBA += (1 - p[sptree.A]) * p[sptree.B] * p[sptree.C] * (1 - p[sptree.D])
		ds.BABA += p[sptree.A] * (1 - p[sptree.B]) * p[sptree.C] * (1 - p[sptree.D])
	}
	return ds
}
