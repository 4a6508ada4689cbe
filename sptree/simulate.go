// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sptree

import (
	"fmt"
	"math"

	"github.com/js-arias/pomosim/introgress"
	"github.com/js-arias/pomosim/pomo"
	"golang.org/x/exp/rand"
)

// Node is a point of the tree
// in which the state of a site is recorded.
type Node int

// Recorded nodes.
const (
	// Root is the root of the tree,
	// at the start of the stem.
	Root Node = iota

	// Ingroup is the split between (A,B,C) and D.
	Ingroup

	// Sister is the split between (A,B) and C.
	Sister

	// Hyb is the split between A and B,
	// it is also the state of the B lineage
	// before the hybridization.
	Hyb

	// PreC is the state of the C lineage
	// at the hybridization depth,
	// before the hybridization.
	PreC

	// MixB is the state of the B lineage
	// after the hybridization.
	MixB

	// MixC is the state of the C lineage
	// after the hybridization.
	MixC

	// Terminals.
	TipA
	TipB
	TipC
	TipD

	// NumNodes is the number of recorded nodes.
	NumNodes
)

var nodeNames = [NumNodes]string{
	"root",
	"ingroup",
	"sister",
	"hyb",
	"pre-C",
	"mix-B",
	"mix-C",
	"A",
	"B",
	"C",
	"D",
}

// String returns the name of a node.
func (n Node) String() string {
	if n < 0 || n >= NumNodes {
		return fmt.Sprintf("Node(%d)", int(n))
	}
	return nodeNames[n]
}

// Tip returns the node of a terminal.
func Tip(tx Taxon) Node {
	return TipA + Node(tx)
}

// History is the states of a site
// at the recorded nodes of the tree.
type History struct {
	// Cat is the rate category of the site.
	Cat int

	// Introgressed is true if the site
	// was affected by introgression.
	Introgressed bool

	States [NumNodes]pomo.State
}

// Tip returns the state of a terminal.
func (h History) Tip(tx Taxon) pomo.State {
	return h.States[Tip(tx)]
}

type branches struct {
	stem     *pomo.Branch
	outgroup *pomo.Branch
	clade    *pomo.Branch
	sister   *pomo.Branch
	terminal *pomo.Branch
}

// A Simulator simulates the evolution of PoMo states
// along a species tree.
// A simulator is read only,
// and can be shared by concurrent simulations
// that use different random sources.
type Simulator struct {
	tree  *Tree
	chain *pomo.Chain
	param introgress.Param
	cats  []float64
	br    []branches

	// transition probabilities
	// by scaled branch length
	cache map[float64]*pomo.Branch
}

// NewSimulator creates a new simulator
// for a tree,
// a PoMo chain,
// and introgression parameters.
//
// Cats are the relative rates of the rate categories;
// if no category is given,
// all sites evolve at the same rate.
// The transition probabilities are calculated once
// for each distinct branch length
// (scaled by the rate of the category).
func NewSimulator(t *Tree, c *pomo.Chain, p introgress.Param, cats []float64) (*Simulator, error) {
	if len(cats) == 0 {
		cats = []float64{1}
	}

	s := &Simulator{
		tree:  t,
		chain: c,
		param: p,
		cats:  cats,
		br:    make([]branches, len(cats)),
		cache: make(map[float64]*pomo.Branch),
	}

	l := t.Lengths()
	for i, r := range cats {
		if math.IsNaN(r) || r < 0 {
			return nil, fmt.Errorf("rate category %d: invalid rate %.6f", i, r)
		}
		b := &s.br[i]
		lens := []struct {
			name string
			v    float64
			b    **pomo.Branch
		}{
			{"stem", l.Stem, &b.stem},
			{"outgroup", l.Outgroup, &b.outgroup},
			{"clade", l.Clade, &b.clade},
			{"sister", l.Sister, &b.sister},
			{"terminal", l.Terminal, &b.terminal},
		}
		for _, ln := range lens {
			br, err := s.branch(ln.v * r)
			if err != nil {
				return nil, fmt.Errorf("%s branch: %v", ln.name, err)
			}
			*ln.b = br
		}
	}
	return s, nil
}

func (s *Simulator) branch(length float64) (*pomo.Branch, error) {
	if b, ok := s.cache[length]; ok {
		return b, nil
	}
	b, err := s.chain.Branch(length)
	if err != nil {
		return nil, err
	}
	s.cache[length] = b
	return b, nil
}

// NumBranches returns the number of transition matrices
// calculated by the simulator.
func (s *Simulator) NumBranches() int {
	return len(s.cache)
}

// Chain returns the PoMo chain used by the simulator.
func (s *Simulator) Chain() *pomo.Chain {
	return s.chain
}

// Tree returns the species tree used by the simulator.
func (s *Simulator) Tree() *Tree {
	return s.tree
}

// Site simulates the history of a single site.
//
// Random numbers are used in the following order:
// the rate category
// (only if there are two or more categories),
// the root state
// (from the stationary distribution),
// the stem,
// the ingroup to D branch,
// the ingroup to sister group branch,
// the sister group to hybridization branch,
// the sister group to the C lineage at the hybridization depth,
// the introgression mixing,
// and the terminal branches of A, B, and C.
func (s *Simulator) Site(rng *rand.Rand) History {
	var h History
	if len(s.cats) > 1 {
		h.Cat = int(rng.Float64() * float64(len(s.cats)))
		if h.Cat >= len(s.cats) {
			h.Cat = len(s.cats) - 1
		}
	}
	b := s.br[h.Cat]

	st := &h.States
	st[Root] = s.chain.Root(rng)
	st[Ingroup] = b.stem.Simulate(st[Root], rng)
	st[TipD] = b.outgroup.Simulate(st[Ingroup], rng)
	st[Sister] = b.clade.Simulate(st[Ingroup], rng)
	st[Hyb] = b.sister.Simulate(st[Sister], rng)
	st[PreC] = b.sister.Simulate(st[Sister], rng)

	st[MixB], st[MixC], h.Introgressed = introgress.Mix(st[Hyb], st[PreC], s.param, s.chain.N(), rng)

	st[TipA] = b.terminal.Simulate(st[Hyb], rng)
	st[TipB] = b.terminal.Simulate(st[MixB], rng)
	st[TipC] = b.terminal.Simulate(st[MixC], rng)
	return h
}
