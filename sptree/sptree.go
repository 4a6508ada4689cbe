// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sptree implements the species tree
// of four taxa, (((A,B),C),D),
// with an hybridization event
// between the lineages leading to B and C,
// and the simulation of PoMo states along that tree.
package sptree

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/js-arias/timetree"
)

// ErrInvalidTree is returned when the node depths
// do not define a valid tree.
var ErrInvalidTree = errors.New("invalid tree")

// DepthUnit is the number of ticks
// in a unit of depth.
// Node ages in the tree are stored in ticks.
const DepthUnit = 1_000_000

// Name is the name used for the species tree.
const Name = "pomo introgression"

// Taxon is one of the terminals of the tree.
type Taxon int

// Taxa of the tree.
const (
	A Taxon = iota
	B
	C
	D
)

// NumTaxa is the number of terminals in the tree.
const NumTaxa = 4

// String returns the name of the taxon.
func (tx Taxon) String() string {
	switch tx {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	case D:
		return "D"
	}
	return fmt.Sprintf("Taxon(%d)", int(tx))
}

// Depths are the depths of the internal nodes of the tree.
type Depths struct {
	// Hyb is the depth of the hybridization node,
	// the split between A and B.
	Hyb float64

	// Sis is the depth of the sister group node,
	// the split between (A,B) and C.
	Sis float64

	// Ingroup is the depth of the ingroup node,
	// the split between (A,B,C) and D.
	Ingroup float64

	// Root is the depth of the root,
	// at the start of the stem of the ingroup.
	Root float64
}

// Ticks returns a depth in ticks of the tree file.
// It returns false if the depth can not be represented
// as an age of the tree file.
func Ticks(v float64) (int64, bool) {
	x := math.Round(v * DepthUnit)
	if math.IsNaN(x) || x < 0 || x >= math.MaxInt64 {
		return 0, false
	}
	return int64(x), true
}

func ticksToDepth(v int64) float64 {
	return float64(v) / DepthUnit
}

// Check returns an error if depths
// are not positive and strictly increasing.
func (d Depths) Check() error {
	v := []float64{d.Hyb, d.Sis, d.Ingroup, d.Root}
	names := []string{"hybridization", "sister group", "ingroup", "root"}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
			return fmt.Errorf("%w: %s depth %v: must be positive", ErrInvalidTree, names[i], x)
		}
		if i == 0 {
			continue
		}
		if x <= v[i-1] {
			return fmt.Errorf("%w: %s depth %v: must be greater than %s depth %v", ErrInvalidTree, names[i], x, names[i-1], v[i-1])
		}
	}
	return nil
}

// Tree is the species tree.
type Tree struct {
	d Depths

	// time tree used to export the tree
	coll *timetree.Collection
	t    *timetree.Tree
	err  error

	ingroup int
	sis     int
	hyb     int
	tips    [NumTaxa]int
}

// New creates a new species tree
// with the given node depths.
//
// Branch lengths are taken from the depths.
// The depths are also stored as a time tree
// with ages in ticks;
// if the depths can not be represented in ticks
// the tree is still valid for a simulation,
// but it can not be exported (see Tree.Err).
func New(d Depths) (*Tree, error) {
	if err := d.Check(); err != nil {
		return nil, err
	}

	t := &Tree{d: d}
	if err := t.build(); err != nil {
		t.coll = nil
		t.t = nil
		t.err = err
	}
	return t, nil
}

// Build builds the time tree.
func (t *Tree) build() error {
	v := []float64{t.d.Hyb, t.d.Sis, t.d.Ingroup}
	var ticks [3]int64
	for i, x := range v {
		tk, ok := Ticks(x)
		if !ok {
			return fmt.Errorf("depth %v: out of the range of the tree file", x)
		}
		if tk < 1 || (i > 0 && tk <= ticks[i-1]) {
			return fmt.Errorf("depth %v: closer than %v to the previous node, the resolution of the tree file", x, ticksToDepth(1))
		}
		ticks[i] = tk
	}

	hyb := ticksToDepth(ticks[0])
	lenAB := ticksToDepth(ticks[1] - ticks[0])
	sis := ticksToDepth(ticks[1])
	lenABC := ticksToDepth(ticks[2] - ticks[1])
	ingroup := ticksToDepth(ticks[2])
	nwk := fmt.Sprintf("(((A:%.6f,B:%.6f):%.6f,C:%.6f):%.6f,D:%.6f);",
		hyb, hyb, lenAB, sis, lenABC, ingroup)

	// the root age is taken from the longest path,
	// the exact ages are set later.
	coll, err := timetree.Newick(strings.NewReader(nwk), Name, 0)
	if err != nil {
		return err
	}
	names := coll.Names()
	if len(names) != 1 {
		return fmt.Errorf("got %d trees", len(names))
	}

	t.coll = coll
	t.t = coll.Tree(names[0])
	if err := t.setNodes(); err != nil {
		return err
	}
	return t.setAges(ticks)
}

// SetNodes identifies the nodes of the tree.
func (t *Tree) setNodes() error {
	t.ingroup = t.t.Root()

	var ok bool
	t.tips[D], t.sis, ok = t.split(t.ingroup, D.String())
	if !ok {
		return fmt.Errorf("ingroup node without terminal %s", D)
	}
	t.tips[C], t.hyb, ok = t.split(t.sis, C.String())
	if !ok {
		return fmt.Errorf("sister group node without terminal %s", C)
	}

	children := t.t.Children(t.hyb)
	if len(children) != 2 {
		return fmt.Errorf("hybridization node with %d descendants", len(children))
	}
	for _, c := range children {
		if !t.t.IsTerm(c) {
			return errors.New("hybridization node with an internal descendant")
		}
		switch {
		case strings.EqualFold(t.t.Taxon(c), A.String()):
			t.tips[A] = c
		case strings.EqualFold(t.t.Taxon(c), B.String()):
			t.tips[B] = c
		default:
			return fmt.Errorf("unknown terminal %q", t.t.Taxon(c))
		}
	}
	if t.tips[A] == t.tips[B] {
		return fmt.Errorf("terminals %s and %s not found", A, B)
	}
	return nil
}

// Split returns the terminal with the given name
// and the internal node
// descendants of a node.
func (t *Tree) split(n int, term string) (tip, node int, ok bool) {
	children := t.t.Children(n)
	if len(children) != 2 {
		return 0, 0, false
	}
	tip, node = children[0], children[1]
	if !t.t.IsTerm(tip) {
		tip, node = node, tip
	}
	if !t.t.IsTerm(tip) || t.t.IsTerm(node) {
		return 0, 0, false
	}
	if !strings.EqualFold(t.t.Taxon(tip), term) {
		return 0, 0, false
	}
	return tip, node, true
}

// SetAges sets the node ages to the exact ticks
// (newick branch lengths might be rounded).
func (t *Tree) setAges(ticks [3]int64) error {
	for _, tip := range t.tips {
		if err := t.t.Set(tip, 0); err != nil {
			return err
		}
	}
	ages := []struct {
		id  int
		age int64
	}{
		{t.hyb, ticks[0]},
		{t.sis, ticks[1]},
		{t.ingroup, ticks[2]},
	}
	for _, a := range ages {
		if t.t.Age(a.id) == a.age {
			continue
		}
		if err := t.t.Set(a.id, a.age); err != nil {
			return err
		}
	}
	return nil
}

// Depths returns the node depths of the tree.
func (t *Tree) Depths() Depths {
	return t.d
}

// Err returns the error found
// when the depths were stored as a time tree.
// If it is not nil,
// the tree can not be exported.
func (t *Tree) Err() error {
	return t.err
}

// Age returns the age of a node of the time tree
// in depth units.
func (t *Tree) Age(id int) float64 {
	if t.t == nil {
		return 0
	}
	return ticksToDepth(t.t.Age(id))
}

// Stem returns the length of the stem branch,
// from the root to the ingroup node.
func (t *Tree) Stem() float64 {
	return t.d.Root - t.d.Ingroup
}

// Lengths returns the lengths of the branches
// used in the simulation:
// the stem,
// the branch to the outgroup,
// the branch to the sister group,
// the branches from the sister group to the hybridization depth,
// and the terminal branches after the hybridization.
func (t *Tree) Lengths() Lengths {
	return Lengths{
		Stem:     t.Stem(),
		Outgroup: t.d.Ingroup,
		Clade:    t.d.Ingroup - t.d.Sis,
		Sister:   t.d.Sis - t.d.Hyb,
		Terminal: t.d.Hyb,
	}
}

// Branches returns the distinct branch lengths
// of the tree,
// in increasing order.
func (t *Tree) Branches() []float64 {
	l := t.Lengths()
	b := []float64{l.Stem, l.Outgroup, l.Clade, l.Sister, l.Terminal}
	slices.Sort(b)
	return slices.Compact(b)
}

// Lengths are the branch lengths of the species tree.
type Lengths struct {
	Stem     float64
	Outgroup float64
	Clade    float64
	Sister   float64
	Terminal float64
}

// Timetree returns the underlying time tree
// (it does not include the stem).
// It returns nil if the tree can not be exported.
func (t *Tree) Timetree() *timetree.Tree {
	return t.t
}

// Node returns the ID of a terminal
// in the time tree.
func (t *Tree) Node(tx Taxon) int {
	return t.tips[tx]
}

// TSV writes the tree as a tab-delimited tree file.
func (t *Tree) TSV(w io.Writer) error {
	if t.err != nil {
		return t.err
	}
	return t.coll.TSV(w)
}

// WriteFile writes the tree
// into a file with the given name.
func (t *Tree) WriteFile(name string) (err error) {
	if t.err != nil {
		return fmt.Errorf("unable to write tree file %q: %v", name, t.err)
	}

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

	if err := t.coll.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
