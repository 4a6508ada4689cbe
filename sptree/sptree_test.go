// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sptree_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/pomosim/introgress"
	"github.com/js-arias/pomosim/pomo"
	"github.com/js-arias/pomosim/rates"
	"github.com/js-arias/pomosim/sptree"
	"github.com/js-arias/timetree"
	"golang.org/x/exp/rand"
)

func TestTree(t *testing.T) {
	d := sptree.Depths{Hyb: 0.5, Sis: 1.25, Ingroup: 3, Root: 4.5}
	tr, err := sptree.New(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tt := tr.Timetree()
	for tx := sptree.A; tx <= sptree.D; tx++ {
		id := tr.Node(tx)
		if !tt.IsTerm(id) {
			t.Errorf("taxon %s: node %d is not a terminal", tx, id)
		}
		if age := tr.Age(id); age != 0 {
			t.Errorf("taxon %s: got age %.6f, want 0", tx, age)
		}
	}
	if p := tt.Parent(tr.Node(sptree.A)); p != tt.Parent(tr.Node(sptree.B)) {
		t.Errorf("taxa A and B are not sisters")
	}
	if age := tr.Age(tt.Parent(tr.Node(sptree.A))); math.Abs(age-d.Hyb) > 1e-9 {
		t.Errorf("hybridization age: got %.6f, want %.6f", age, d.Hyb)
	}
	if age := tr.Age(tt.Parent(tr.Node(sptree.C))); math.Abs(age-d.Sis) > 1e-9 {
		t.Errorf("sister group age: got %.6f, want %.6f", age, d.Sis)
	}
	if age := tr.Age(tt.Root()); math.Abs(age-d.Ingroup) > 1e-9 {
		t.Errorf("ingroup age: got %.6f, want %.6f", age, d.Ingroup)
	}

	want := sptree.Lengths{
		Stem:     1.5,
		Outgroup: 3,
		Clade:    1.75,
		Sister:   0.75,
		Terminal: 0.5,
	}
	got := tr.Lengths()
	for _, v := range []struct {
		name      string
		got, want float64
	}{
		{"stem", got.Stem, want.Stem},
		{"outgroup", got.Outgroup, want.Outgroup},
		{"clade", got.Clade, want.Clade},
		{"sister", got.Sister, want.Sister},
		{"terminal", got.Terminal, want.Terminal},
	} {
		if math.Abs(v.got-v.want) > 1e-9 {
			t.Errorf("%s branch: got %.6f, want %.6f", v.name, v.got, v.want)
		}
	}

	var buf bytes.Buffer
	if err := tr.TSV(&buf); err != nil {
		t.Fatalf("unable to write tree: %v", err)
	}
	if buf.Len() == 0 {
		t.Errorf("empty tree output")
	}
}

func TestInvalidTree(t *testing.T) {
	tests := map[string]sptree.Depths{
		"hyb equal sis":      {Hyb: 1, Sis: 1, Ingroup: 2, Root: 3},
		"sis after ingroup":  {Hyb: 1, Sis: 3, Ingroup: 2, Root: 4},
		"root equal ingroup": {Hyb: 1, Sis: 2, Ingroup: 3, Root: 3},
		"zero hyb":           {Hyb: 0, Sis: 2, Ingroup: 3, Root: 4},
		"negative":           {Hyb: -1, Sis: 2, Ingroup: 3, Root: 4},
		"nan":                {Hyb: 1, Sis: math.NaN(), Ingroup: 3, Root: 4},
	}
	for name, d := range tests {
		if _, err := sptree.New(d); !errors.Is(err, sptree.ErrInvalidTree) {
			t.Errorf("%s: got error %v, want %v", name, err, sptree.ErrInvalidTree)
		}
	}
}

func TestShortDepths(t *testing.T) {
	tests := map[string]struct {
		d    sptree.Depths
		want sptree.Lengths
	}{
		"tiny": {
			d:    sptree.Depths{Hyb: 1e-7, Sis: 2e-7, Ingroup: 3e-7, Root: 4e-7},
			want: sptree.Lengths{Stem: 1e-7, Outgroup: 3e-7, Clade: 1e-7, Sister: 1e-7, Terminal: 1e-7},
		},
		"near tie": {
			d:    sptree.Depths{Hyb: 1, Sis: 1.0000001, Ingroup: 3, Root: 4},
			want: sptree.Lengths{Stem: 1, Outgroup: 3, Clade: 1.9999999, Sister: 1e-7, Terminal: 1},
		},
	}

	for name, test := range tests {
		tr, err := sptree.New(test.d)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		got := tr.Lengths()
		for _, v := range []struct {
			name      string
			got, want float64
		}{
			{"stem", got.Stem, test.want.Stem},
			{"outgroup", got.Outgroup, test.want.Outgroup},
			{"clade", got.Clade, test.want.Clade},
			{"sister", got.Sister, test.want.Sister},
			{"terminal", got.Terminal, test.want.Terminal},
		} {
			if v.got <= 0 || math.Abs(v.got-v.want) > 1e-6*v.want {
				t.Errorf("%s: %s branch: got %g, want %g", name, v.name, v.got, v.want)
			}
		}

		// the depths are below the resolution of the tree file
		if tr.Err() == nil {
			t.Errorf("%s: expecting export error", name)
		}
		if tr.Timetree() != nil {
			t.Errorf("%s: expecting no time tree", name)
		}
		var buf bytes.Buffer
		if err := tr.TSV(&buf); err == nil {
			t.Errorf("%s: writing tree: expecting error", name)
		}

		q, err := rates.New([4]float64{0.25, 0.25, 0.25, 0.25}, [6]float64{1, 1, 1, 1, 1, 1})
		if err != nil {
			t.Fatalf("unable to build rate model: %v", err)
		}
		c, err := pomo.NewChain(q, 4)
		if err != nil {
			t.Fatalf("unable to build chain: %v", err)
		}
		if _, err := sptree.NewSimulator(tr, c, introgress.Param{}, nil); err != nil {
			t.Errorf("%s: unable to build simulator: %v", name, err)
		}
	}
}

func TestDeepRoot(t *testing.T) {
	d := sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 3, Root: 1e13}
	tr, err := sptree.New(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := tr.Stem(); s != 1e13-3 {
		t.Errorf("stem: got %g, want %g", s, 1e13-3)
	}
	if err := tr.Err(); err != nil {
		t.Errorf("unexpected export error: %v", err)
	}

	// ingroup age outside of the range of the tree file
	d = sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 1e13, Root: 2e13}
	tr, err = sptree.New(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l := tr.Lengths(); l.Clade != 1e13-2 || l.Stem != 1e13 {
		t.Errorf("lengths: got %+v", l)
	}
	err = tr.Err()
	if err == nil {
		t.Fatalf("expecting export error")
	}
	if !strings.Contains(err.Error(), "out of the range") {
		t.Errorf("export error: got %q", err)
	}
}

func TestBranches(t *testing.T) {
	tests := map[string]struct {
		d    sptree.Depths
		want []float64
	}{
		"default": {
			d:    sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 3, Root: 4},
			want: []float64{1, 3},
		},
		"all distinct": {
			d:    sptree.Depths{Hyb: 0.5, Sis: 1.25, Ingroup: 3, Root: 4.5},
			want: []float64{0.5, 0.75, 1.5, 1.75, 3},
		},
	}
	for name, test := range tests {
		tr, err := sptree.New(test.d)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got := tr.Branches(); !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: branches: got %v, want %v", name, got, test.want)
		}
	}

	tr, err := sptree.New(tests["default"].d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, err := rates.New([4]float64{0.25, 0.25, 0.25, 0.25}, [6]float64{1, 1, 1, 1, 1, 1})
	if err != nil {
		t.Fatalf("unable to build rate model: %v", err)
	}
	c, err := pomo.NewChain(q, 4)
	if err != nil {
		t.Fatalf("unable to build chain: %v", err)
	}

	catTests := map[string]struct {
		cats []float64
		want int
	}{
		"single rate": {nil, 2},
		// 0.5, 1.5, 1, 3, 1.5, 4.5
		"three cats": {[]float64{0.5, 1, 1.5}, 5},
	}
	for name, test := range catTests {
		s, err := sptree.NewSimulator(tr, c, introgress.Param{}, test.cats)
		if err != nil {
			t.Fatalf("%s: unable to build simulator: %v", name, err)
		}
		if n := s.NumBranches(); n != test.want {
			t.Errorf("%s: got %d transition matrices, want %d", name, n, test.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	d := sptree.Depths{Hyb: 0.5, Sis: 1.25, Ingroup: 3, Root: 4.5}
	tr, err := sptree.New(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := "tmp-tree-for-test.tab"
	defer os.Remove(name)
	if err := tr.WriteFile(name); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	defer f.Close()
	c, err := timetree.ReadTSV(f)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	tt := c.Tree(sptree.Name)
	if tt == nil {
		t.Fatalf("tree %q not found", sptree.Name)
	}
	if age := tt.Age(tt.Root()); age != 3*sptree.DepthUnit {
		t.Errorf("root age: got %d, want %d", age, 3*sptree.DepthUnit)
	}
	if n := len(tt.Terms()); n != sptree.NumTaxa {
		t.Errorf("terminals: got %d, want %d", n, sptree.NumTaxa)
	}

	tiny, err := sptree.New(sptree.Depths{Hyb: 1e-7, Sis: 2e-7, Ingroup: 3e-7, Root: 4e-7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tiny.WriteFile(name); err == nil {
		t.Errorf("tiny depths: expecting error")
	}
}

func newSimulator(t testing.TB, d sptree.Depths, p introgress.Param, n int) *sptree.Simulator {
	t.Helper()

	tr, err := sptree.New(d)
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	q, err := rates.New([4]float64{0.2, 0.3, 0.3, 0.2}, [6]float64{1, 1, 1, 1, 1, 1})
	if err != nil {
		t.Fatalf("unable to build rate model: %v", err)
	}
	c, err := pomo.NewChain(q, n)
	if err != nil {
		t.Fatalf("unable to build chain: %v", err)
	}
	s, err := sptree.NewSimulator(tr, c, p, nil)
	if err != nil {
		t.Fatalf("unable to build simulator: %v", err)
	}
	return s
}

func TestSiteNoIntrogression(t *testing.T) {
	d := sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 3, Root: 4}
	s := newSimulator(t, d, introgress.Param{Phi: 0, GammaB: 0.5, GammaC: 0.5}, 4)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		h := s.Site(rng)
		if h.Introgressed {
			t.Fatalf("site %d: introgressed with phi = 0", i)
		}
		if h.States[sptree.MixB] != h.States[sptree.Hyb] {
			t.Errorf("site %d: B lineage: got %v, want %v", i, h.States[sptree.MixB], h.States[sptree.Hyb])
		}
		if h.States[sptree.MixC] != h.States[sptree.PreC] {
			t.Errorf("site %d: C lineage: got %v, want %v", i, h.States[sptree.MixC], h.States[sptree.PreC])
		}
	}
}

func TestSiteSwap(t *testing.T) {
	d := sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 3, Root: 4}
	s := newSimulator(t, d, introgress.Param{Phi: 1, GammaB: 1, GammaC: 1}, 4)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		h := s.Site(rng)
		if !h.Introgressed {
			t.Fatalf("site %d: not introgressed with phi = 1", i)
		}
		if h.States[sptree.MixB] != h.States[sptree.PreC] {
			t.Errorf("site %d: B lineage: got %v, want %v", i, h.States[sptree.MixB], h.States[sptree.PreC])
		}
		if h.States[sptree.MixC] != h.States[sptree.Hyb] {
			t.Errorf("site %d: C lineage: got %v, want %v", i, h.States[sptree.MixC], h.States[sptree.Hyb])
		}
	}
}

func TestSiteReproducible(t *testing.T) {
	d := sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 3, Root: 4}
	s := newSimulator(t, d, introgress.Param{Phi: 0.5, GammaB: 0.3, GammaC: 0.6}, 6)

	r1 := rand.New(rand.NewSource(99))
	r2 := rand.New(rand.NewSource(99))
	for i := 0; i < 200; i++ {
		h1 := s.Site(r1)
		h2 := s.Site(r2)
		if h1 != h2 {
			t.Fatalf("site %d: got different histories", i)
		}
	}
}

func TestSiteStationary(t *testing.T) {
	d := sptree.Depths{Hyb: 100, Sis: 200, Ingroup: 300, Root: 400}
	s := newSimulator(t, d, introgress.Param{}, 4)
	st := s.Chain().Stationary()
	sp := s.Chain().Space()

	const reps = 20_000
	freq := make([]float64, sp.Len())
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < reps; i++ {
		h := s.Site(rng)
		for tx := sptree.A; tx <= sptree.D; tx++ {
			freq[sp.Index(h.Tip(tx))]++
		}
	}

	// monomorphic states
	gotPoly, wantPoly := 1.0, 1.0
	for b := rates.A; b <= rates.T; b++ {
		j := sp.Index(pomo.Fixed(b))
		got := freq[j] / (reps * sptree.NumTaxa)
		p := st[j]
		// tips of the same site are not independent
		tol := 10 * math.Sqrt(p*(1-p)/reps)
		if math.Abs(got-p) > tol {
			t.Errorf("fixed %s: got %.4f, want %.4f", b, got, p)
		}
		gotPoly -= got
		wantPoly -= p
	}

	// polymorphic states
	var sum float64
	for j := 0; j < sp.Len(); j++ {
		if !sp.State(j).Monomorphic() {
			sum += st[j]
		}
	}
	if math.Abs(sum-wantPoly) > 1e-9 {
		t.Errorf("stationary polymorphic mass: got %.6f, want %.6f", sum, wantPoly)
	}
	tol := 10 * math.Sqrt(wantPoly*(1-wantPoly)/reps)
	if math.Abs(gotPoly-wantPoly) > tol {
		t.Errorf("polymorphic: got %.4f, want %.4f", gotPoly, wantPoly)
	}
}

func TestRateCategories(t *testing.T) {
	d := sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 3, Root: 4}
	tr, err := sptree.New(d)
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	q, err := rates.New([4]float64{0.25, 0.25, 0.25, 0.25}, [6]float64{1, 1, 1, 1, 1, 1})
	if err != nil {
		t.Fatalf("unable to build rate model: %v", err)
	}
	c, err := pomo.NewChain(q, 4)
	if err != nil {
		t.Fatalf("unable to build chain: %v", err)
	}
	cats := []float64{0.5, 1, 1.5}
	s, err := sptree.NewSimulator(tr, c, introgress.Param{}, cats)
	if err != nil {
		t.Fatalf("unable to build simulator: %v", err)
	}

	const reps = 30_000
	count := make([]float64, len(cats))
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < reps; i++ {
		h := s.Site(rng)
		count[h.Cat]++
	}
	for i, v := range count {
		if got := v / reps; math.Abs(got-1.0/3) > 0.02 {
			t.Errorf("category %d: got %.4f, want %.4f", i, got, 1.0/3)
		}
	}

	if _, err := sptree.NewSimulator(tr, c, introgress.Param{}, []float64{-1}); err == nil {
		t.Errorf("negative rate: expecting error")
	}
}
