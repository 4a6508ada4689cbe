// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package param_test

import (
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/pomosim/param"
	"github.com/js-arias/pomosim/sptree"
)

func TestParam(t *testing.T) {
	name := "tmp-pomosim-parameters-for-test.tab"
	p := param.New(name)
	testParam(t, p, nil, name)

	if err := p.SetSampleCounts([4]int{2, 3, 4, 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetSites(1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.SetSeed(123)
	if err := p.SetBaseFreqs([3]float64{0.2, 0.3, 0.3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetRMat([6]float64{1, 2, 1, 1, 2, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetPopSize(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetNodeDepths(sptree.Depths{Hyb: 0.5, Sis: 1.5, Ingroup: 2.5, Root: 6}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetIntrogressProb(0.25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetMixingWts(0.1, 0.9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetGamma(0.8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetRateFunc("LogNormal"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetRateCats(6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer os.Remove(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := param.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testParam(t, np, p, name)
}

func testParam(t testing.TB, p, want *param.P, name string) {
	t.Helper()

	if want == nil {
		want = param.New(name)
	}

	if p.Name() != want.Name() {
		t.Errorf("name: got %q, want %q", p.Name(), want.Name())
	}
	if !reflect.DeepEqual(p.Config(), want.Config()) {
		t.Errorf("config: got %+v, want %+v", p.Config(), want.Config())
	}
}

func TestDefaults(t *testing.T) {
	p := param.New("")
	cfg := p.Config()

	if cfg.SampleCounts != [4]int{1, 1, 1, 1} {
		t.Errorf("sample-counts: got %v", cfg.SampleCounts)
	}
	if cfg.Sites != 100 {
		t.Errorf("sites: got %d, want 100", cfg.Sites)
	}
	if cfg.Seed != 0 {
		t.Errorf("seed: got %d, want 0", cfg.Seed)
	}
	if cfg.Freqs != [4]float64{0.25, 0.25, 0.25, 0.25} {
		t.Errorf("base-freqs: got %v", cfg.Freqs)
	}
	if cfg.N != 4 {
		t.Errorf("pop-size: got %d, want 4", cfg.N)
	}
	want := sptree.Depths{Hyb: 1, Sis: 2, Ingroup: 3, Root: 4}
	if cfg.Depths != want {
		t.Errorf("node-depths: got %v, want %v", cfg.Depths, want)
	}
	if cfg.Phi != 1 || cfg.GammaB != 0.5 || cfg.GammaC != 0.5 {
		t.Errorf("introgression: got %v", cfg.Introgression())
	}
	if r, err := cfg.Rates(); err != nil || r != nil {
		t.Errorf("rates: got %v (error %v), want no categories", r, err)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("validate: unexpected error: %v", err)
	}
}

func TestReadTSV(t *testing.T) {
	in := `# pomosim parameters
parameter	value
pop-size	6
sample-counts	1,2,6,0
base-freqs	0.1, 0.2, 0.3
mixing-wts	0,1
`
	p, err := param.ReadTSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := p.Config()
	if cfg.N != 6 {
		t.Errorf("pop-size: got %d, want 6", cfg.N)
	}
	if cfg.SampleCounts != [4]int{1, 2, 6, 0} {
		t.Errorf("sample-counts: got %v", cfg.SampleCounts)
	}
	if f := cfg.Freqs[3]; f < 0.3999 || f > 0.4001 {
		t.Errorf("frequency of T: got %.6f, want 0.4", f)
	}
	if cfg.GammaB != 0 || cfg.GammaC != 1 {
		t.Errorf("mixing-wts: got %.2f, %.2f", cfg.GammaB, cfg.GammaC)
	}
	if cfg.Sites != 100 {
		t.Errorf("sites: got %d, want default 100", cfg.Sites)
	}
}

func TestInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown":           "mutation-rate\t1\n",
		"base-freqs sum":    "base-freqs\t0.5,0.3,0.3\n",
		"base-freqs count":  "base-freqs\t0.2,0.2\n",
		"zero base":         "base-freqs\t0,0.3,0.3\n",
		"r-mat":             "r-mat\t1,1,0,1,1,1\n",
		"pop-size":          "pop-size\t1\n",
		"sites":             "sites\t0\n",
		"introgress-prob":   "introgress-prob\t1.5\n",
		"mixing-wts":        "mixing-wts\t0.5,-0.1\n",
		"node-depths order": "node-depths\t1,1,2,3\n",
		"node-depths zero":  "node-depths\t0,1,2,3\n",
		"sample-counts":     "sample-counts\t1,-1,1,1\n",
		"seed":              "seed\t-5\n",
		"rate-func":         "rate-func\tuniform\n",
		"gamma":             "gamma\t-1\n",
		"nan base-freqs":    "base-freqs\tNaN,0.3,0.3\n",
		"nan introgress":    "introgress-prob\tNaN\n",
		"nan mixing-wts":    "mixing-wts\t0.5,NaN\n",
		"nan r-mat":         "r-mat\t1,1,NaN,1,1,1\n",
		"inf r-mat":         "r-mat\t1,1,+Inf,1,1,1\n",
		"nan gamma":         "gamma\tNaN\n",
		"nan node-depths":   "node-depths\t1,NaN,3,4\n",
	}
	for name, row := range tests {
		in := "parameter\tvalue\n" + row
		if _, err := param.ReadTSV(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}

	p := param.New("")
	if err := p.SetBaseFreqs([3]float64{math.NaN(), 0.3, 0.3}); err == nil {
		t.Errorf("nan base-freqs: expecting error")
	}
	if err := p.SetIntrogressProb(math.NaN()); err == nil {
		t.Errorf("nan introgress-prob: expecting error")
	}
	if err := p.SetMixingWts(math.NaN(), 0.5); err == nil {
		t.Errorf("nan mixing-wts: expecting error")
	}
	if err := p.SetRMat([6]float64{1, 1, 1, math.NaN(), 1, 1}); err == nil {
		t.Errorf("nan r-mat: expecting error")
	}
	if err := p.SetGamma(math.NaN()); err == nil {
		t.Errorf("nan gamma: expecting error")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("invalid values stored: %v", err)
	}

	if err := p.SetSampleCounts([4]int{1, 5, 1, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Validate(); err == nil {
		t.Errorf("sample larger than population: expecting error")
	}
}
