// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampler_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/pomosim/pomo"
	"github.com/js-arias/pomosim/rates"
	"github.com/js-arias/pomosim/sampler"
	"golang.org/x/exp/rand"
)

func TestSampleBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 2; n <= 12; n++ {
		for i := 0; i <= n; i++ {
			s := pomo.State{Ancestral: rates.A, Derived: rates.T, Count: i}.Canonical(n)
			for size := 0; size <= n; size++ {
				d, err := sampler.Sample(s, n, size, rng)
				if err != nil {
					t.Fatalf("N = %d, state %v, size %d: unexpected error: %v", n, s, size, err)
				}
				if got := d.Size(); got != size {
					t.Errorf("N = %d, state %v: got size %d, want %d", n, s, got, size)
				}
				derived := d.Counts[rates.T]
				if derived < 0 || derived > size || derived > i {
					t.Errorf("N = %d, state %v, size %d: derived count %d out of bounds", n, s, size, derived)
				}
				if size-derived > n-i {
					t.Errorf("N = %d, state %v, size %d: ancestral count %d out of bounds", n, s, size, size-derived)
				}
				if a := len(d.Alleles()); a > 2 {
					t.Errorf("N = %d, state %v: got %d alleles", n, s, a)
				}
			}
		}
	}
}

func TestSampleZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ref := rand.New(rand.NewSource(1))

	s := pomo.State{Ancestral: rates.C, Derived: rates.G, Count: 2}
	d, err := sampler.Sample(s, 4, 0, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != (sampler.Draw{}) {
		t.Errorf("empty sample: got %v", d)
	}
	if rng.Uint64() != ref.Uint64() {
		t.Errorf("empty sample: random number used")
	}
}

func TestSampleFullPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := pomo.State{Ancestral: rates.A, Derived: rates.G, Count: 3}
	d, err := sampler.Sample(s, 8, 8, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [4]int{5, 0, 3, 0}
	if d.Counts != want {
		t.Errorf("full population: got %v, want %v", d.Counts, want)
	}
}

func TestSamplingError(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := pomo.Fixed(rates.A)
	if _, err := sampler.Sample(s, 4, 5, rng); !errors.Is(err, sampler.ErrSampling) {
		t.Errorf("sample size larger than population: got error %v, want %v", err, sampler.ErrSampling)
	}
	if _, err := sampler.Sample(s, 4, -1, rng); !errors.Is(err, sampler.ErrSampling) {
		t.Errorf("negative sample size: got error %v, want %v", err, sampler.ErrSampling)
	}
	bad := pomo.State{Ancestral: rates.A, Derived: rates.C, Count: 7}
	if _, err := sampler.Sample(bad, 4, 2, rng); !errors.Is(err, sampler.ErrSampling) {
		t.Errorf("invalid state: got error %v, want %v", err, sampler.ErrSampling)
	}
}

func TestHypergeometric(t *testing.T) {
	n, k, size := 10, 4, 5

	var sum float64
	for x := 0; x <= size; x++ {
		sum += sampler.Prob(n, k, size, x)
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("probabilities: sum %.12f, want 1", sum)
	}
	// C(4,2) C(6,3) / C(10,5) = 6 * 20 / 252
	if got, want := sampler.Prob(n, k, size, 2), 120.0/252.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("prob of 2: got %.6f, want %.6f", got, want)
	}

	const reps = 100_000
	freq := make([]float64, size+1)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < reps; i++ {
		freq[sampler.Hypergeometric(n, k, size, rng.Float64())]++
	}
	for x := range freq {
		p := sampler.Prob(n, k, size, x)
		got := freq[x] / reps
		tol := 5*math.Sqrt(p*(1-p)/reps) + 1e-9
		if math.Abs(got-p) > tol {
			t.Errorf("x = %d: got %.6f, want %.6f", x, got, p)
		}
	}
}

func TestParseDraw(t *testing.T) {
	d := sampler.Draw{Counts: [4]int{0, 3, 0, 1}}
	got, err := sampler.ParseDraw(d.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != d {
		t.Errorf("parse %q: got %v, want %v", d.String(), got, d)
	}
	if _, err := sampler.ParseDraw("1,2,3"); err == nil {
		t.Errorf("parse %q: expecting error", "1,2,3")
	}
}
