package genmat

import (
	"math/rand/v2"
	"testing"
)

func TestGenerateRejectsInvalidSparsity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	_, err := Generate(1, 2, 2, Options{Sparsity: 1.5, Min: 1, Max: 9}, rng)
	if err == nil {
		t.Fatal("expected an error for sparsity out of [0,1]")
	}
}

func TestGenerateRejectsInvertedRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	_, err := Generate(1, 2, 2, Options{Sparsity: 0, Min: 9, Max: 1}, rng)
	if err == nil {
		t.Fatal("expected an error for max < min")
	}
}

func TestGenerateShapeAndRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	opts := Options{Sparsity: 0, Min: 3, Max: 5}
	tn, err := Generate(2, 4, 3, opts, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	th, r, c := tn.Dims()
	if th != 2 || r != 4 || c != 3 {
		t.Fatalf("Dims() = (%d,%d,%d), want (2,4,3)", th, r, c)
	}
	for thread := 0; thread < th; thread++ {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v := tn.Get(thread, i, j)
				if v < opts.Min || v > opts.Max {
					t.Fatalf("value %d out of range [%d,%d]", v, opts.Min, opts.Max)
				}
			}
		}
	}
}

func TestGenerateFullSparsityIsAllZero(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	tn, err := Generate(1, 3, 3, Options{Sparsity: 1, Min: 1, Max: 9}, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, r, c := tn.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if tn.Get(0, i, j) != 0 {
				t.Fatalf("expected all-zero tensor at full sparsity, got %d at (%d,%d)", tn.Get(0, i, j), i, j)
			}
		}
	}
}

func TestGeneratePairShapesAreTransposeCompatible(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	west, north, err := GeneratePair(2, 4, 3, DefaultOptions(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, wr, wk := west.Dims()
	_, nk, nc := north.Dims()
	if wr != 4 || wk != 3 || nk != 3 || nc != 4 {
		t.Fatalf("unexpected shapes west=(%d,%d) north=(%d,%d)", wr, wk, nk, nc)
	}
}
