package metric

import (
	"math"
	"math/rand"
	"testing"
)

func TestRatioWithCap(t *testing.T) {
	cases := []struct {
		kills, deaths, want float64
	}{
		{10, 0, 99},
		{1, 0, 99},
		{0, 0, 0},
		{10, 4, 2.5},
		{7, 3, 2.33},
		{2, 3, 0.67},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := KD(c.kills, c.deaths); got != c.want {
			t.Errorf("KD(%v,%v) = %v, want %v", c.kills, c.deaths, got, c.want)
		}
	}
}

func TestRatioWithCap_Property(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		kills := float64(r.Intn(60))
		deaths := float64(r.Intn(40))
		got := KD(kills, deaths)
		switch {
		case deaths == 0 && kills > 0:
			if got != 99 {
				t.Fatalf("KD(%v,0) = %v, want 99", kills, got)
			}
		case deaths == 0:
			if got != 0 {
				t.Fatalf("KD(0,0) = %v, want 0", got)
			}
		default:
			if want := math.Round(kills/deaths*100) / 100; got != want {
				t.Fatalf("KD(%v,%v) = %v, want %v", kills, deaths, got, want)
			}
		}
	}
}

func TestHeadshotPercent(t *testing.T) {
	hs := 3.0
	if p := HeadshotPercent(&hs, 8); p == nil || *p != 37.5 {
		t.Errorf("got %v, want 37.5", p)
	}
	if p := HeadshotPercent(nil, 8); p != nil {
		t.Errorf("unknown headshots: got %v, want nil", *p)
	}
	if p := HeadshotPercent(&hs, 0); p != nil {
		t.Errorf("zero kills: got %v, want nil", *p)
	}
	zero := 0.0
	if p := HeadshotPercent(&zero, 5); p == nil || *p != 0 {
		t.Errorf("zero headshots should be 0, got %v", p)
	}
}

func TestPearson_SymmetryAndBounds(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 2 + r.Intn(30)
		xs := make([]float64, n)
		ys := make([]float64, n)
		for j := range xs {
			xs[j] = r.Float64()*100 - 50
			ys[j] = r.Float64() * 10
		}
		a, b := Pearson(xs, ys), Pearson(ys, xs)
		if a != b {
			t.Fatalf("asymmetric: %v vs %v", a, b)
		}
		if a < -1 || a > 1 {
			t.Fatalf("out of bounds: %v", a)
		}
	}
}

func TestPearson_ZeroVariance(t *testing.T) {
	xs := []float64{3, 3, 3, 3}
	ys := []float64{1, 2, 3, 4}
	if got := Pearson(xs, ys); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
	if got := Pearson(ys, xs); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestPearson_Perfect(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 4, 6, 8, 10}
	if got := Pearson(xs, ys); math.Abs(got-1) > 1e-12 {
		t.Errorf("got %v, want 1", got)
	}
	neg := []float64{10, 8, 6, 4, 2}
	if got := Pearson(xs, neg); math.Abs(got+1) > 1e-12 {
		t.Errorf("got %v, want -1", got)
	}
}
