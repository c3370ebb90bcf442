package pctstat

import "testing"

func TestPrctileEmpty(t *testing.T) {
	if got := Prctile(nil, 0, 0, 50); got != 0 {
		t.Errorf("Prctile(nil) = %v, want 0", got)
	}
}

func TestPrctileConstant(t *testing.T) {
	samples := []int16{42, 42, 42}
	if got := Prctile(samples, 42, 42, 17.5); got != 42 {
		t.Errorf("Prctile(constant) = %v, want 42", got)
	}
}

func TestPrctileKnownDistribution(t *testing.T) {
	samples := []int16{10, 20, 30, 40, 50}
	if got := Prctile(samples, 10, 50, 50); got != 30 {
		t.Errorf("median = %v, want 30", got)
	}
	if got := Prctile(samples, 10, 50, 0); got != 10 {
		t.Errorf("p0 = %v, want 10", got)
	}
	if got := Prctile(samples, 10, 50, 100); got != 50 {
		t.Errorf("p100 = %v, want 50", got)
	}
}

func TestPrctile2KnownDistribution(t *testing.T) {
	samples := []float32{1, 2, 3, 4}
	got := Prctile2(samples, 1, 4, 50)
	if got < 2.4 || got > 2.6 {
		t.Errorf("median = %v, want ~2.5", got)
	}
}

func TestClampFraction(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-10, 0}, {0, 0}, {50, 0.5}, {100, 1}, {150, 1},
	}
	for _, c := range cases {
		if got := clampFraction(c.in); got != c.want {
			t.Errorf("clampFraction(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
