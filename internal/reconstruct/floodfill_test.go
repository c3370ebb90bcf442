package reconstruct

import "testing"

func TestFillLocalMinimaRaisesIsolatedPit(t *testing.T) {
	// A single low pixel surrounded by a uniform plateau must be raised
	// to the plateau level, since it cannot drain to the border without
	// crossing higher ground.
	l, s := 3, 3
	src := []int16{
		100, 100, 100,
		100, 10, 100,
		100, 100, 100,
	}
	dst, err := FillLocalMinima("pit", src, l, s, 100)
	if err != nil {
		t.Fatalf("FillLocalMinima: %v", err)
	}
	if dst[4] != 100 {
		t.Errorf("center pixel = %v, want 100 (raised to plateau)", dst[4])
	}
	for i, v := range dst {
		if i == 4 {
			continue
		}
		if v != 100 {
			t.Errorf("border pixel %d = %v, want unchanged 100", i, v)
		}
	}
}

func TestFillLocalMinimaNeverGoesBelowSource(t *testing.T) {
	l, s := 4, 4
	src := []int16{
		50, 50, 50, 50,
		50, 5, 60, 50,
		50, 60, 5, 50,
		50, 50, 50, 50,
	}
	dst, err := FillLocalMinima("trench", src, l, s, 50)
	if err != nil {
		t.Fatalf("FillLocalMinima: %v", err)
	}
	for i := range dst {
		if dst[i] < src[i] {
			t.Fatalf("pixel %d: filled %v < source %v", i, dst[i], src[i])
		}
	}
}

func TestFillLocalMinimaChannelDrainsToBorder(t *testing.T) {
	// A low-valued channel connecting a central pit to the border should
	// let the pit drain to the boundary value rather than the
	// surrounding plateau, since reconstruction by erosion never raises
	// a pixel above its upstream neighbor.
	l, s := 3, 5
	src := []int16{
		100, 100, 100, 100, 100,
		10, 10, 10, 10, 100,
		100, 100, 100, 100, 100,
	}
	dst, err := FillLocalMinima("channel", src, l, s, 10)
	if err != nil {
		t.Fatalf("FillLocalMinima: %v", err)
	}
	for _, i := range []int{6, 7, 8} {
		if dst[i] != 10 {
			t.Errorf("channel pixel %d = %v, want 10 (drains to boundary)", i, dst[i])
		}
	}
}

func TestFillLocalMinimaEmptyImage(t *testing.T) {
	dst, err := FillLocalMinima("empty", nil, 0, 0, 0)
	if err != nil {
		t.Fatalf("FillLocalMinima: %v", err)
	}
	if dst != nil {
		t.Errorf("dst = %v, want nil", dst)
	}
}

func TestFillLocalMinimaLengthMismatch(t *testing.T) {
	_, err := FillLocalMinima("bad", []int16{1, 2, 3}, 2, 2, 0)
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}
