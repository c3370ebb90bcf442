package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/skyclear/pcmask/internal/engine"
)

func TestRenderMaskDimensions(t *testing.T) {
	mask := make([]byte, 6)
	img := RenderMask(mask, 2, 3)
	b := img.Bounds()
	if b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("bounds = %v, want 3x2", b)
	}
}

func TestRenderMaskDistinguishesClasses(t *testing.T) {
	mask := []byte{engine.Fill, 0, engine.Cloud, engine.Water}
	img := RenderMask(mask, 1, 4)

	fill := img.At(0, 0)
	clear := img.At(1, 0)
	cloud := img.At(2, 0)
	water := img.At(3, 0)

	if fill == clear || fill == cloud || clear == cloud || cloud == water {
		t.Errorf("expected visually distinct colors per class, got fill=%v clear=%v cloud=%v water=%v", fill, clear, cloud, water)
	}
}

func TestWritePNGProducesDecodableImage(t *testing.T) {
	mask := []byte{0, engine.Snow}
	img := RenderMask(mask, 1, 2)

	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
