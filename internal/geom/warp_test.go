package geom

import (
	"math"
	"testing"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// No corner of the pre-warp image maps
// outside the post-warp canvas, for an arbitrary rotation+translation.
func TestBoundingBox_ContainsAllWarpedCorners(t *testing.T) {
	theta := 37.0 * math.Pi / 180
	transform := mat.NewDense(3, 3, []float64{
		math.Cos(theta), -math.Sin(theta), 12,
		math.Sin(theta), math.Cos(theta), -8,
		0, 0, 1,
	})

	w, h := 100, 60
	corners := Corners(w, h)
	warped := make([]Point2D, 4)
	for i, c := range corners {
		warped[i] = ApplyProjective(transform, c)
	}

	xMin, yMin, xMax, yMax := BoundingBox(warped)
	for _, c := range warped {
		shiftedX := c.X - float64(xMin)
		shiftedY := c.Y - float64(yMin)
		if shiftedX < 0 || shiftedX > float64(xMax-xMin) {
			t.Errorf("corner %v maps outside canvas on X: shifted=%v width=%v", c, shiftedX, xMax-xMin)
		}
		if shiftedY < 0 || shiftedY > float64(yMax-yMin) {
			t.Errorf("corner %v maps outside canvas on Y: shifted=%v height=%v", c, shiftedY, yMax-yMin)
		}
	}
}

// PaddedWarp never shrinks a rotated image: the output canvas is at
// least as large as the source in both dimensions.
func TestPaddedWarp_ExpandsCanvasForRotation(t *testing.T) {
	w, h := 40, 20
	src := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	defer src.Close()
	src.SetTo(gocv.NewScalar(200, 200, 200, 0))

	theta := 30.0 * math.Pi / 180
	transform := mat.NewDense(3, 3, []float64{
		math.Cos(theta), -math.Sin(theta), 0,
		math.Sin(theta), math.Cos(theta), 0,
		0, 0, 1,
	})

	dst, translation := PaddedWarp(src, transform)
	defer dst.Close()

	if dst.Cols() < w || dst.Rows() < h {
		t.Errorf("expected rotated canvas to be at least as large as source (%dx%d), got %dx%d", w, h, dst.Cols(), dst.Rows())
	}
	if translation == nil {
		t.Fatal("expected non-nil translation")
	}
}

// Warping with the identity transform changes nothing —
// the output canvas exactly matches the input, with no padding added.
func TestPaddedWarp_IdentityNoPadding(t *testing.T) {
	w, h := 30, 15
	src := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	defer src.Close()
	src.SetTo(gocv.NewScalar(100, 150, 50, 0))

	identity := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})

	dst, _ := PaddedWarp(src, identity)
	defer dst.Close()

	if dst.Cols() != w || dst.Rows() != h {
		t.Errorf("expected unchanged %dx%d canvas, got %dx%d", w, h, dst.Cols(), dst.Rows())
	}
}
