package geom

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/nmichlo/orthomosaic-go/internal/testutil"
)

// identity pose yields an identity transform.
func TestUnRotMatrix_IdentityPose(t *testing.T) {
	m, err := UnRotMatrix(0, 0, 0)
	if err != nil {
		t.Fatalf("UnRotMatrix: %v", err)
	}
	identity := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	testutil.AssertMatrixAlmostEqual(t, m, identity, 1e-9, "UnRotMatrix(0,0,0)")
}

// A pure-yaw pose degenerates to a plain 2D rotation by +yaw once pitch
// and roll are zero, since the out-of-plane column is already [0,0,1]
// and zeroing it is a no-op.
func TestUnRotMatrix_YawOnlyIsPlanarRotation(t *testing.T) {
	for _, theta := range []float64{10, 45, 90, -30} {
		m, err := UnRotMatrix(theta, 0, 0)
		if err != nil {
			t.Fatalf("UnRotMatrix(%v): %v", theta, err)
		}
		rad := theta * math.Pi / 180
		expected := mat.NewDense(3, 3, []float64{
			math.Cos(rad), -math.Sin(rad), 0,
			math.Sin(rad), math.Cos(rad), 0,
			0, 0, 1,
		})
		testutil.AssertMatrixAlmostEqual(t, m, expected, 1e-6, "UnRotMatrix yaw-only")
	}
}

func TestUnRotMatrix_Degenerate(t *testing.T) {
	// pitch = +/-90 degrees collapses the ground-plane projection onto
	// a singular matrix regardless of roll, since cos(pitch) -> 0
	// drives the zeroed third column/row to rank-deficiency.
	_, err := UnRotMatrix(0, 90, 90)
	if err == nil {
		t.Fatal("expected DegeneratePoseError, got nil")
	}
	var degErr *DegeneratePoseError
	if !errors.As(err, &degErr) {
		t.Errorf("expected *DegeneratePoseError, got %T: %v", err, err)
	}
}
