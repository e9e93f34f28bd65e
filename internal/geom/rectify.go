// Package geom implements the planar geometry primitives the mosaic
// pipeline is built from: pose rectification and padded perspective
// warping.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DegeneratePoseError reports that a pose's rotation matrix could not be
// inverted during rectification.
type DegeneratePoseError struct {
	Yaw, Pitch, Roll float64
	Err              error
}

func (e *DegeneratePoseError) Error() string {
	return fmt.Sprintf("degenerate pose (yaw=%.3f pitch=%.3f roll=%.3f): %v", e.Yaw, e.Pitch, e.Roll, e.Err)
}

func (e *DegeneratePoseError) Unwrap() error { return e.Err }

// UnRotMatrix computes the 3x3 planar homography that undoes the
// off-nadir rotation of a camera described by the given yaw/pitch/roll
// (in degrees), leaving only the ground-plane effect of the pose.
//
// See http://planning.cs.uiuc.edu/node102.html for the underlying
// rotation-matrix construction.
func UnRotMatrix(yawDeg, pitchDeg, rollDeg float64) (*mat.Dense, error) {
	a := yawDeg * math.Pi / 180
	b := pitchDeg * math.Pi / 180
	g := rollDeg * math.Pi / 180

	rz := mat.NewDense(3, 3, []float64{
		math.Cos(a), -math.Sin(a), 0,
		math.Sin(a), math.Cos(a), 0,
		0, 0, 1,
	})
	ry := mat.NewDense(3, 3, []float64{
		math.Cos(b), 0, math.Sin(b),
		0, 1, 0,
		-math.Sin(b), 0, math.Cos(b),
	})
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, math.Cos(g), -math.Sin(g),
		0, math.Sin(g), math.Cos(g),
	})

	var ryx, r mat.Dense
	ryx.Mul(rx, ry)
	r.Mul(rz, &ryx)

	// Zero the out-of-plane column: only the ground-plane effect of the
	// rotation survives.
	r.Set(0, 2, 0)
	r.Set(1, 2, 0)
	r.Set(2, 2, 1)

	rt := r.T()

	var inv mat.Dense
	if err := inv.Inverse(rt); err != nil {
		return nil, &DegeneratePoseError{Yaw: yawDeg, Pitch: pitchDeg, Roll: rollDeg, Err: err}
	}
	return &inv, nil
}
