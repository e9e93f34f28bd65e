// Package solve estimates the 2-D transform mapping one set of
// matched points onto another, preferring a 4-DOF partial affine and
// falling back to a full 8-DOF projective homography when the affine
// estimator can't find a result.
package solve

import (
	"errors"
	"fmt"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// Kind tags which representation a Transform2D holds.
type Kind int

const (
	// Affine is a 2x3 matrix: translation + uniform scale + rotation.
	Affine Kind = iota
	// Projective is a full 3x3 homography.
	Projective
)

// Transform2D is the tagged-variant result of Solve: either an Affine
// (2x3) or a Projective (3x3) matrix, never both — the exclusivity
// fallback-exclusivity property is structural, not just a runtime
// contract.
type Transform2D struct {
	Kind      Kind
	Affine    *mat.Dense // 2x3, set iff Kind == Affine
	Matrix3x3 *mat.Dense // 3x3, set iff Kind == Projective
}

// ErrTransformUnavailable is returned when both the affine and
// projective estimators fail to produce a result.
var ErrTransformUnavailable = errors.New("transform unavailable: affine and projective estimation both failed")

// ErrInsufficientMatches is returned when fewer point pairs are
// supplied than the minimum the solver requires.
var ErrInsufficientMatches = errors.New("insufficient matches for transform estimation")

// Config tunes the RANSAC-style robust estimators.
type Config struct {
	// RansacReprojThreshold is the maximum reprojection error (in
	// pixels) for a point pair to be treated as an inlier.
	RansacReprojThreshold float64
	// MaxIters bounds the number of RANSAC iterations.
	MaxIters int
	// Confidence is the RANSAC confidence level, in (0, 1).
	Confidence float64
}

// DefaultConfig mirrors the thresholds OpenCV's own RANSAC-based
// estimators use when called with their built-in defaults.
func DefaultConfig() Config {
	return Config{
		RansacReprojThreshold: 3.0,
		MaxIters:              2000,
		Confidence:            0.99,
	}
}

// Solve estimates a transform mapping src points onto dst points.
// First attempts a partial affine (requires >= 3 pairs); on failure,
// falls back to a full homography (requires >= 4 pairs). Returns
// ErrInsufficientMatches if there are too few pairs for even the
// affine path, and ErrTransformUnavailable if both paths fail.
func Solve(src, dst [][2]float64, cfg Config) (Transform2D, error) {
	if len(src) != len(dst) {
		return Transform2D{}, fmt.Errorf("solve: point count mismatch: %d src vs %d dst", len(src), len(dst))
	}
	if len(src) < 3 {
		return Transform2D{}, fmt.Errorf("solve: %w: need >=3 pairs, got %d", ErrInsufficientMatches, len(src))
	}

	srcMat := pointsToMat(src)
	dstMat := pointsToMat(dst)
	defer srcMat.Close()
	defer dstMat.Close()

	if affine, ok := estimateAffine(srcMat, dstMat, cfg); ok {
		return Transform2D{Kind: Affine, Affine: affine}, nil
	}

	if len(src) < 4 {
		return Transform2D{}, fmt.Errorf("solve: affine failed and %w: need >=4 pairs for homography, got %d", ErrInsufficientMatches, len(src))
	}

	if proj, ok := estimateHomography(srcMat, dstMat, cfg); ok {
		return Transform2D{Kind: Projective, Matrix3x3: proj}, nil
	}

	return Transform2D{}, ErrTransformUnavailable
}

// ransacMethod is OpenCV's cv::RANSAC enum value (4=LMEDS, 8=RANSAC),
// shared by both estimateAffine2D-family functions and findHomography.
// Kept as a local int constant rather than a gocv-exported symbol,
// matching the precedent in the pack's own alignment-transform.go
// (`const methodRANSAC = 8`), since gocv's EstimateAffinePartial2D
// binding takes a plain int rather than a named enum.
const ransacMethod = 8

func estimateAffine(src, dst gocv.Mat, cfg Config) (*mat.Dense, bool) {
	inliers := gocv.NewMat()
	defer inliers.Close()

	result := gocv.EstimateAffinePartial2DWithParams(
		src, dst, &inliers,
		ransacMethod,
		cfg.RansacReprojThreshold,
		uint(cfg.MaxIters),
		cfg.Confidence,
		10,
	)
	defer result.Close()

	if result.Empty() || result.Rows() != 2 || result.Cols() != 3 {
		return nil, false
	}

	out := mat.NewDense(2, 3, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, result.GetDoubleAt(i, j))
		}
	}
	return out, true
}

func estimateHomography(src, dst gocv.Mat, cfg Config) (*mat.Dense, bool) {
	mask := gocv.NewMat()
	defer mask.Close()

	result := gocv.FindHomography(
		src, dst,
		gocv.HomographyMethodRANSAC,
		cfg.RansacReprojThreshold,
		&mask,
		cfg.MaxIters,
		cfg.Confidence,
	)
	defer result.Close()

	if result.Empty() || result.Rows() != 3 || result.Cols() != 3 {
		return nil, false
	}

	out := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, result.GetDoubleAt(i, j))
		}
	}
	return out, true
}

// pointsToMat converts a slice of 2-D points into a CV_32FC2 Nx1 Mat,
// the layout gocv's RANSAC estimators expect.
func pointsToMat(points [][2]float64) gocv.Mat {
	data := make([]float32, len(points)*2)
	for i, p := range points {
		data[i*2] = float32(p[0])
		data[i*2+1] = float32(p[1])
	}
	m, err := gocv.NewMatFromBytes(len(points), 1, gocv.MatTypeCV32FC2, float32BytesLE(data))
	if err != nil {
		return gocv.NewMat()
	}
	return m
}

func float32BytesLE(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		bits := math.Float32bits(v)
		out[i*4] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}
