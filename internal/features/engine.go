// Package features wraps ORB keypoint detection and brute-force
// Hamming matching behind a narrow capability surface, so the mosaic
// core depends on a detect/match contract rather than directly on a
// specific OpenCV binding.
package features

import (
	"gocv.io/x/gocv"
)

// LoweRatio is the Lowe ratio-test threshold used to accept a
// nearest-neighbor match. Tighter than the conventional 0.7-0.75
// because aerial imagery's repeated ground texture makes weaker
// matches untrustworthy.
const LoweRatio = 0.55

// Match is a single accepted correspondence between a query
// (descriptor-set B) and a train (descriptor-set A) keypoint.
type Match struct {
	QueryIdx int
	TrainIdx int
}

// Detection holds the keypoints and descriptors produced for one
// image by Engine.Detect.
type Detection struct {
	KeyPoints   []gocv.KeyPoint
	Descriptors gocv.Mat
}

// Close releases the underlying descriptor matrix.
func (d Detection) Close() error {
	if !d.Descriptors.Empty() {
		return d.Descriptors.Close()
	}
	return nil
}

// Engine detects ORB keypoints restricted to the non-zero ("valid")
// region of a grayscale image, and matches descriptors between two
// images using brute-force Hamming kNN with the Lowe ratio test.
type Engine struct {
	orb     gocv.ORB
	matcher gocv.BFMatcher
	ratio   float64
}

// NewEngine constructs a Feature Engine with rotation-invariant ORB
// detection and a brute-force Hamming-distance matcher — the pairing
// OpenCV's own documentation recommends for binary descriptors.
// ratio <= 0 falls back to LoweRatio.
func NewEngine(ratio float64) *Engine {
	if ratio <= 0 {
		ratio = LoweRatio
	}
	return &Engine{
		orb:     gocv.NewORB(),
		matcher: gocv.NewBFMatcherWithParams(gocv.NormHamming, false),
		ratio:   ratio,
	}
}

// Close releases the underlying OpenCV detector and matcher.
func (e *Engine) Close() error {
	if err := e.orb.Close(); err != nil {
		return err
	}
	return e.matcher.Close()
}

// Detect runs ORB detectAndCompute on gray, restricted to pixels with
// intensity > 0 so that background padding never contributes
// keypoints.
func (e *Engine) Detect(gray gocv.Mat) Detection {
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinary)

	kps, descriptors := e.orb.DetectAndCompute(gray, mask)
	return Detection{KeyPoints: kps, Descriptors: descriptors}
}

// Match finds correspondences from query (B-side) descriptors into
// train (A-side) descriptors using brute-force 2-NN Hamming matching
// with the Lowe ratio test. Returns an empty slice if either side has
// fewer than 2 keypoints.
func (e *Engine) Match(query, train gocv.Mat) []Match {
	if query.Rows() < 2 || train.Rows() < 2 {
		return nil
	}

	knn := e.matcher.KnnMatch(query, train, 2)

	matches := make([]Match, 0, len(knn))
	for _, pair := range knn {
		if len(pair) < 2 {
			continue
		}
		best, second := pair[0], pair[1]
		if best.Distance < float32(e.ratio)*second.Distance {
			matches = append(matches, Match{QueryIdx: best.QueryIdx, TrainIdx: best.TrainIdx})
		}
	}
	return matches
}

// ValidityMask thresholds gray at intensity 1, treating pixels with
// intensity > 1 as content; the Assembler uses it with the inverted
// threshold for mosaic composition masking. threshType selects
// gocv.ThresholdBinary (content -> 255) or gocv.ThresholdBinaryInv
// (content -> 0, background -> 255).
func ValidityMask(gray gocv.Mat, threshType gocv.ThresholdType) gocv.Mat {
	mask := gocv.NewMat()
	gocv.Threshold(gray, &mask, 1, 255, threshType)
	return mask
}
