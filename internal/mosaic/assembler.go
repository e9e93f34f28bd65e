// Package mosaic implements the incremental pairwise registration and
// blending loop that grows a mosaic image-by-image.
package mosaic

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/paulmach/orb"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/nmichlo/orthomosaic-go/internal/cliutil"
	"github.com/nmichlo/orthomosaic-go/internal/config"
	"github.com/nmichlo/orthomosaic-go/internal/features"
	"github.com/nmichlo/orthomosaic-go/internal/geom"
	"github.com/nmichlo/orthomosaic-go/internal/imageio"
	"github.com/nmichlo/orthomosaic-go/internal/pose"
	"github.com/nmichlo/orthomosaic-go/internal/solve"
)

// affineMinMatches mirrors the Transform Solver's own affine minimum;
// the Assembler checks it before calling Solve so it can report
// InsufficientMatches with the frame index attached, rather than
// letting the bare solve error surface.
const affineMinMatches = 3

// RunStats accumulates per-combine diagnostics across an assembly run.
type RunStats struct {
	MatchCounts []float64
}

// MeanMatches returns the mean and standard deviation of per-combine
// match counts across the run so far.
func (s RunStats) MeanMatches() (mean, stddev float64) {
	if len(s.MatchCounts) == 0 {
		return 0, 0
	}
	mean, stddev = stat.MeanStdDev(s.MatchCounts, nil)
	return
}

// ProgressFunc is called after each successful combine with the index
// just completed and the total number of pairwise steps.
type ProgressFunc func(completed, total int)

// Assembler orchestrates the incremental mosaic loop: it owns the
// rectified-frame vector and the running mosaic exclusively, replacing
// the mosaic wholesale after each combine.
type Assembler struct {
	cfg          config.Config
	engine       *features.Engine
	intermediate string

	frames      []*FrameRecord
	mosaicMat   gocv.Mat
	worldOrigin orb.Point // world-canvas coordinates of mosaicMat's (0,0) pixel
	stats       RunStats
}

// New constructs an Assembler. intermediatePath is the well-known
// path the running mosaic is persisted to after every pairwise step.
func New(cfg config.Config, intermediatePath string) *Assembler {
	return &Assembler{
		cfg:          cfg,
		engine:       features.NewEngine(cfg.LoweRatio),
		intermediate: intermediatePath,
	}
}

// Close releases the Feature Engine, all frame buffers, and the
// running mosaic.
func (a *Assembler) Close() {
	a.engine.Close()
	for _, f := range a.frames {
		f.Close()
	}
	if a.mosaicMat.Ptr() != nil && !a.mosaicMat.Empty() {
		a.mosaicMat.Close()
	}
}

// Stats returns the accumulated per-run diagnostics.
func (a *Assembler) Stats() RunStats { return a.stats }

// Footprint returns the current mosaic's four corners expressed in the
// world-canvas frame (the mosaic's implicit origin), as an orb.Ring so
// downstream georeferencing callers can consume it as ordinary
// GeoJSON-shaped geometry.
func (a *Assembler) Footprint() orb.Ring {
	w, h := float64(a.mosaicMat.Cols()), float64(a.mosaicMat.Rows())
	ox, oy := a.worldOrigin[0], a.worldOrigin[1]
	return orb.Ring{
		{ox, oy},
		{ox, oy + h},
		{ox + w, oy + h},
		{ox + w, oy},
		{ox, oy},
	}
}

// Ingest rectifies each pose-tagged image into mosaic-ready
// FrameRecords, in file order. Each record's filename is resolved
// relative to imageDir. It initializes the mosaic to the first rectified
// frame and persists it as the first intermediate.
//
// A DegeneratePose for frame i is fatal unless cfg.SkipOnAlignmentFailure
// is set, in which case that frame is dropped and ingestion continues.
func (a *Assembler) Ingest(records []pose.Record, imageDir string) error {
	for _, rec := range records {
		path := filepath.Join(imageDir, rec.Filename)
		img, err := imageio.Load(path)
		if err != nil {
			return &IOErrorKind{Err: err}
		}

		if a.cfg.DownsampleFactor > 1 {
			small := gocv.NewMat()
			scale := 1.0 / float64(a.cfg.DownsampleFactor)
			gocv.Resize(img, &small, image.Point{}, scale, scale, gocv.InterpolationNearestNeighbor)
			img.Close()
			img = small
		}

		rot, err := geom.UnRotMatrix(rec.Pose.Yaw, rec.Pose.Pitch, rec.Pose.Roll)
		if err != nil {
			img.Close()
			if a.cfg.SkipOnAlignmentFailure {
				cliutil.WarnOnce("skipping one or more frames with a degenerate pose (non-invertible rotation)")
				continue
			}
			return fmt.Errorf("ingest %s: %w", rec.Filename, err)
		}

		rectified, _ := geom.PaddedWarp(img, rot)

		a.frames = append(a.frames, &FrameRecord{
			Filename:  rec.Filename,
			Original:  img,
			Pose:      rec.Pose,
			Rectified: rectified,
		})
	}

	if len(a.frames) == 0 {
		return fmt.Errorf("ingest: no frames survived rectification")
	}

	a.mosaicMat = a.frames[0].Rectified.Clone()
	a.worldOrigin = orb.Point{0, 0}
	if err := imageio.Save(a.intermediate, a.mosaicMat); err != nil {
		return &IOErrorKind{Err: err}
	}
	return nil
}

// Assemble runs the main loop: for i from 1 to N-1, combine frame i
// into the running mosaic. progress, if non-nil, is invoked after each
// successful combine.
//
// On AlignmentFailedError, the default policy is to halt and return
// the mosaic as of the last successful combine. When
// cfg.SkipOnAlignmentFailure is set, the skip policy applies instead:
// the failing frame is skipped and the loop proceeds treating the
// previous successfully-placed frame as both "previous" and "newly
// placed" for the next iteration, at the cost of additional drift.
func (a *Assembler) Assemble(progress ProgressFunc) (gocv.Mat, error) {
	total := len(a.frames) - 1
	for i := 1; i < len(a.frames); i++ {
		if err := a.combine(i); err != nil {
			var alignErr *AlignmentFailedError
			if errors.As(err, &alignErr) && a.cfg.SkipOnAlignmentFailure {
				a.skipFrame(i)
				continue
			}
			return a.mosaicMat, err
		}
		if progress != nil {
			progress(i, total)
		}
	}
	return a.mosaicMat, nil
}

// skipFrame implements the skip policy: frame i is dropped from
// consideration by re-pointing it at the previous frame's already-
// placed rectified image, so the next iteration's "previous frame" is
// still in mosaic coordinates.
func (a *Assembler) skipFrame(i int) {
	prev := a.frames[i-1]
	a.frames[i].Rectified.Close()
	a.frames[i].Rectified = prev.Rectified.Clone()
}

// combine performs one pairwise registration-and-blend step, placing
// frame i onto the running mosaic.
func (a *Assembler) combine(i int) error {
	A := a.frames[i-1].Rectified
	B := a.frames[i].Rectified

	grayA := gocv.NewMat()
	defer grayA.Close()
	gocv.CvtColor(A, &grayA, gocv.ColorBGRToGray)

	grayB := gocv.NewMat()
	defer grayB.Close()
	gocv.CvtColor(B, &grayB, gocv.ColorBGRToGray)

	detA := a.engine.Detect(grayA)
	defer detA.Close()
	detB := a.engine.Detect(grayB)
	defer detB.Close()

	matches := a.engine.Match(detB.Descriptors, detA.Descriptors)
	a.stats.MatchCounts = append(a.stats.MatchCounts, float64(len(matches)))

	if len(matches) < affineMinMatches {
		return &AlignmentFailedError{Index: i, Err: &InsufficientMatchesError{
			Have: len(matches), Need: affineMinMatches,
			Err: solve.ErrInsufficientMatches,
		}}
	}

	src, dst := extractPoints(matches, detB.KeyPoints, detA.KeyPoints)

	transform, err := solve.Solve(src, dst, solve.Config{
		RansacReprojThreshold: a.cfg.RansacReprojThreshold,
		MaxIters:              a.cfg.RansacMaxIters,
		Confidence:            a.cfg.RansacConfidence,
	})
	if err != nil {
		if errors.Is(err, solve.ErrInsufficientMatches) {
			return &AlignmentFailedError{Index: i, Err: &InsufficientMatchesError{
				Have: len(matches), Need: 4, Err: err,
			}}
		}
		return &AlignmentFailedError{Index: i, Err: &TransformUnavailableError{Err: err}}
	}

	// Step 5: canvas expansion.
	hA, wA := A.Rows(), A.Cols()
	hB, wB := B.Rows(), B.Cols()
	cornersA := geom.Corners(wA, hA)
	cornersB := geom.Corners(wB, hB)

	all := make([]geom.Point2D, 0, 8)
	all = append(all, cornersA[:]...)
	for _, c := range cornersB {
		switch transform.Kind {
		case solve.Affine:
			all = append(all, geom.ApplyAffine(transform.Affine, c))
		case solve.Projective:
			all = append(all, geom.ApplyProjective(transform.Matrix3x3, c))
		}
	}

	xMin, yMin, xMax, yMax := geom.BoundingBox(all)
	translation := geom.Translation3x3(xMin, yMin)
	outSize := image.Pt(xMax-xMin, yMax-yMin)

	// Step 6: placement.
	mosaicPlaced := gocv.NewMat()
	defer mosaicPlaced.Close()
	translationMat := geom.DenseTo3x3Mat(translation)
	gocv.WarpPerspectiveWithParams(a.mosaicMat, &mosaicPlaced, translationMat, outSize,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	translationMat.Close()

	framePlaced := a.placeFrame(B, transform, translation, outSize)

	// Frame i is now expressed in mosaic coordinates; future
	// iterations key off this placement, not the full mosaic — the
	// controlled drift point of the incremental design.
	a.frames[i].Rectified.Close()
	a.frames[i].Rectified = framePlaced

	// Step 8: composition. Mask is 1.0 where framePlaced is
	// background, 0.0 where it has content, so prior mosaic pixels
	// survive exactly where the new frame contributes nothing; inside
	// the new frame's footprint its pixels replace the mosaic's.
	result := a.composite(mosaicPlaced, framePlaced)

	a.mosaicMat.Close()
	a.mosaicMat = result
	a.worldOrigin = orb.Point{a.worldOrigin[0] + float64(xMin), a.worldOrigin[1] + float64(yMin)}

	if err := imageio.Save(a.intermediate, a.mosaicMat); err != nil {
		return &IOErrorKind{Err: err}
	}
	return nil
}

// placeFrame warps B into the new canvas: S*T composed in one
// projective warp when T is Projective, or S applied first and then T
// as a separate affine warp when T is Affine — genuinely different
// code paths, because an affine 2x3 matrix cannot be composed with a
// projective 3x3 by simple matrix multiplication.
func (a *Assembler) placeFrame(b gocv.Mat, transform solve.Transform2D, translation *mat.Dense, outSize image.Point) gocv.Mat {
	if transform.Kind == solve.Projective {
		var full mat.Dense
		full.Mul(translation, transform.Matrix3x3)
		fullMat := geom.DenseTo3x3Mat(&full)
		dst := gocv.NewMat()
		gocv.WarpPerspectiveWithParams(b, &dst, fullMat, outSize,
			gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
		fullMat.Close()
		return dst
	}

	tmp := gocv.NewMat()
	defer tmp.Close()
	translationMat := geom.DenseTo3x3Mat(translation)
	gocv.WarpPerspectiveWithParams(b, &tmp, translationMat, outSize,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	translationMat.Close()

	dst := gocv.NewMat()
	affineMat := geom.DenseTo2x3Mat(transform.Affine)
	gocv.WarpAffineWithParams(tmp, &dst, affineMat, outSize,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	affineMat.Close()
	return dst
}

// composite masks mosaicPlaced by the inverse of framePlaced's
// content mask, then adds framePlaced on top.
func (a *Assembler) composite(mosaicPlaced, framePlaced gocv.Mat) gocv.Mat {
	grayFrame := gocv.NewMat()
	defer grayFrame.Close()
	gocv.CvtColor(framePlaced, &grayFrame, gocv.ColorBGRToGray)

	mask := features.ValidityMask(grayFrame, gocv.ThresholdBinaryInv)
	defer mask.Close()

	mask3 := gocv.NewMat()
	defer mask3.Close()
	gocv.CvtColor(mask, &mask3, gocv.ColorGrayToBGR)

	maskFloat := gocv.NewMat()
	defer maskFloat.Close()
	mask3.ConvertToWithParams(&maskFloat, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	mosaicFloat := gocv.NewMat()
	defer mosaicFloat.Close()
	mosaicPlaced.ConvertTo(&mosaicFloat, gocv.MatTypeCV32FC3)

	gocv.Multiply(mosaicFloat, maskFloat, &mosaicFloat)

	mosaicMasked := gocv.NewMat()
	defer mosaicMasked.Close()
	mosaicFloat.ConvertTo(&mosaicMasked, gocv.MatTypeCV8UC3)

	result := gocv.NewMat()
	gocv.Add(mosaicMasked, framePlaced, &result)
	return result
}

// extractPoints converts matches into aligned src (query/B-side) and
// dst (train/A-side) point slices, src[k] <-> dst[k].
func extractPoints(matches []features.Match, queryKps, trainKps []gocv.KeyPoint) (src, dst [][2]float64) {
	src = make([][2]float64, len(matches))
	dst = make([][2]float64, len(matches))
	for i, m := range matches {
		q := queryKps[m.QueryIdx]
		t := trainKps[m.TrainIdx]
		src[i] = [2]float64{float64(q.X), float64(q.Y)}
		dst[i] = [2]float64{float64(t.X), float64(t.Y)}
	}
	return src, dst
}

// Mosaic returns the current running mosaic. Callers must not close
// it; use Close on the Assembler once finished.
func (a *Assembler) Mosaic() gocv.Mat { return a.mosaicMat }
