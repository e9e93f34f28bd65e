package mosaic

import (
	"gocv.io/x/gocv"

	"github.com/nmichlo/orthomosaic-go/internal/pose"
)

// FrameRecord pairs an original image, its pose, and the pose-corrected
// image produced by the Pose Rectifier. Rectified is
// mutated exactly once more, by the Assembler, when it re-warps the
// frame into mosaic coordinates so later frames can key off
// mosaic-space pixels.
type FrameRecord struct {
	Filename  string
	Original  gocv.Mat
	Pose      pose.Pose
	Rectified gocv.Mat
}

// Close releases both held Mats. Safe to call once the frame is no
// longer needed by any later iteration. The Ptr/Empty check guards
// against closing a gocv.Mat that was never allocated.
func (f *FrameRecord) Close() {
	if f.Original.Ptr() != nil && !f.Original.Empty() {
		f.Original.Close()
	}
	if f.Rectified.Ptr() != nil && !f.Rectified.Empty() {
		f.Rectified.Close()
	}
}
