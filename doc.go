/*
Package orthomosaic assembles a pose-tagged sequence of aerial
photographs into a single orthorectified mosaic image.

Each frame is rectified to remove the camera's off-nadir tilt, then
incrementally registered against the previously placed frame (already
in the growing mosaic's coordinates) using ORB feature matching and a
RANSAC-robust affine-or-projective transform estimate.
The mosaic canvas expands frame by frame and the running result is
persisted to disk after every step.

# Basic Usage

	records, err := pose.ReadFile("poses.txt")
	if err != nil {
		log.Fatal(err)
	}

	asm := mosaic.New(config.Default(), "mosaic.png")
	defer asm.Close()

	if err := asm.Ingest(records, "./photos"); err != nil {
		log.Fatal(err)
	}

	result, err := asm.Assemble(func(completed, total int) {
		fmt.Printf("combined %d/%d\n", completed, total)
	})
	if err != nil {
		log.Fatal(err)
	}
	imageio.Save("mosaic.png", result)

# Pipeline Stages

  - internal/pose: parses the pose file (filename, x, y, z, yaw, pitch, roll).
  - internal/geom: undoes camera tilt (Pose Rectifier) and performs
    padded perspective warps with canvas expansion.
  - internal/features: ORB keypoint detection and ratio-tested
    brute-force matching.
  - internal/solve: RANSAC affine estimation with a projective
    homography fallback.
  - internal/mosaic: the incremental Assembler that ties the above
    together into a growing canvas.

# Failure Handling

A frame that cannot be aligned raises AlignmentFailedError carrying its
index. By default the assembler halts and returns the mosaic as of the
last successful combine; setting Config.SkipOnAlignmentFailure skips
the failing frame instead, at the cost of extra drift in the result.
*/
package orthomosaic
