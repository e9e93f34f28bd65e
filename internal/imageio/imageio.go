// Package imageio wraps image decoding, the intermediate-artifact
// persistence contract, and the BGR channel-order
// convention the rest of the pipeline assumes.
package imageio

import (
	"bytes"
	"fmt"
	stdimage "image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// IOError reports that an artifact could not be read or written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("imageio: %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// Load reads a 3-channel color image from path. gocv.IMRead covers
// JPEG/PNG directly; for formats gocv's build doesn't decode (it
// reports an empty Mat), this falls back to golang.org/x/image's BMP
// and TIFF decoders and re-encodes into a gocv.Mat, since a drone's
// image directory is not guaranteed to be JPEG/PNG-only.
func Load(path string) (gocv.Mat, error) {
	m := gocv.IMRead(path, gocv.IMReadColor)
	if !m.Empty() {
		return m, nil
	}

	img, err := decodeFallback(path)
	if err != nil {
		return gocv.Mat{}, &IOError{Path: path, Err: err}
	}
	return imageToMat(img)
}

func decodeFallback(path string) (stdimage.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".bmp":
		return bmp.Decode(f)
	case ".tif", ".tiff":
		return tiff.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported image format %s and gocv could not decode it", filepath.Ext(path))
	}
}

// imageToMat converts a decoded image.Image into a CV_8UC3 BGR Mat —
// gocv's native channel order — by round-tripping through BMP
// encoding, the simplest uncompressed format gocv.IMDecode accepts.
func imageToMat(img stdimage.Image) (gocv.Mat, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return gocv.Mat{}, fmt.Errorf("re-encode fallback image: %w", err)
	}
	m, err := gocv.IMDecode(buf.Bytes(), gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("decode re-encoded fallback image: %w", err)
	}
	return m, nil
}

// Save writes img to path in the format its extension selects (a
// lossless PNG for a .png path), creating parent directories as needed. This is the "intermediate artifact"
// persistence point: the Assembler calls this after every pairwise
// combine so the on-disk file is authoritative between iterations.
func Save(path string, img gocv.Mat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &IOError{Path: path, Err: err}
	}
	if ok := gocv.IMWrite(path, img); !ok {
		return &IOError{Path: path, Err: fmt.Errorf("IMWrite reported failure")}
	}
	return nil
}
