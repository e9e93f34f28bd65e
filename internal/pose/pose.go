// Package pose parses the pose file format: one comma-separated record
// per line, `filename, x, y, z, yaw, pitch, roll`, dot-decimal floats,
// file order is assembly order.
package pose

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Pose is an immutable 6-tuple (x, y, z, yaw, pitch, roll). Angles are
// degrees. X, Y, Z are carried for ingestion completeness but unused
// by the rectification core.
type Pose struct {
	X, Y, Z          float64
	Yaw, Pitch, Roll float64
}

// Record pairs a filename with its parsed Pose, in file order.
type Record struct {
	Filename string
	Pose     Pose
}

// ReadFile parses a pose file, returning one Record per line in file
// order (which is assembly order).
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pose: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses a pose file from an arbitrary reader. name is used only
// for error messages.
func Read(r io.Reader, name string) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("pose: %s:%d: %w", name, lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pose: %s: %w", name, err)
	}
	return records, nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 7 {
		return Record{}, fmt.Errorf("expected 7 comma-separated fields (filename,x,y,z,yaw,pitch,roll), got %d", len(fields))
	}

	filename := strings.TrimSpace(fields[0])
	if filename == "" {
		return Record{}, fmt.Errorf("empty filename field")
	}

	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return Record{}, fmt.Errorf("field %d (%q): %w", i+1, fields[i+1], err)
		}
		vals[i] = v
	}

	return Record{
		Filename: filename,
		Pose: Pose{
			X: vals[0], Y: vals[1], Z: vals[2],
			Yaw: vals[3], Pitch: vals[4], Roll: vals[5],
		},
	}, nil
}
