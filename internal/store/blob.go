package store

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// encodeGrid compresses m's binary form with gzip.
func encodeGrid(m *mat.Dense) ([]byte, error) {
	raw, err := m.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grid: %w", err)
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress grid: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeGrid reverses encodeGrid and checks the decoded shape.
func decodeGrid(blob []byte, rows, cols int) (*mat.Dense, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty grid blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress grid: %w", err)
	}
	var m mat.Dense
	if err := m.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grid: %w", err)
	}
	if r, c := m.Dims(); r != rows || c != cols {
		return nil, fmt.Errorf("grid blob is %dx%d, expected %dx%d", r, c, rows, cols)
	}
	return &m, nil
}
