// Package compression wraps file streams in a compression codec.
//
// # Overview
//
// File connectors read and write through NewReader and NewWriter so every
// file format can be stored compressed. Supported algorithms:
//   - Gzip: wide compatibility, good compression
//   - Zstd: best compression ratio, good speed
//   - Snappy/S2: best for speed, moderate compression
//   - LZ4: extremely fast, decent compression
//
// The algorithm can be chosen explicitly or derived from the file
// extension with FromPath:
//
//	alg := compression.FromPath("rows.csv.zst") // Zstd
//	w, err := compression.NewWriter(f, alg, compression.Default)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
package compression

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Auto selects the algorithm from the file extension
	Auto Algorithm = "auto"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy framed compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".gzip":   Gzip,
	".zst":    Zstd,
	".zstd":   Zstd,
	".s2":     S2,
	".sz":     Snappy,
	".snappy": Snappy,
	".lz4":    LZ4,
}

// ParseAlgorithm resolves an algorithm name. An empty name means Auto.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case "":
		return Auto, nil
	case None, Auto, Gzip, Snappy, LZ4, Zstd, S2:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm %q", name)
	}
}

// FromPath picks the algorithm from the extension of path.
func FromPath(path string) Algorithm {
	if alg, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return alg
	}
	return None
}

// Resolve turns Auto into the algorithm implied by path.
func Resolve(alg Algorithm, path string) Algorithm {
	if alg == Auto || alg == "" {
		return FromPath(path)
	}
	return alg
}

// NewWriter wraps w so that everything written is compressed with alg.
// Closing the returned writer flushes the codec but does not close w.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, Auto, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriterLevel(w, mapGzipLevel(level))
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
	case S2:
		return s2.NewWriter(w), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, err
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %q", alg)
	}
}

// NewReader wraps r so that reads return the decompressed stream.
// Closing the returned reader releases the codec but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, Auto, "":
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm %q", alg)
	}
}

// Compress compresses data in memory.
func Compress(data []byte, alg Algorithm, level Level) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, alg, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decompresses data in memory.
func Decompress(data []byte, alg Algorithm) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(data), alg)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
