// Package fileio opens the files of file connectors through the configured
// compression codec. The path "-" stands for stdin or stdout.
package fileio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/colconv/pkg/compression"
	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/errors"
)

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

const bufferSize = 64 * 1024

// Algorithm resolves the codec configured for cfg.
func Algorithm(cfg config.ConnectorConfig) (compression.Algorithm, error) {
	alg, err := compression.ParseAlgorithm(cfg.Compression)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeConfig, "invalid compression")
	}
	return compression.Resolve(alg, cfg.Path), nil
}

// Open returns a buffered reader of the decompressed content of cfg.Path.
func Open(cfg config.ConnectorConfig) (io.ReadCloser, error) {
	if cfg.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "path is required")
	}
	alg, err := Algorithm(cfg)
	if err != nil {
		return nil, err
	}

	var file *os.File
	if cfg.Path == Stdio {
		file = os.Stdin
	} else {
		file, err = os.Open(cfg.Path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").
				WithDetail("path", cfg.Path)
		}
	}

	codec, err := compression.NewReader(bufio.NewReaderSize(file, bufferSize), alg)
	if err != nil {
		closeFile(file)
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open decompressor").
			WithDetail("compression", string(alg))
	}
	return &reader{ReadCloser: codec, file: file}, nil
}

// Create truncates cfg.Path and returns a writer that compresses into it.
// Parent directories are created. Close flushes every layer.
func Create(cfg config.ConnectorConfig) (io.WriteCloser, error) {
	if cfg.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "path is required")
	}
	alg, err := Algorithm(cfg)
	if err != nil {
		return nil, err
	}

	var file *os.File
	if cfg.Path == Stdio {
		file = os.Stdout
	} else {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create directory").
					WithDetail("path", dir)
			}
		}
		file, err = os.Create(cfg.Path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create file").
				WithDetail("path", cfg.Path)
		}
	}

	buf := bufio.NewWriterSize(file, bufferSize)
	codec, err := compression.NewWriter(buf, alg, compression.Default)
	if err != nil {
		closeFile(file)
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open compressor").
			WithDetail("compression", string(alg))
	}
	return &writer{WriteCloser: codec, buf: buf, file: file}, nil
}

type reader struct {
	io.ReadCloser
	file *os.File
}

func (r *reader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := closeFile(r.file); err == nil {
		err = cerr
	}
	return err
}

type writer struct {
	io.WriteCloser
	buf  *bufio.Writer
	file *os.File
}

func (w *writer) Close() error {
	err := w.WriteCloser.Close()
	if ferr := w.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := closeFile(w.file); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close file")
	}
	return nil
}

func closeFile(f *os.File) error {
	if f == os.Stdin || f == os.Stdout {
		return nil
	}
	return f.Close()
}
