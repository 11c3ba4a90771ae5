// Package pptx provides read/mutate/save access to PresentationML packages.
// Parts are held in memory and mutated as raw XML; untouched parts are
// written back byte for byte, so template content the engine never visits
// survives a round trip unchanged.
package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// ErrPartNotFound indicates a named package part does not exist.
var ErrPartNotFound = errors.New("part not found")

// ErrNotPresentation indicates the archive is not a PresentationML package.
var ErrNotPresentation = errors.New("not a presentation package")

// Package is an OOXML package with in-memory part mutation.
type Package struct {
	names []string
	parts map[string][]byte
}

// OpenPackage reads every part of the archive at path into memory.
func OpenPackage(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	p := &Package{parts: make(map[string][]byte, len(reader.File))}
	for _, part := range reader.File {
		rc, err := part.Open()
		if err != nil {
			return nil, fmt.Errorf("read part %q: %w", part.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %q: %w", part.Name, err)
		}
		p.names = append(p.names, part.Name)
		p.parts[part.Name] = content
	}

	return p, nil
}

// Has reports whether a part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Read returns the current content of a part.
func (p *Package) Read(name string) ([]byte, error) {
	data, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	return data, nil
}

// Write replaces a part's content, creating the part if it is new. New
// parts keep archive order after the originals.
func (p *Package) Write(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.names = append(p.names, name)
	}
	p.parts[name] = data
}

// Names returns the part names in archive order.
func (p *Package) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Save writes the package to path atomically: the archive is assembled in
// memory and swapped into place in one rename.
func (p *Package) Save(path string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("write part %q: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return fmt.Errorf("write part %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}
