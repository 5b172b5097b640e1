// Package store persists the bus table and the multi-strip section in a
// single TOML strips file.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/multistrip"
)

// DefaultPath is used when no strips file is configured.
const DefaultPath = "strips.toml"

// Document is the complete strips file for TOML marshaling.
type Document struct {
	Version    int                 `toml:"version" json:"version"`
	Busses     []busses.Config     `toml:"bus" json:"bus"`
	MultiStrip *multistrip.Section `toml:"MultiStripType,omitempty" json:"MultiStripType,omitempty"`
}

// File is a strips file on disk and its last loaded contents.
type File struct {
	path string
	doc  Document
}

// New creates a store for path. Nothing is read until Load.
func New(path string) *File {
	if path == "" {
		path = DefaultPath
	}
	return &File{
		path: path,
		doc:  Document{Version: 1},
	}
}

// Open creates a store for path and loads it.
func Open(path string) (*File, error) {
	f := New(path)
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Load reads the strips file. A missing file leaves an empty document.
func (f *File) Load() error {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read strips file: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return err
	}
	f.doc = doc
	return nil
}

// Parse decodes a strips document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse strips file: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	return doc, nil
}

// Save writes the current document, creating the parent directory if needed.
func (f *File) Save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create strips directory: %w", err)
	}

	data, err := toml.Marshal(f.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal strips file: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write strips file: %w", err)
	}
	return nil
}

// Document returns a copy of the loaded document.
func (f *File) Document() Document {
	doc := f.doc
	doc.Busses = slices.Clone(f.doc.Busses)
	return doc
}

// Busses returns the bus definitions.
func (f *File) Busses() []busses.Config {
	return slices.Clone(f.doc.Busses)
}

// SetBusses replaces the bus definitions.
func (f *File) SetBusses(cfgs []busses.Config) {
	f.doc.Busses = slices.Clone(cfgs)
}

// Section returns the multi-strip section, or nil if the file has none.
func (f *File) Section() *multistrip.Section {
	return f.doc.MultiStrip
}

// SetSection replaces the multi-strip section.
func (f *File) SetSection(s *multistrip.Section) {
	f.doc.MultiStrip = s
}
