// Package dealsource loads deal-risk portfolios from files, stdin or the
// embedded demo fixture.
package dealsource

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sentinelhq/sentinel/internal/contract"
	"github.com/sentinelhq/sentinel/schema"
)

// StdinPath selects standard input as the deal source.
const StdinPath = "-"

var (
	// ErrEmptyInput is returned when a source decodes to zero records.
	ErrEmptyInput = errors.New("input contains no deals")

	// ErrNoInput is returned when neither an input path nor the demo fixture is selected.
	ErrNoInput = errors.New("no input selected: pass --input <file>, --input - for stdin, or --demo")
)

//go:embed demo_deals.json
var demoDeals []byte

// FileSource reads a JSON portfolio from disk.
type FileSource struct {
	Path string
}

// ReaderSource reads a JSON portfolio from an arbitrary reader such as stdin.
type ReaderSource struct {
	Reader io.Reader
	Label  string
}

// DemoSource serves the embedded five-deal sample portfolio.
type DemoSource struct{}

var (
	_ contract.DealSource = FileSource{}   // Compile-time check
	_ contract.DealSource = ReaderSource{} // Compile-time check
	_ contract.DealSource = DemoSource{}   // Compile-time check
)

// FromConfig selects the deal source named by the configuration.
func FromConfig(cfg *contract.Config) (contract.DealSource, error) {
	switch {
	case cfg.InputPath == StdinPath:
		return ReaderSource{Reader: os.Stdin, Label: "stdin"}, nil
	case cfg.InputPath != "":
		return FileSource{Path: cfg.InputPath}, nil
	case cfg.UseDemo:
		return DemoSource{}, nil
	}
	return nil, ErrNoInput
}

// ForPath returns the source for a path, treating "-" as stdin.
func ForPath(path string) contract.DealSource {
	if path == StdinPath {
		return ReaderSource{Reader: os.Stdin, Label: "stdin"}
	}
	return FileSource{Path: path}
}

// Load reads and decodes the file.
func (s FileSource) Load(ctx context.Context) ([]schema.DealRisk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deals file %q: %w", s.Path, err)
	}
	defer func() { _ = f.Close() }()

	deals, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read deals from %q: %w", s.Path, err)
	}
	return deals, nil
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// Load decodes everything the reader yields.
func (s ReaderSource) Load(ctx context.Context) ([]schema.DealRisk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deals, err := Decode(s.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read deals from %s: %w", s.Name(), err)
	}
	return deals, nil
}

// Name returns the reader label.
func (s ReaderSource) Name() string {
	if s.Label == "" {
		return "reader"
	}
	return s.Label
}

// Load decodes the embedded fixture.
func (DemoSource) Load(ctx context.Context) ([]schema.DealRisk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(demoDeals))
}

// Name returns "demo".
func (DemoSource) Name() string { return "demo" }

// Decode parses a JSON array of deals. A single object is accepted and
// treated as a one-element array.
func Decode(r io.Reader) ([]schema.DealRisk, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}

	var objects []json.RawMessage
	if trimmed[0] == '{' {
		objects = []json.RawMessage{trimmed}
	} else if err := json.Unmarshal(trimmed, &objects); err != nil {
		return nil, fmt.Errorf("invalid JSON: expected an array of deal objects: %w", err)
	}

	deals := make([]schema.DealRisk, 0, len(objects))
	for i, obj := range objects {
		d, err := schema.DecodeDeal(obj)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON deal object at index %d: %w", i, err)
		}
		deals = append(deals, d)
	}

	if len(deals) == 0 {
		return nil, ErrEmptyInput
	}
	return deals, nil
}
