package routes

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTree []byte

// Load decodes a YAML route tree and validates it.
func Load(r io.Reader) (*Tree, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var tree Tree
	if err := dec.Decode(&tree); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrMalformedRouteTree)
		}
		return nil, fmt.Errorf("routes: decode: %w", err)
	}
	if len(tree.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes declared", ErrMalformedRouteTree)
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return &tree, nil
}

// LoadFile reads a route tree from the filesystem.
func LoadFile(fs afero.Fs, path string) (*Tree, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("routes: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns a fresh copy of the built-in console route tree.
func Default() (*Tree, error) {
	return Load(bytes.NewReader(defaultTree))
}
