package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TommyBurger4/ClubSportFrance/assets"
)

type catalogFile struct {
	Directory []SportInfo   `yaml:"directory"`
	Sports    []SportSchema `yaml:"sports"`
}

// Parse decodes a catalog YAML document and validates it.
func Parse(r io.Reader) (*Catalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file catalogFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog file is empty")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c, err := New(file.Sports, file.Directory)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// Default parses the catalog embedded in the binary.
func Default() (*Catalog, error) {
	file, err := assets.CatalogFS.Open(assets.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded catalog: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// LoadFile parses a catalog from disk, replacing the embedded one.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}
