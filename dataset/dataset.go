// Package dataset loads the produce collection used by the demo commands.
// Items come from an embedded default file or any produce.yaml on disk.
package dataset

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/roster/pipeline"
)

//go:embed data/produce.yaml
var embedded embed.FS

// Item is a single produce record.
type Item struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Color  string  `yaml:"color"`
	Family string  `yaml:"family"`
	Weight float64 `yaml:"weight"` // grams
	Price  float64 `yaml:"price"`  // per kilogram
	Stock  int     `yaml:"stock"`
}

// File is the root structure for produce.yaml
type File struct {
	Produce []Item `yaml:"produce"`
}

// Load reads and parses a produce file from the filesystem.
func Load(fsys fs.FS, path string) ([]Item, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parse(content, path)
}

// LoadFile reads and parses a produce file from disk.
func LoadFile(path string) ([]Item, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is a user-supplied dataset path
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parse(content, path)
}

func parse(content []byte, path string) ([]Item, error) {
	var file File
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Produce) == 0 {
		return nil, fmt.Errorf("parse %s: no produce entries", path)
	}
	return file.Produce, nil
}

var (
	defaultOnce  sync.Once
	defaultItems []Item
)

// Default returns the embedded produce collection.
func Default() []Item {
	defaultOnce.Do(func() {
		items, err := Load(embedded, "data/produce.yaml")
		if err != nil {
			// The embedded file is validated by the package tests.
			panic(fmt.Sprintf("embedded dataset: %v", err))
		}
		defaultItems = items
	})
	return defaultItems
}

// Accessor resolves Item fields by name for the pipeline.
func Accessor() pipeline.Accessor[Item] {
	return pipeline.FieldAccessor[Item]()
}
