// Package catalog loads the list of movements offered by the selector.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/artmap/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed movements.yaml
var defaultCatalog []byte

// Sentinel kinds for catalog errors.
var (
	ErrInvalidCatalog = errors.New("invalid movement catalog")
)

// Catalog is the ordered movement list plus the pre-selected entry.
type Catalog struct {
	Default   model.MovementID `yaml:"default"`
	Movements []model.Movement `yaml:"movements"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Decode(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode parses a YAML catalog, normalizes ids and drops duplicates.
func Decode(r io.Reader) (*Catalog, error) {
	var raw Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{Default: model.NormalizeMovementID(string(raw.Default))}
	seen := make(map[model.MovementID]struct{}, len(raw.Movements))
	for _, m := range raw.Movements {
		id := model.NormalizeMovementID(string(m.ID))
		if id.Empty() {
			return nil, fmt.Errorf("%w: movement %q has no id", ErrInvalidCatalog, m.Label)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		label := m.Label
		if label == "" {
			label = string(id)
		}
		c.Movements = append(c.Movements, model.Movement{ID: id, Label: label})
	}
	if len(c.Movements) == 0 {
		return nil, fmt.Errorf("%w: no movements", ErrInvalidCatalog)
	}
	if !c.Default.Empty() && !c.Has(c.Default) {
		return nil, fmt.Errorf("%w: default %s is not listed", ErrInvalidCatalog, c.Default)
	}
	return c, nil
}

// Has reports whether id is part of the catalog.
func (c *Catalog) Has(id model.MovementID) bool {
	for _, m := range c.Movements {
		if m.ID == id {
			return true
		}
	}
	return false
}

// IDs returns the movement ids in catalog order.
func (c *Catalog) IDs() []model.MovementID {
	ids := make([]model.MovementID, len(c.Movements))
	for i, m := range c.Movements {
		ids[i] = m.ID
	}
	return ids
}
