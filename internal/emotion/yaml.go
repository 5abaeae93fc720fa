package emotion

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Emotions []*Config `yaml:"emotions"`
}

// MarshalCatalogYAML encodes the catalog in catalog order.
func MarshalCatalogYAML(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(catalogFile{Emotions: c.Configs()}); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadCatalogYAML decodes a catalog document. Unknown keys are rejected and
// every entry is validated; a partial catalog is allowed.
func LoadCatalogYAML(data []byte) (*Catalog, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	var errs []error
	seen := make(map[Type]bool, len(doc.Emotions))
	for i, cfg := range doc.Emotions {
		if cfg == nil {
			errs = append(errs, fmt.Errorf("%w: entry %d is empty", ErrInvalidConfig, i))
			continue
		}
		if seen[cfg.ID] {
			errs = append(errs, fmt.Errorf("%w: %s: duplicate entry", ErrInvalidConfig, cfg.ID))
		}
		seen[cfg.ID] = true
		if err := cfg.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return NewCatalog(doc.Emotions...), nil
}

// Merge returns a catalog with the entries of over replacing those of c.
func (c *Catalog) Merge(over *Catalog) *Catalog {
	cfgs := c.Configs()
	if over != nil {
		cfgs = append(cfgs, over.Configs()...)
	}
	return NewCatalog(cfgs...)
}
