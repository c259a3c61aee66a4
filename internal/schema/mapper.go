// Package schema maps physical input columns to the logical fields the
// cleaning pipeline reads. Input files arrive with arbitrary column
// names; a schema names which physical column holds each logical field.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aus-address-cleaner/internal/config"
)

// Logical field names every schema must map. IDField is optional.
const (
	FieldStreetAddress = "street_address"
	FieldSuburb        = "suburb"
	FieldState         = "state"
	FieldPostcode      = "postcode"
)

// Mapper resolves schema names against input headers.
type Mapper struct {
	schemas map[string]config.Schema
}

// NewMapper builds a Mapper from the configured schema set.
func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{schemas: cfg.Schemas}
}

// Schema returns the named schema, or an error listing what is available.
func (m *Mapper) Schema(name string) (config.Schema, error) {
	schema, ok := m.schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %q not found in configuration, available schemas: %s",
			name, strings.Join(m.Names(), ", "))
	}
	return schema, nil
}

// Names lists the configured schema names in sorted order.
func (m *Mapper) Names() []string {
	names := make([]string, 0, len(m.schemas))
	for name := range m.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MapColumns resolves the named schema against a header row, returning
// a Mapping that reads logical fields out of data rows. Required
// columns missing from the header produce an error naming them.
func (m *Mapper) MapColumns(header []string, name string) (*Mapping, error) {
	schema, err := m.Schema(name)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, len(header))
	for i, column := range header {
		position[column] = i
	}

	mapping := &Mapping{
		indexes: make(map[string]int, len(schema)),
		idIndex: -1,
	}

	var missing []string
	for logical, physical := range schema {
		idx, ok := position[physical]
		if !ok {
			if logical != config.SchemaIDField {
				missing = append(missing, physical)
			}
			continue
		}

		if logical == config.SchemaIDField {
			mapping.idIndex = idx
		} else {
			mapping.indexes[logical] = idx
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("required columns missing from input: %s", strings.Join(missing, ", "))
	}

	// A column literally named "id" is the fallback record identifier.
	if mapping.idIndex < 0 {
		if idx, ok := position["id"]; ok {
			mapping.idIndex = idx
		}
	}

	return mapping, nil
}

// Detect picks the schema whose physical columns overlap the header
// most. Ties keep the earlier schema in name order; no overlap at all
// falls back to "default".
func (m *Mapper) Detect(header []string) string {
	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[column] = true
	}

	best := "default"
	bestCount := 0

	for _, name := range m.Names() {
		count := 0
		for _, physical := range m.schemas[name] {
			if present[physical] {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = name
		}
	}

	return best
}

// Validate reports whether the header satisfies the named schema and
// which required physical columns are absent.
func (m *Mapper) Validate(header []string, name string) (bool, []string, error) {
	schema, err := m.Schema(name)
	if err != nil {
		return false, nil, err
	}

	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[column] = true
	}

	var missing []string
	for logical, physical := range schema {
		if logical == config.SchemaIDField {
			continue
		}
		if !present[physical] {
			missing = append(missing, physical)
		}
	}

	sort.Strings(missing)
	return len(missing) == 0, missing, nil
}

// Mapping reads logical fields from data rows positioned by one header.
type Mapping struct {
	indexes map[string]int
	idIndex int
}

// Value returns the row's value for a logical field, or empty when the
// field is unmapped or the row is short.
func (m *Mapping) Value(row []string, logical string) string {
	idx, ok := m.indexes[logical]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// RecordID returns the row's identifier: the schema's id column when
// mapped, otherwise a synthetic "REC000001"-style ID from the 1-based
// row number.
func (m *Mapping) RecordID(row []string, number int) string {
	if m.idIndex >= 0 && m.idIndex < len(row) && row[m.idIndex] != "" {
		return row[m.idIndex]
	}
	return fmt.Sprintf("REC%06d", number)
}
