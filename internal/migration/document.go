// Package migration exports the whole entity tree as a backup document and
// restores one into the remote store by destructive replace.
package migration

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/hyperengineering/cdusync/internal/types"
	"github.com/hyperengineering/cdusync/internal/validation"
)

// ErrMalformedDocument is returned by Parse for anything that is not a
// backup document. Nothing has been written when it is returned.
var ErrMalformedDocument = errors.New("malformed backup document")

// Export encodes d as an indented backup document.
func Export(d *types.Dataset) ([]byte, error) {
	if d == nil {
		d = types.NewDataset()
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// Parse decodes a backup document. Keys missing from older documents
// default to empty collections; numeric fields stored as strings are
// coerced. A document that is not a JSON object, has a collection of the
// wrong shape, or names an invalid workspace fails with
// ErrMalformedDocument.
func Parse(data []byte) (*types.Dataset, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}

	d := types.NewDataset()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	d.Normalize()

	if err := validateViews(d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return d, nil
}

func validateViews(d *types.Dataset) error {
	var c validation.Collector
	check := func(domain string, views []string) {
		for _, v := range views {
			c.Add(validation.ValidateViewType(domain+"."+v, v))
		}
	}
	check("scriptCategories", sortedKeys(d.ScriptCategories))
	check("scriptData", sortedKeys(d.ScriptData))
	check("contactCategories", sortedKeys(d.ContactCategories))
	check("contactData", sortedKeys(d.ContactData))
	check("valueTableCategories", sortedKeys(d.ValueTableCategories))
	check("valueTableData", sortedKeys(d.ValueTableData))
	check("professionalData", sortedKeys(d.ProfessionalData))
	return c.Err()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
