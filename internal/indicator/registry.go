package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// ColumnRegistry manages the columns available to strategies.
type ColumnRegistry interface {
	RegisterColumn(column Column) error
	GetColumn(name string) (Column, error)
	ListColumns() []string
	RemoveColumn(name string) error
	// Attach computes every requested column missing from the frame.
	Attach(f *Frame, columns ...Column) error
}

// ColumnRegistryV1 manages all available columns.
type ColumnRegistryV1 struct {
	columns map[string]Column
	mu      sync.RWMutex
}

// NewColumnRegistry creates a registry preloaded with the default columns.
func NewColumnRegistry() ColumnRegistry {
	r := &ColumnRegistryV1{
		columns: make(map[string]Column),
		mu:      sync.RWMutex{},
	}

	for _, c := range DefaultColumns() {
		_ = r.RegisterColumn(c)
	}

	return r
}

// DefaultColumns are the columns the data preprocessor always attaches.
func DefaultColumns() []Column {
	return []Column{
		RSIColumn{Period: 9},
		RSIColumn{Period: 14},
		RSIColumn{Period: 24},
		SMAColumn{Period: 5},
		SMAColumn{Period: 20},
		SMAColumn{Period: 50},
		VolumeRatioColumn{Period: 20, Cap: 3.0},
	}
}

// RegisterColumn adds a column to the registry.
func (r *ColumnRegistryV1) RegisterColumn(column Column) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := column.Name()
	if _, exists := r.columns[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterColumn: column with name %s already registered", name)
	}

	r.columns[name] = column

	return nil
}

// GetColumn retrieves a column by name.
func (r *ColumnRegistryV1) GetColumn(name string) (Column, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	column, exists := r.columns[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetColumn: column with name %s not found", name)
	}

	return column, nil
}

// ListColumns returns the registered column names in sorted order.
func (r *ColumnRegistryV1) ListColumns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.columns))
	for name := range r.columns {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// RemoveColumn removes a column from the registry.
func (r *ColumnRegistryV1) RemoveColumn(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.columns[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveColumn: column with name %s not found", name)
	}

	delete(r.columns, name)

	return nil
}

// Attach computes each requested column that the frame does not already
// carry and records unknown columns in the registry.
func (r *ColumnRegistryV1) Attach(f *Frame, columns ...Column) error {
	for _, c := range columns {
		if f.Has(c.Name()) {
			continue
		}

		if err := r.RegisterColumn(c); err != nil && !errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists) {
			return err
		}

		if err := f.SetColumn(c.Name(), c.Compute(f)); err != nil {
			return err
		}
	}

	return nil
}
