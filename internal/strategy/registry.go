package strategy

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// Constructor builds a strategy bound to its configuration block.
type Constructor func(cfgs Configs) (Strategy, error)

// Registry maps strategy names to constructors.
type Registry struct {
	constructors map[string]Constructor
	mu           sync.RWMutex
}

// NewRegistry returns a registry holding every built-in strategy.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}

	_ = r.Register(NameEMACrossV1, func(c Configs) (Strategy, error) { return NewEMACrossV1(c.EMACrossV1) })
	_ = r.Register(NameEMATrendV2, func(c Configs) (Strategy, error) { return NewEMATrendV2(c.EMATrendV2) })
	_ = r.Register(NameEMATrendV3, func(c Configs) (Strategy, error) { return NewEMATrendV3(c.EMATrendV3) })
	_ = r.Register(NameNDXShortTerm, func(c Configs) (Strategy, error) { return NewNDXShortTerm(c.NDXShortTerm) })
	_ = r.Register(NameNDXMA50VolumeRSI, func(c Configs) (Strategy, error) { return NewNDXMA50VolumeRSI(c.NDXMA50VolumeRSI) })

	return r
}

// Register adds a constructor under name.
func (r *Registry) Register(name string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "Register: strategy %s already registered", name)
	}

	r.constructors[name] = ctor

	return nil
}

// Create builds the named strategy from its block in cfgs.
func (r *Registry) Create(name string, cfgs Configs) (Strategy, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "unknown strategy: %s", name)
	}

	return ctor(cfgs)
}

// Names lists the registered strategies in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
