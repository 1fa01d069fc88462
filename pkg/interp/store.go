package interp

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/leapstack-labs/looplang/pkg/token"
)

// Store maps variable names to natural numbers. Reading a name that was
// never assigned yields zero. Values are copied on the way in and out, so
// callers can never alias or mutate stored numbers.
//
// A Store is owned by one execution and is not safe for concurrent use.
type Store struct {
	vars map[string]*big.Int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{vars: make(map[string]*big.Int)}
}

// NewStoreFrom returns a store seeded with a copy of bindings. Nil or
// negative values, names that are not identifiers and names that differ only
// in case are rejected with an InvalidBinding EvalError.
func NewStoreFrom(bindings map[string]*big.Int) (*Store, error) {
	s := NewStore()
	for _, name := range sortedKeys(bindings) {
		if s.Has(name) {
			return nil, &EvalError{Kind: InvalidBinding, Name: name, Message: ErrDuplicateBinding}
		}
		if err := s.Bind(name, bindings[name]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Bind validates and sets an initial binding.
func (s *Store) Bind(name string, v *big.Int) error {
	switch {
	case !token.IsIdentifier(name):
		return &EvalError{Kind: InvalidBinding, Name: name, Message: ErrBadName}
	case v == nil:
		return &EvalError{Kind: InvalidBinding, Name: name, Message: ErrNilBinding}
	case v.Sign() < 0:
		return &EvalError{Kind: InvalidBinding, Name: name, Message: fmt.Sprintf(ErrNegativeBinding, v)}
	}
	s.set(token.CanonicalName(name), v)
	return nil
}

// Get returns a copy of the value bound to name, or zero.
func (s *Store) Get(name string) *big.Int {
	if v, ok := s.vars[token.CanonicalName(name)]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Has reports whether name has been assigned.
func (s *Store) Has(name string) bool {
	_, ok := s.vars[token.CanonicalName(name)]
	return ok
}

// Len returns the number of bound variables.
func (s *Store) Len() int { return len(s.vars) }

// Names returns the bound variable names in sorted order.
func (s *Store) Names() []string { return sortedKeys(s.vars) }

// Snapshot returns a deep copy of all bindings.
func (s *Store) Snapshot() map[string]*big.Int {
	out := make(map[string]*big.Int, len(s.vars))
	for name, v := range s.vars {
		out[name] = new(big.Int).Set(v)
	}
	return out
}

// Reset removes all bindings.
func (s *Store) Reset() {
	clear(s.vars)
}

// lookup returns the stored value without copying. The result must not be
// mutated.
func (s *Store) lookup(name string) *big.Int {
	if v, ok := s.vars[name]; ok {
		return v
	}
	return zero
}

// set stores a copy of v, clamping negative values to zero.
func (s *Store) set(name string, v *big.Int) {
	if v.Sign() < 0 {
		s.vars[name] = new(big.Int)
		return
	}
	s.vars[name] = new(big.Int).Set(v)
}

var zero = new(big.Int)

func sortedKeys(m map[string]*big.Int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
