package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"asset-exchange/internals/core/domain"

	"github.com/google/uuid"
)

var (
	ErrDuplicateRelationship = errors.New("exchange relationship already declared")
	ErrSameSymbol            = errors.New("exchange relationship needs two distinct symbols")
	ErrEmptySymbol           = errors.New("exchange relationship symbol cannot be empty")
)

// Registry holds the declared exchange relationships: which symbol pairs have
// a rate provider configured. Every Add bumps the version so converter owners
// can detect that their graph snapshot went stale and rebuild.
type Registry struct {
	mu            sync.RWMutex
	relationships []domain.ExchangeRelationship
	version       uint64
}

func New() *Registry {
	return &Registry{}
}

// NewFromPairs seeds a registry from a "FROM:TO,FROM:TO" config string.
func NewFromPairs(pairs string) (*Registry, error) {
	r := New()
	for _, pair := range strings.Split(pairs, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid exchange pair %q, expected FROM:TO", pair)
		}
		from := domain.SymbolID(strings.ToUpper(strings.TrimSpace(parts[0])))
		to := domain.SymbolID(strings.ToUpper(strings.TrimSpace(parts[1])))
		if _, err := r.Add(from, to); err != nil {
			return nil, fmt.Errorf("invalid exchange pair %q: %w", pair, err)
		}
	}
	return r, nil
}

func (r *Registry) Add(from, to domain.SymbolID) (domain.ExchangeRelationship, error) {
	if from == "" || to == "" {
		return domain.ExchangeRelationship{}, ErrEmptySymbol
	}
	if from == to {
		return domain.ExchangeRelationship{}, fmt.Errorf("%w: %s", ErrSameSymbol, from)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rel := range r.relationships {
		if rel.FromSymbolID == from && rel.ToSymbolID == to {
			return domain.ExchangeRelationship{}, fmt.Errorf("%w: %s -> %s", ErrDuplicateRelationship, from, to)
		}
	}

	rel := domain.ExchangeRelationship{
		ID:           uuid.NewString(),
		FromSymbolID: from,
		ToSymbolID:   to,
	}
	r.relationships = append(r.relationships, rel)
	r.version++
	return rel, nil
}

// List returns a snapshot of the declared relationships.
func (r *Registry) List() []domain.ExchangeRelationship {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ExchangeRelationship, len(r.relationships))
	copy(out, r.relationships)
	return out
}

// Version increases monotonically with every successful Add.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
