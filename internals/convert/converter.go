package convert

import (
	"errors"
	"fmt"
	"sync"

	"asset-exchange/internals/core/domain"
)

var (
	ErrUnknownSymbol   = errors.New("asset symbol not part of any exchange relationship")
	ErrUnreachable     = errors.New("no conversion path between assets")
	ErrRateUnavailable = errors.New("no exchange rate available for date")
)

// Converter converts amounts between asset symbols on historical dates by
// chaining per-edge rates along the shortest path through the conversion
// graph. The map and graph are immutable after construction: when the set of
// exchange relationships or their date coverage changes, build a new
// Converter instead of mutating this one, otherwise cached paths go stale.
// Safe for concurrent use; one instance is shared across request goroutines.
type Converter struct {
	conversionMap domain.ConversionMap
	graph         *graph

	// pathCache memoizes resolved routes per ordered "src|dst" pair for the
	// lifetime of this instance. "no path" is cached as an empty slice so
	// repeated failed lookups stay O(1). Guarded by pathMu, the one piece of
	// mutable state on a shared Converter.
	pathMu    sync.Mutex
	pathCache map[string][]domain.SymbolID
}

func NewConverter(conversionMap domain.ConversionMap) *Converter {
	return &Converter{
		conversionMap: conversionMap,
		graph:         newGraph(conversionMap),
		pathCache:     make(map[string][]domain.SymbolID),
	}
}

// Knows reports whether the symbol appears on either side of any exchange
// relationship in the conversion map.
func (c *Converter) Knows(symbol domain.SymbolID) bool {
	return c.graph.hasNode(symbol)
}

// ConvertAmount converts req.Amount from req.FromSymbolID to req.ToSymbolID
// at the rates in effect on req.Date. "No conversion available" is an
// ordinary outcome signalled by a sentinel error, never a panic:
// ErrUnknownSymbol when a symbol is not a graph node, ErrUnreachable when no
// connecting path exists, ErrRateUnavailable when a path edge has no rate
// entry for the requested date.
func (c *Converter) ConvertAmount(req domain.ConversionRequest) (float64, error) {
	from, to := req.FromSymbolID, req.ToSymbolID

	// Converting a symbol to itself is the identity rate regardless of what
	// the graph holds, no path resolution involved.
	if from == to {
		return req.Amount, nil
	}

	// The path resolver assumes both endpoints are graph members, so the
	// unknown-symbol check has to come before it runs.
	if !c.graph.hasNode(from) || !c.graph.hasNode(to) {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnknownSymbol, from, to)
	}

	path := c.resolvePath(from, to)
	if len(path) < 2 {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnreachable, from, to)
	}

	rate := 1.0
	for i := 0; i < len(path)-1; i++ {
		edgeRate, ok := c.edgeRate(path[i], path[i+1], req.Date)
		if !ok {
			// A path edge with no rate entry for this date is a hard
			// failure, not something to skip or interpolate over.
			return 0, fmt.Errorf("%w: %s -> %s on %s", ErrRateUnavailable, path[i], path[i+1], req.Date)
		}
		rate *= edgeRate
	}
	return req.Amount * rate, nil
}

// Route returns the cached hop sequence from one symbol to the other, or nil
// when either symbol is unknown or no path exists. The cache stores the path
// only; rate lookup is redone per date on every conversion.
func (c *Converter) Route(from, to domain.SymbolID) []domain.SymbolID {
	if from == to || !c.graph.hasNode(from) || !c.graph.hasNode(to) {
		return nil
	}
	if path := c.resolvePath(from, to); len(path) >= 2 {
		return path
	}
	return nil
}

func (c *Converter) resolvePath(src, dst domain.SymbolID) []domain.SymbolID {
	// "|" never appears in a symbol id, so the joined key is unambiguous.
	key := string(src) + "|" + string(dst)

	c.pathMu.Lock()
	defer c.pathMu.Unlock()

	if path, ok := c.pathCache[key]; ok {
		return path
	}
	path := c.graph.shortestPath(src, dst)
	if path == nil {
		path = []domain.SymbolID{}
	}
	c.pathCache[key] = path
	return path
}

// edgeRate looks up the rate for one hop on one date: direct entry first,
// then the reciprocal of the reverse entry.
func (c *Converter) edgeRate(from, to domain.SymbolID, date string) (float64, bool) {
	if rate, ok := c.conversionMap[from][to][date]; ok {
		return rate, true
	}
	if rate, ok := c.conversionMap[to][from][date]; ok {
		return 1 / rate, true
	}
	return 0, false
}
