package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"asset-exchange/internals/convert"
	"asset-exchange/internals/core/domain"
	"asset-exchange/internals/registry"
	"asset-exchange/internals/repository"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount, must be positive")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
)

// ConversionService is the application entry point for currency
// normalization. It owns the current converter pair and rebuilds them when
// the declared relationships change or a conversion date falls outside the
// covered range.
type ConversionService interface {
	// ConvertAmount converts via the multi-hop graph converter. "No
	// conversion available" surfaces as one of the convert package
	// sentinels (ErrUnknownSymbol, ErrUnreachable, ErrRateUnavailable).
	ConvertAmount(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error)
	// ConvertAmountDirect uses the single-hop strategy: direct or reverse
	// lookup only, falling back to the unconverted amount on a miss. The
	// choice of strategy is deliberately explicit at the call site.
	ConvertAmountDirect(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error)
	// Rebuild discards the current converters and constructs fresh ones
	// from the registry and repository.
	Rebuild(ctx context.Context) error
}

type conversionServiceImpl struct {
	repo       repository.SeriesRepository
	registry   *registry.Registry
	windowDays int

	mu           sync.Mutex
	converter    *convert.Converter
	simple       *convert.SimpleConverter
	rangeStart   string
	rangeEnd     string
	builtVersion uint64
}

func NewConversionService(repo repository.SeriesRepository, reg *registry.Registry, windowDays int) ConversionService {
	return &conversionServiceImpl{
		repo:       repo,
		registry:   reg,
		windowDays: windowDays,
	}
}

func (s *conversionServiceImpl) ConvertAmount(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	req, err := s.normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	converter, _, err := s.converterFor(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	converted, err := converter.ConvertAmount(req)
	if err != nil {
		return nil, err
	}

	return &domain.ConversionResult{
		FromSymbolID:    req.FromSymbolID,
		ToSymbolID:      req.ToSymbolID,
		OriginalAmount:  req.Amount,
		ConvertedAmount: converted,
		Rate:            converted / req.Amount,
		Date:            req.Date,
		Path:            converter.Route(req.FromSymbolID, req.ToSymbolID),
	}, nil
}

func (s *conversionServiceImpl) ConvertAmountDirect(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	req, err := s.normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	_, simple, err := s.converterFor(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	converted := simple.ConvertAmount(req)
	return &domain.ConversionResult{
		FromSymbolID:    req.FromSymbolID,
		ToSymbolID:      req.ToSymbolID,
		OriginalAmount:  req.Amount,
		ConvertedAmount: converted,
		Rate:            converted / req.Amount,
		Date:            req.Date,
	}, nil
}

func (s *conversionServiceImpl) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end := s.rangeFor("")
	return s.rebuildLocked(ctx, start, end)
}

func (s *conversionServiceImpl) normalizeRequest(req domain.ConversionRequest) (domain.ConversionRequest, error) {
	if req.Amount <= 0 {
		return req, ErrInvalidAmount
	}
	if req.Date == "" {
		req.Date = domain.FormatDate(time.Now().UTC())
	} else if _, err := domain.ParseDate(req.Date); err != nil {
		return req, fmt.Errorf("%w: %q", ErrInvalidDateFormat, req.Date)
	}
	return req, nil
}

// converterFor returns converters whose map covers date and whose graph
// matches the current registry, rebuilding them when either went stale.
// Converters are never mutated in place; a rebuild swaps in new instances,
// which also discards the memoized path cache.
func (s *conversionServiceImpl) converterFor(ctx context.Context, date string) (*convert.Converter, *convert.SimpleConverter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.converter != nil &&
		s.builtVersion == s.registry.Version() &&
		s.rangeStart <= date && date <= s.rangeEnd {
		return s.converter, s.simple, nil
	}

	start, end := s.rangeFor(date)
	if err := s.rebuildLocked(ctx, start, end); err != nil {
		return nil, nil, err
	}
	return s.converter, s.simple, nil
}

// rangeFor computes the declared [start, end] range for a rebuild: the
// configured window back from today, widened so a conversion date before the
// window is still covered. The end is always today; a future date stays out
// of range and surfaces as a missing rate, there is nothing to fetch for it.
func (s *conversionServiceImpl) rangeFor(date string) (string, string) {
	now := time.Now().UTC()
	start := domain.FormatDate(now.AddDate(0, 0, -s.windowDays))
	end := domain.FormatDate(now)
	if date != "" && date < start {
		start = date
	}
	return start, end
}

func (s *conversionServiceImpl) rebuildLocked(ctx context.Context, start, end string) error {
	version := s.registry.Version()
	rels := s.registry.List()
	series := s.repo.GetAllRateSeries(ctx, rels, start, end)

	conversionMap, err := convert.BuildConversionMap(start, end, series)
	if err != nil {
		return fmt.Errorf("failed to build conversion map: %w", err)
	}
	lenientMap, err := convert.BuildLenientConversionMap(start, end, series)
	if err != nil {
		return fmt.Errorf("failed to build lenient conversion map: %w", err)
	}

	s.converter = convert.NewConverter(conversionMap)
	s.simple = convert.NewSimpleConverter(lenientMap)
	s.rangeStart = start
	s.rangeEnd = end
	s.builtVersion = version

	log.Printf("Converter rebuilt: %d relationships, range %s..%s", len(rels), start, end)
	return nil
}
