package rules

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ifc-cost/internal/errors"
	"ifc-cost/internal/logging"
	"ifc-cost/internal/metrics"
)

// Loader provides rule tables to the engine
type Loader interface {
	// Load returns the complete rule set, cached after the first success
	Load(ctx context.Context) (*RuleSet, error)

	MaterialPrices(ctx context.Context) (map[string]MaterialPrice, error)
	LaborRates(ctx context.Context) (map[string]LaborRate, error)
	ConnectionCosts(ctx context.Context) (ConnectionCosts, error)
	WasteFactors(ctx context.Context) (WasteFactors, error)
	CalculationRules(ctx context.Context) (CalculationRules, error)
	SurfaceTreatments(ctx context.Context) (map[string]SurfaceTreatmentPrice, error)

	// Invalidate drops the cached rule set
	Invalidate()
}

// SourceLoader loads tables from a Source, falling back to defaults per table
type SourceLoader struct {
	source   Source
	validate bool
	logger   *zap.Logger

	mu     sync.Mutex
	cached *RuleSet
}

// Option configures a SourceLoader
type Option func(*SourceLoader)

// WithSchemaValidation toggles JSON schema checks on every table
func WithSchemaValidation(enabled bool) Option {
	return func(l *SourceLoader) {
		l.validate = enabled
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *SourceLoader) {
		l.logger = logger
	}
}

// NewLoader creates a memoizing loader over source
func NewLoader(source Source, opts ...Option) *SourceLoader {
	l := &SourceLoader{
		source:   source,
		validate: true,
		logger:   logging.Named(logging.ComponentRules),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the underlying source
func (l *SourceLoader) Source() Source {
	return l.source
}

// Load reads all tables once. Concurrent callers wait for the same load;
// a failed load is not cached and the next call retries.
func (l *SourceLoader) Load(ctx context.Context) (*RuleSet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		metrics.RuleLoads.WithLabelValues(metrics.OutcomeCached).Inc()
		return l.cached, nil
	}

	rs, err := l.loadAll(ctx)
	if err != nil {
		metrics.RuleLoads.WithLabelValues(metrics.OutcomeFailure).Inc()
		l.logger.Error("failed to load rules",
			zap.String("source", l.source.Name()),
			zap.Error(err))
		return nil, err
	}

	metrics.RuleLoads.WithLabelValues(metrics.OutcomeSuccess).Inc()
	l.logger.Info("rules loaded",
		zap.String("source", l.source.Name()),
		zap.Int("materials", len(rs.MaterialPrices)),
		zap.Strings("enabled_providers", rs.EnabledProviders()))

	l.cached = rs
	return rs, nil
}

// Invalidate drops the cached rule set
func (l *SourceLoader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}

func (l *SourceLoader) loadAll(ctx context.Context) (*RuleSet, error) {
	rs := &RuleSet{}
	var err error

	if rs.MaterialPrices, err = l.MaterialPrices(ctx); err != nil {
		return nil, err
	}
	if rs.LaborRates, err = l.LaborRates(ctx); err != nil {
		return nil, err
	}
	if rs.ConnectionCosts, err = l.ConnectionCosts(ctx); err != nil {
		return nil, err
	}
	if rs.WasteFactors, err = l.WasteFactors(ctx); err != nil {
		return nil, err
	}
	if rs.CalculationRules, err = l.CalculationRules(ctx); err != nil {
		return nil, err
	}
	if rs.SurfaceTreatments, err = l.SurfaceTreatments(ctx); err != nil {
		return nil, err
	}
	return rs, nil
}

// MaterialPrices reads material_prices
func (l *SourceLoader) MaterialPrices(ctx context.Context) (map[string]MaterialPrice, error) {
	return readTable(ctx, l, TableMaterialPrices, DefaultMaterialPrices)
}

// LaborRates reads labor_rates
func (l *SourceLoader) LaborRates(ctx context.Context) (map[string]LaborRate, error) {
	return readTable(ctx, l, TableLaborRates, DefaultLaborRates)
}

// ConnectionCosts reads connection_costs
func (l *SourceLoader) ConnectionCosts(ctx context.Context) (ConnectionCosts, error) {
	return readTable(ctx, l, TableConnectionCosts, DefaultConnectionCosts)
}

// WasteFactors reads waste_factors
func (l *SourceLoader) WasteFactors(ctx context.Context) (WasteFactors, error) {
	return readTable(ctx, l, TableWasteFactors, DefaultWasteFactors)
}

// CalculationRules reads calculation_rules
func (l *SourceLoader) CalculationRules(ctx context.Context) (CalculationRules, error) {
	return readTable(ctx, l, TableCalculationRules, DefaultCalculationRules)
}

// SurfaceTreatments reads surface_treatments
func (l *SourceLoader) SurfaceTreatments(ctx context.Context) (map[string]SurfaceTreatmentPrice, error) {
	return readTable(ctx, l, TableSurfaceTreatments, DefaultSurfaceTreatments)
}

// readTable fetches, validates and decodes one table.
// An unavailable table yields its default; anything else is surfaced.
func readTable[T any](ctx context.Context, l *SourceLoader, table string, fallback func() T) (T, error) {
	var zero T

	data, err := l.source.Table(ctx, table)
	if err != nil {
		if stderrors.Is(err, ErrSourceUnavailable) {
			l.logger.Debug("using default rule table",
				logging.Table(table),
				zap.String("source", l.source.Name()),
				zap.Error(errors.RuleSourceUnavailable(table, err)))
			metrics.RuleTableDefaults.WithLabelValues(table).Inc()
			return fallback(), nil
		}
		if errors.IsType(err, errors.TypeRuleDataMalformed) {
			return zero, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, errors.RuleDataMalformed(table, err)
	}

	if l.validate {
		if err := ValidateTable(table, data); err != nil {
			return zero, errors.RuleDataMalformed(table, err)
		}
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, errors.RuleDataMalformed(table, fmt.Errorf("decode: %w", err))
	}
	return out, nil
}
