// Package engine provides the API-primary cost calculation engine.
// CLI and HTTP are thin wrappers around this engine.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"ifc-cost/core/provider"
	"ifc-cost/core/rules"
	"ifc-cost/core/types"
	"ifc-cost/internal/errors"
	"ifc-cost/internal/logging"
	"ifc-cost/internal/metrics"
)

// DefaultProjectName is used when a request does not name its project
const DefaultProjectName = "IFC Project"

// Engine runs the registered providers over an element list
type Engine struct {
	loader   rules.Loader
	registry *provider.Registry
	config   Config
	logger   *zap.Logger
}

// Config configures the engine
type Config struct {
	// ProjectName is the default project name
	ProjectName string

	// Workers bounds element-level parallelism; 1 or less is sequential
	Workers int
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers shards elements across at most n goroutines
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.config.Workers = n
	}
}

// WithProjectName sets the default project name
func WithProjectName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.config.ProjectName = name
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine. The loader and registry are required.
func New(loader rules.Loader, registry *provider.Registry, opts ...Option) *Engine {
	e := &Engine{
		loader:   loader,
		registry: registry,
		config: Config{
			ProjectName: DefaultProjectName,
			Workers:     1,
		},
		logger: logging.Named(logging.ComponentEngine),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is the input to Run
type Request struct {
	// ProjectName overrides the configured project name
	ProjectName string

	// Elements to price, in output order
	Elements []types.Element

	// Rules to price with; loaded through the engine's loader when nil
	Rules *rules.RuleSet
}

// CalculateCosts loads the rule set and prices every element
func (e *Engine) CalculateCosts(ctx context.Context, elements []types.Element) (*types.ProjectCostBreakdown, error) {
	return e.Run(ctx, &Request{Elements: elements})
}

// Calculate prices every element with an already loaded rule set
func (e *Engine) Calculate(ctx context.Context, elements []types.Element, rs *rules.RuleSet) (*types.ProjectCostBreakdown, error) {
	if rs == nil {
		return nil, errors.Calculation("rule set is required", nil)
	}
	return e.Run(ctx, &Request{Elements: elements, Rules: rs})
}

// Run performs the calculation. It returns either a complete breakdown or
// a single CALCULATION_FAILURE error, never both.
func (e *Engine) Run(ctx context.Context, req *Request) (*types.ProjectCostBreakdown, error) {
	start := time.Now()

	project, err := e.run(ctx, req)
	metrics.CalculationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Calculations.WithLabelValues(metrics.OutcomeFailure).Inc()
		e.logger.Error("calculation failed", zap.Error(err))
		return nil, err
	}

	metrics.Calculations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.ElementsProcessed.Add(float64(len(project.ElementCosts)))
	e.logger.Debug("calculation complete",
		zap.String("project", project.ProjectName),
		zap.Int("elements", len(project.ElementCosts)),
		zap.Int("items", project.ItemCount()),
		zap.Int("failures", len(project.Failures)),
		zap.String("grand_total", project.GrandTotal.String()),
		zap.Duration("duration", time.Since(start)))
	return project, nil
}

func (e *Engine) run(ctx context.Context, req *Request) (*types.ProjectCostBreakdown, error) {
	if req == nil {
		return nil, errors.Calculation("request is required", nil)
	}

	rs := req.Rules
	if rs == nil {
		if e.loader == nil {
			return nil, errors.Calculation("no rule loader configured", nil)
		}
		loaded, err := e.loader.Load(ctx)
		if err != nil {
			return nil, errors.Calculation("failed to load rules", err)
		}
		rs = loaded
	}
	if e.registry == nil {
		return nil, errors.Calculation("no provider registry configured", nil)
	}

	active := e.registry.Active(rs.EnabledProviders())

	results := e.mapElements(req.Elements, func(el types.Element) elementResult {
		if ctx.Err() != nil {
			return elementResult{}
		}
		return e.calculateElement(el, active, rs)
	})

	if err := ctx.Err(); err != nil {
		return nil, errors.Calculation("calculation cancelled", err)
	}

	name := req.ProjectName
	if name == "" {
		name = e.config.ProjectName
	}

	project := types.NewProjectCostBreakdown(name)
	for _, r := range results {
		project.ElementCosts = append(project.ElementCosts, r.breakdown)
		project.Failures = append(project.Failures, r.failures...)
	}
	project.Recompute()
	return project, nil
}

type elementResult struct {
	breakdown *types.ElementCostBreakdown
	failures  []types.ProviderFailure
}

// mapElements preserves input order regardless of worker count
func (e *Engine) mapElements(elements []types.Element, fn func(types.Element) elementResult) []elementResult {
	if e.config.Workers <= 1 || len(elements) < 2 {
		out := make([]elementResult, len(elements))
		for i, el := range elements {
			out[i] = fn(el)
		}
		return out
	}

	mapper := iter.Mapper[types.Element, elementResult]{MaxGoroutines: e.config.Workers}
	return mapper.Map(elements, func(el *types.Element) elementResult {
		return fn(*el)
	})
}

func (e *Engine) calculateElement(el types.Element, active []provider.Provider, rs *rules.RuleSet) elementResult {
	material, _ := provider.MaterialOf(el)
	breakdown := types.NewElementCostBreakdown(el, rs.WasteFactors.For(material))

	var failures []types.ProviderFailure
	for _, p := range active {
		items, err := runProvider(p, el, rs)
		if err != nil {
			failure := errors.ProviderFailure(p.Name(), el.ID(), err)
			failures = append(failures, types.ProviderFailure{
				ElementID: el.ID(),
				Provider:  p.Name(),
				Error:     failure.Error(),
			})
			metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
			e.logger.Warn("provider failed",
				logging.ElementID(el.ID()),
				logging.Provider(p.Name()),
				zap.Error(err))
			continue
		}
		for i := range items {
			if items[i].ElementID == "" {
				items[i].ElementID = el.ID()
			}
		}
		breakdown.CostItems = append(breakdown.CostItems, items...)
	}

	breakdown.Recompute()
	return elementResult{breakdown: breakdown, failures: failures}
}

// runProvider turns a provider panic into an error for that element only
func runProvider(p provider.Provider, el types.Element, rs *rules.RuleSet) (items []types.CostItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if !p.CanCalculate(el) {
		return nil, nil
	}
	return p.Calculate(el, rs)
}
