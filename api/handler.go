// Package api - HTTP handler for cost calculation
// This handler wraps the engine - it contains NO cost logic.
// All logic is delegated to core packages.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"ifc-cost/core/engine"
	"ifc-cost/core/output"
	"ifc-cost/core/rules"
	"ifc-cost/internal/errors"
	"ifc-cost/internal/metrics"
)

// Handler runs calculations for the server
type Handler struct {
	engine   *engine.Engine
	catalog  *rules.Catalog
	validate *validator.Validate
	logger   *zap.Logger

	// cache holds serialized documents; nil when disabled
	cache *lru.Cache[string, []byte]
}

// NewHandler creates a handler. A cacheSize of 0 disables response caching.
func NewHandler(eng *engine.Engine, catalog *rules.Catalog, cacheSize int, logger *zap.Logger) (*Handler, error) {
	h := &Handler{
		engine:   eng,
		catalog:  catalog,
		validate: validator.New(),
		logger:   logger,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, []byte](cacheSize)
		if err != nil {
			return nil, errors.Config("invalid response cache size", err)
		}
		h.cache = cache
	}
	return h, nil
}

// Validate checks request constraints
func (h *Handler) Validate(req *CalculateRequest) error {
	if err := h.validate.Struct(req); err != nil {
		return errors.Wrap(errors.TypeInput, "invalid request", err)
	}
	return nil
}

// Execute prices a request and returns the serialized breakdown.
// Results for identical requests are served from the cache until the rules
// are invalidated.
func (h *Handler) Execute(ctx context.Context, req *CalculateRequest) ([]byte, bool, error) {
	key := cacheKey(req)
	if h.cache != nil {
		if body, ok := h.cache.Get(key); ok {
			metrics.Calculations.WithLabelValues(metrics.OutcomeCached).Inc()
			return body, true, nil
		}
	}

	loader, err := h.catalog.Get(req.PriceListID)
	if err != nil {
		return nil, false, err
	}

	rs, err := loader.Load(ctx)
	if err != nil {
		return nil, false, errors.Calculation("failed to load rules", err)
	}

	project, err := h.engine.Run(ctx, &engine.Request{
		ProjectName: req.ProjectName,
		Elements:    req.Elements,
		Rules:       rs,
	})
	if err != nil {
		return nil, false, err
	}

	body, err := output.Marshal(project)
	if err != nil {
		return nil, false, errors.Internal("failed to encode breakdown", err)
	}

	if h.cache != nil {
		h.cache.Add(key, body)
	}
	return body, false, nil
}

// Rules returns the effective rule set of a price list
func (h *Handler) Rules(ctx context.Context, priceListID string) (*rules.RuleSet, error) {
	loader, err := h.catalog.Get(priceListID)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

// Invalidate drops cached rule sets and cached responses
func (h *Handler) Invalidate() {
	h.catalog.InvalidateAll()
	if h.cache != nil {
		h.cache.Purge()
	}
	h.logger.Info("rules invalidated")
}

// cacheKey is the price list plus the hash of the request
func cacheKey(req *CalculateRequest) string {
	priceList := req.PriceListID
	if priceList == "" {
		priceList = rules.DefaultPriceList
	}
	return priceList + ":" + computeInputHash(req)
}

func computeInputHash(req *CalculateRequest) string {
	// map keys are sorted by encoding/json, so equal requests hash equally
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
