package rules

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"ifc-cost/internal/errors"
	"ifc-cost/internal/logging"
)

// DefaultPriceList is the id of the configured rule source
const DefaultPriceList = "default"

var priceListID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Catalog resolves price list ids to loaders.
// Non-default lists live in subdirectories of the rules directory.
type Catalog struct {
	baseDir  string
	fallback Loader
	opts     []Option
	logger   *zap.Logger

	mu      sync.Mutex
	loaders map[string]Loader
}

// NewCatalog creates a catalog whose default list is served by fallback
func NewCatalog(baseDir string, fallback Loader, logger *zap.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = logging.Named(logging.ComponentRules)
	}
	return &Catalog{
		baseDir:  baseDir,
		fallback: fallback,
		opts:     append(opts, WithLogger(logger)),
		logger:   logger,
		loaders:  make(map[string]Loader),
	}
}

// Get returns the loader of a price list, creating it on first use
func (c *Catalog) Get(id string) (Loader, error) {
	if id == "" || id == DefaultPriceList {
		return c.fallback, nil
	}
	if !priceListID.MatchString(id) || c.baseDir == "" {
		return nil, errors.NotFound("price list", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.loaders[id]; ok {
		return l, nil
	}

	dir := filepath.Join(c.baseDir, id)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.NotFound("price list", id)
	}

	l := NewLoader(NewDirSource(dir), c.opts...)
	c.loaders[id] = l
	c.logger.Info("price list registered", logging.PriceListID(id), zap.String("dir", dir))
	return l, nil
}

// IDs returns the price lists resolved so far, sorted, default first
func (c *Catalog) IDs() []string {
	c.mu.Lock()
	ids := lo.Keys(c.loaders)
	c.mu.Unlock()

	sort.Strings(ids)
	return append([]string{DefaultPriceList}, ids...)
}

// InvalidateAll drops every cached rule set
func (c *Catalog) InvalidateAll() {
	c.fallback.Invalidate()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.loaders {
		l.Invalidate()
	}
}
