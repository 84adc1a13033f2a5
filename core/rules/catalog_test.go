package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ifc-cost/internal/errors"
)

func TestCatalogGet(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "contractor-b"), 0o755))
	writeFile(t, filepath.Join(base, "contractor-b"), "waste_factors.json", `{"default": 0.09}`)
	writeFile(t, base, "not-a-dir", "x")

	fallback := newTestLoader(NewDirSource(base))
	c := NewCatalog(base, fallback, zap.NewNop())

	for _, id := range []string{"", DefaultPriceList} {
		l, err := c.Get(id)
		require.NoError(t, err)
		assert.Same(t, fallback, l)
	}

	l, err := c.Get("contractor-b")
	require.NoError(t, err)
	again, err := c.Get("contractor-b")
	require.NoError(t, err)
	assert.Same(t, l, again)

	wf, err := l.WasteFactors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.09", wf.For("x").String())

	for _, id := range []string{"missing", "not-a-dir", "../etc", "a/b", ".hidden"} {
		_, err := c.Get(id)
		require.Error(t, err, id)
		assert.True(t, errors.IsType(err, errors.TypeNotFound), id)
	}

	assert.Equal(t, []string{DefaultPriceList, "contractor-b"}, c.IDs())
}

func TestCatalogWithoutBaseDir(t *testing.T) {
	c := NewCatalog("", newTestLoader(StaticSource{}), nil)

	_, err := c.Get("anything")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestCatalogInvalidateAll(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "alt")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "waste_factors.json", `{"default": 0.01}`)

	c := NewCatalog(base, newTestLoader(NewDirSource(base)), zap.NewNop())
	l, err := c.Get("alt")
	require.NoError(t, err)

	rs, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.01", rs.WasteFactors.For("x").String())

	writeFile(t, sub, "waste_factors.json", `{"default": 0.02}`)
	c.InvalidateAll()

	rs, err = l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.02", rs.WasteFactors.For("x").String())
}

func TestWasteFactorsFor(t *testing.T) {
	wf := WasteFactors{"CONCRETE/C30": dec("0.10"), DefaultWasteKey: dec("0.03")}

	assert.Equal(t, "0.1", wf.For("CONCRETE/C30").String())
	assert.Equal(t, "0.03", wf.For("STEEL/S355").String())
	assert.Equal(t, "0.03", wf.For("").String())
	assert.Equal(t, "0.05", WasteFactors{}.For("STEEL/S355").String())
	assert.Equal(t, "0.05", WasteFactors(nil).For("").String())
}

func TestRuleSetTable(t *testing.T) {
	rs := Defaults()
	for _, name := range Tables {
		v, ok := rs.Table(name)
		assert.True(t, ok, name)
		assert.NotNil(t, v, name)
	}
	_, ok := rs.Table("prices")
	assert.False(t, ok)
}
