package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/emotion"
)

func TestPrintCatalog(t *testing.T) {
	var out bytes.Buffer
	printCatalog(&out, emotion.Default())
	assert.Contains(t, out.String(), fmt.Sprintf("%d emotions", len(emotion.Types())))
	assert.Contains(t, out.String(), "celebrate")
	assert.Contains(t, out.String(), "lightbulb")
}

func TestLoadCatalogMergesOverride(t *testing.T) {
	data, err := emotion.MarshalCatalogYAML(emotion.Default())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cat, err := loadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, emotion.Default().Len(), cat.Len())

	_, err = loadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("emotions:\n  - id: happy\n    bogus: 1\n"), 0644))
	_, err = loadCatalog(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, validate(&out, config.DefaultConfig(), emotion.Default()))
	assert.Contains(t, out.String(), "✓ config")
	assert.Contains(t, out.String(), "✓ catalog")

	out.Reset()
	cfg := config.DefaultConfig()
	cfg.Controller.MaxQueueSize = 0
	assert.Error(t, validate(&out, cfg, emotion.NewCatalog()))
	assert.Contains(t, out.String(), "✗ config")
	assert.Contains(t, out.String(), "missing from catalog")
}

func TestCatalogCommandYAML(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"catalog", "--yaml"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "emotions:")
	assert.Contains(t, out.String(), "id: happy")
}
