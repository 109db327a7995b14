package screening

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadThresholds(t *testing.T) {
	path := writeYAML(t, `
value:
  max_per: 12
  max_pbr: 1.2
  min_roe: 8
  max_debt_ratio: 150
quality:
  min_roe: 20
  min_operating_margin: 12
  min_ocf_to_net_income: 0.9
growth:
  min_revenue_growth: 20
  max_per: 25
`)

	got, err := LoadThresholds(path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Value.MaxPER)
	assert.Equal(t, 150.0, got.Value.MaxDebtRatio)
	assert.Equal(t, 20.0, got.Quality.MinROE)
	assert.Equal(t, 25.0, got.Growth.MaxPER)
}

func TestLoadThresholds_UnknownField(t *testing.T) {
	// 오타가 0으로 조용히 빠지면 안 된다
	path := writeYAML(t, `
value:
  max_perr: 12
  max_pbr: 1.2
quality:
  min_roe: 20
growth:
  min_revenue_growth: 20
`)
	_, err := LoadThresholds(path)
	assert.Error(t, err)
}

func TestLoadThresholds_Invalid(t *testing.T) {
	path := writeYAML(t, `
value:
  max_per: 0
  max_pbr: 1.2
quality:
  min_roe: 20
growth:
  min_revenue_growth: 20
`)
	_, err := LoadThresholds(path)
	assert.Error(t, err)
}

func TestLoadThresholds_MissingFile(t *testing.T) {
	_, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultThresholds_Valid(t *testing.T) {
	d := DefaultThresholds()
	assert.NoError(t, d.Validate())
}
