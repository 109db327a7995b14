// Package screening holds the built-in screening strategies and their
// threshold configuration. The backtest driver sees them only as opaque
// screening functions.
package screening

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the cut-off values of every built-in strategy, usually
// loaded from a YAML file.
type Thresholds struct {
	Value   ValueCriteria   `yaml:"value" json:"value"`
	Quality QualityCriteria `yaml:"quality" json:"quality"`
	Growth  GrowthCriteria  `yaml:"growth" json:"growth"`
}

// ValueCriteria is the Graham-style filter. 저PER·저PBR·건전한 재무.
type ValueCriteria struct {
	MaxPER       float64 `yaml:"max_per" json:"max_per"`
	MaxPBR       float64 `yaml:"max_pbr" json:"max_pbr"`
	MinROE       float64 `yaml:"min_roe" json:"min_roe"`
	MaxDebtRatio float64 `yaml:"max_debt_ratio" json:"max_debt_ratio"`
}

// QualityCriteria is the Buffett-style filter.
type QualityCriteria struct {
	MinROE             float64 `yaml:"min_roe" json:"min_roe"`
	MinOperatingMargin float64 `yaml:"min_operating_margin" json:"min_operating_margin"`
	MinOCFToNetIncome  float64 `yaml:"min_ocf_to_net_income" json:"min_ocf_to_net_income"`
}

// GrowthCriteria is the Lynch-style filter.
type GrowthCriteria struct {
	MinRevenueGrowth float64 `yaml:"min_revenue_growth" json:"min_revenue_growth"`
	MaxPER           float64 `yaml:"max_per" json:"max_per"`
}

// DefaultThresholds returns the classic cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Value: ValueCriteria{
			MaxPER:       15,
			MaxPBR:       1.5,
			MinROE:       10,
			MaxDebtRatio: 100,
		},
		Quality: QualityCriteria{
			MinROE:             15,
			MinOperatingMargin: 10,
			MinOCFToNetIncome:  0.8,
		},
		Growth: GrowthCriteria{
			MinRevenueGrowth: 15,
			MaxPER:           30,
		},
	}
}

// LoadThresholds reads a YAML threshold file. Unknown fields fail
// immediately: a typo in a cut-off name must not silently fall back to zero.
func LoadThresholds(path string) (*Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Thresholds
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects threshold sets that would pass nothing or everything.
func (t *Thresholds) Validate() error {
	if t.Value.MaxPER <= 0 {
		return fmt.Errorf("value.max_per must be positive, got %v", t.Value.MaxPER)
	}
	if t.Value.MaxPBR <= 0 {
		return fmt.Errorf("value.max_pbr must be positive, got %v", t.Value.MaxPBR)
	}
	if t.Quality.MinROE <= 0 {
		return fmt.Errorf("quality.min_roe must be positive, got %v", t.Quality.MinROE)
	}
	if t.Growth.MinRevenueGrowth < 0 {
		return fmt.Errorf("growth.min_revenue_growth must not be negative, got %v", t.Growth.MinRevenueGrowth)
	}
	return nil
}
