/*

This file contains the YAML scenario format: named price paths with optional per-scenario overrides.

*/

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/elys-network/hedgevault/internal/types"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// ScenarioFile is the top level of a scenario document.
type ScenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one price path to replay.
type Scenario struct {
	Name            string            `yaml:"name"`
	InitialCapital  *float64          `yaml:"initial_capital,omitempty"`
	Prices          []float64         `yaml:"prices"`
	SecondaryPrices []float64         `yaml:"secondary_prices,omitempty"`
	ExposureTargets []float64         `yaml:"exposure_targets,omitempty"`
	Strategy        StrategyOverrides `yaml:"strategy,omitempty"`
	Run             RunOverrides      `yaml:"run,omitempty"`
}

// StrategyOverrides replaces the fields that are set.
type StrategyOverrides struct {
	TargetCollateralRatio *float64 `yaml:"target_collateral_ratio,omitempty"`
	TargetExposure        *float64 `yaml:"target_exposure,omitempty"`
	WeightVariable        *float64 `yaml:"weight_variable,omitempty"`
	WeightSecondary       *float64 `yaml:"weight_secondary,omitempty"`
	SwapFee               *float64 `yaml:"swap_fee,omitempty"`
}

// RunOverrides replaces the fields that are set.
type RunOverrides struct {
	MinutesPerStep     *float64 `yaml:"minutes_per_step,omitempty"`
	CollateralAPR      *float64 `yaml:"collateral_apr,omitempty"`
	DebtAPR            *float64 `yaml:"debt_apr,omitempty"`
	LiquidityAPR       *float64 `yaml:"liquidity_apr,omitempty"`
	MaxCollateralRatio *float64 `yaml:"max_cr,omitempty"`
	MinCollateralRatio *float64 `yaml:"min_cr,omitempty"`
	ExposureThreshold  *float64 `yaml:"exposure_threshold,omitempty"`
}

// Apply returns base with every set override applied.
func (o StrategyOverrides) Apply(base types.StrategyParameters) types.StrategyParameters {
	setIf(&base.TargetCollateralRatio, o.TargetCollateralRatio)
	setIf(&base.TargetExposure, o.TargetExposure)
	setIf(&base.WeightVariable, o.WeightVariable)
	setIf(&base.WeightSecondary, o.WeightSecondary)
	setIf(&base.SwapFee, o.SwapFee)
	return base
}

// Apply returns base with every set override applied.
func (o RunOverrides) Apply(base types.RunParameters) types.RunParameters {
	setIf(&base.MinutesPerStep, o.MinutesPerStep)
	setIf(&base.CollateralAPR, o.CollateralAPR)
	setIf(&base.DebtAPR, o.DebtAPR)
	setIf(&base.LiquidityAPR, o.LiquidityAPR)
	setIf(&base.MaxCollateralRatio, o.MaxCollateralRatio)
	setIf(&base.MinCollateralRatio, o.MinCollateralRatio)
	setIf(&base.ExposureThreshold, o.ExposureThreshold)
	return base
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Capital returns the scenario's initial capital or fallback when unset.
func (s Scenario) Capital(fallback float64) float64 {
	if s.InitialCapital != nil {
		return *s.InitialCapital
	}
	return fallback
}

// LoadScenarioFile reads and parses a YAML scenario file.
func LoadScenarioFile(path string) (*ScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	return ParseScenarios(data)
}

// WriteScenarioFile encodes file as YAML and writes it to path.
func WriteScenarioFile(path string, file *ScenarioFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode scenarios: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scenario file %s: %w", path, err)
	}
	return nil
}

// ParseScenarios decodes a scenario document. Unknown fields are rejected, names must be
// unique plain file names and every scenario needs a price path; the simulation validates the rest.
func ParseScenarios(data []byte) (*ScenarioFile, error) {
	var file ScenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios defined", ErrInvalidScenario)
	}
	seen := make(map[string]bool, len(file.Scenarios))
	for i, s := range file.Scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: scenario %d has no name", ErrInvalidScenario, i)
		}
		if s.Name == "." || s.Name == ".." || strings.ContainsAny(s.Name, `/\`) {
			return nil, fmt.Errorf("%w: scenario name %q must not contain path separators", ErrInvalidScenario, s.Name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate scenario name %q", ErrInvalidScenario, s.Name)
		}
		seen[s.Name] = true
		if len(s.Prices) == 0 {
			return nil, fmt.Errorf("%w: scenario %q has no prices", ErrInvalidScenario, s.Name)
		}
	}
	return &file, nil
}
