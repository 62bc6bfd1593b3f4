package config

import (
	"fmt"
	"math"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.Store == "" {
		return fmt.Errorf("store path cannot be empty")
	}

	// Validate nodes
	nodeRefs := make(map[string]bool)
	for _, node := range cfg.Nodes {
		if node.Database == "" || node.Code == "" {
			return fmt.Errorf("node requires database and code")
		}
		ref := node.Database + ":" + node.Code
		if nodeRefs[ref] {
			return fmt.Errorf("duplicate node: %s", ref)
		}
		nodeRefs[ref] = true
	}

	// Validate mappings
	outputNames := make(map[string]bool)
	for _, m := range cfg.Mappings {
		if m.OutputName == "" {
			return fmt.Errorf("mapping output_name cannot be empty")
		}
		if outputNames[m.OutputName] {
			return fmt.Errorf("duplicate mapping output_name: %s", m.OutputName)
		}
		outputNames[m.OutputName] = true
		if m.Target.Database == "" || m.Target.Code == "" {
			return fmt.Errorf("mapping %s: target requires database and code", m.OutputName)
		}
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
			return fmt.Errorf("mapping %s: value must be a finite number", m.OutputName)
		}
		if m.Kind != "" && m.Kind != "technosphere" && m.Kind != "biosphere" {
			return fmt.Errorf("mapping %s: kind must be 'technosphere' or 'biosphere', got %s", m.OutputName, m.Kind)
		}
		if m.Parent == nil && cfg.DefaultParent == nil {
			return fmt.Errorf("mapping %s: no parent and no default_parent configured", m.OutputName)
		}
	}

	// Validate methods
	methodNames := make(map[string]bool)
	for _, method := range cfg.Methods {
		if method.Name == "" {
			return fmt.Errorf("method name cannot be empty")
		}
		if methodNames[method.Name] {
			return fmt.Errorf("duplicate method name: %s", method.Name)
		}
		methodNames[method.Name] = true
		for i, f := range method.Factors {
			if f.Flow.Database == "" || f.Flow.Code == "" {
				return fmt.Errorf("method %s: factor %d requires a flow reference", method.Name, i)
			}
		}
	}

	// Validate scoring requests
	scoringNames := make(map[string]bool)
	for _, s := range cfg.Scoring {
		if s.Name == "" {
			return fmt.Errorf("scoring request name cannot be empty")
		}
		if scoringNames[s.Name] {
			return fmt.Errorf("duplicate scoring request name: %s", s.Name)
		}
		scoringNames[s.Name] = true
		if s.Method == "" {
			return fmt.Errorf("scoring request %s: method cannot be empty", s.Name)
		}
		if len(cfg.Methods) > 0 && !methodNames[s.Method] {
			return fmt.Errorf("scoring request %s references unknown method: %s", s.Name, s.Method)
		}
		if len(s.FunctionalUnit) == 0 {
			return fmt.Errorf("scoring request %s: functional_unit cannot be empty", s.Name)
		}
		for i, d := range s.FunctionalUnit {
			if d.Node.Database == "" || d.Node.Code == "" {
				return fmt.Errorf("scoring request %s: demand %d requires a node reference", s.Name, i)
			}
		}
	}

	// Validate optimization if present
	if cfg.Optimization != nil {
		if err := validateOptimization(cfg.Optimization); err != nil {
			return fmt.Errorf("optimization validation failed: %w", err)
		}
	}

	return nil
}

// validateOptimization validates the optimization configuration
func validateOptimization(o *Optimization) error {
	if len(o.DesignVars) == 0 {
		return fmt.Errorf("at least one design variable must be defined")
	}
	varNames := make(map[string]bool)
	for _, v := range o.DesignVars {
		if v.Name == "" {
			return fmt.Errorf("design variable name cannot be empty")
		}
		if varNames[v.Name] {
			return fmt.Errorf("duplicate design variable: %s", v.Name)
		}
		varNames[v.Name] = true
		if v.Size < 0 {
			return fmt.Errorf("design variable %s: size cannot be negative", v.Name)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("design variable %s: lower bound above upper", v.Name)
		}
	}

	if len(o.Objectives) == 0 {
		return fmt.Errorf("at least one objective must be defined")
	}
	for _, name := range o.Objectives {
		if name == "" {
			return fmt.Errorf("objective name cannot be empty")
		}
	}

	if o.MaxEvaluations < 0 {
		return fmt.Errorf("max_evaluations cannot be negative, got %d", o.MaxEvaluations)
	}
	if _, err := o.GetMaxDuration(); err != nil {
		return fmt.Errorf("invalid max_duration %s: %w", o.MaxDuration, err)
	}

	return nil
}
