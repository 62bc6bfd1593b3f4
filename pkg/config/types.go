package config

import (
	"time"

	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

// Config represents a full engine configuration
type Config struct {
	LogLevel      string        `yaml:"log_level"`
	Store         string        `yaml:"store"`
	Group         string        `yaml:"group,omitempty"`
	DefaultParent *NodeRef      `yaml:"default_parent,omitempty"`
	Nodes         []NodeDef     `yaml:"nodes,omitempty"`
	Mappings      []MappingDef  `yaml:"mappings,omitempty"`
	Methods       []MethodDef   `yaml:"methods,omitempty"`
	Scoring       []ScoringDef  `yaml:"scoring,omitempty"`
	Optimization  *Optimization `yaml:"optimization,omitempty"`
}

// NodeRef identifies a node in the data model
type NodeRef struct {
	Database string `yaml:"database"`
	Code     string `yaml:"code"`
}

// Key converts the reference to a model node key
func (r NodeRef) Key() models.NodeKey {
	return models.NodeKey{Database: r.Database, Code: r.Code}
}

// NodeDef declares a node to create during environment setup
type NodeDef struct {
	Database string `yaml:"database"`
	Code     string `yaml:"code"`
	Name     string `yaml:"name,omitempty"`
	Unit     string `yaml:"unit,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// Node converts the definition to a model node
func (d NodeDef) Node() models.Node {
	return models.Node{
		Key:      models.NodeKey{Database: d.Database, Code: d.Code},
		Name:     d.Name,
		Unit:     d.Unit,
		Location: d.Location,
	}
}

// MappingDef binds one simulation output into the data model
type MappingDef struct {
	OutputName  string   `yaml:"output_name"`
	Value       float64  `yaml:"value"`
	Units       string   `yaml:"units,omitempty"`
	Target      NodeRef  `yaml:"target"`
	TargetUnits string   `yaml:"target_units,omitempty"`
	TargetName  string   `yaml:"target_name,omitempty"`
	Parent      *NodeRef `yaml:"parent,omitempty"`
	Kind        string   `yaml:"kind,omitempty"` // technosphere or biosphere
}

// MethodDef declares an impact method and its characterization factors
type MethodDef struct {
	Name    string      `yaml:"name"`
	Factors []FactorDef `yaml:"factors"`
}

// FactorDef characterizes one biosphere flow under a method
type FactorDef struct {
	Flow   NodeRef `yaml:"flow"`
	Factor float64 `yaml:"factor"`
}

// ScoringDef declares one score the evaluation bridge computes
type ScoringDef struct {
	Name           string      `yaml:"name"`
	Method         string      `yaml:"method"`
	FunctionalUnit []DemandDef `yaml:"functional_unit"`
}

// DemandDef is one entry of a functional unit
type DemandDef struct {
	Node   NodeRef `yaml:"node"`
	Amount float64 `yaml:"amount"`
}

// Demand converts the scoring entries to a model functional unit
func (s ScoringDef) Demand() models.FunctionalUnit {
	fu := make(models.FunctionalUnit, len(s.FunctionalUnit))
	for _, d := range s.FunctionalUnit {
		fu[d.Node.Key()] = d.Amount
	}
	return fu
}

// Optimization represents optimization run configuration
type Optimization struct {
	Enabled             bool        `yaml:"enabled"`
	MaxEvaluations      int         `yaml:"max_evaluations"`
	MaxDuration         string      `yaml:"max_duration,omitempty"` // e.g., "30s"
	NoImprovementWindow int         `yaml:"no_improvement_window,omitempty"`
	Seed                int64       `yaml:"seed,omitempty"`
	DesignVars          []DesignVar `yaml:"design_vars"`
	Objectives          []string    `yaml:"objectives"`
	Constraints         []string    `yaml:"constraints,omitempty"`
}

// DesignVar declares one design variable and its bounds
type DesignVar struct {
	Name  string  `yaml:"name"`
	Size  int     `yaml:"size,omitempty"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// GetMaxDuration parses the duration string to time.Duration
func (o *Optimization) GetMaxDuration() (time.Duration, error) {
	if o.MaxDuration == "" {
		return 0, nil
	}
	return time.ParseDuration(o.MaxDuration)
}
