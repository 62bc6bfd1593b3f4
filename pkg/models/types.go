package models

import "fmt"

// NodeKey identifies a node (process, activity, or elementary flow) in the
// shared LCA data model by its database name and code.
type NodeKey struct {
	Database string `yaml:"database"`
	Code     string `yaml:"code"`
}

// String returns the canonical "database:code" form of the key.
func (k NodeKey) String() string {
	return fmt.Sprintf("%s:%s", k.Database, k.Code)
}

// IsZero reports whether the key is unset.
func (k NodeKey) IsZero() bool {
	return k.Database == "" && k.Code == ""
}

// Node is a resolved entity in the LCA data model.
type Node struct {
	ID       int64
	Key      NodeKey
	Name     string
	Unit     string
	Location string
}

// ExchangeKind distinguishes flows between processes (technosphere) from
// flows to or from the environment (biosphere).
type ExchangeKind string

const (
	// KindTechnosphere is an exchange between two process nodes
	KindTechnosphere ExchangeKind = "technosphere"
	// KindBiosphere is an exchange between a process node and an elementary flow
	KindBiosphere ExchangeKind = "biosphere"
)

// Valid reports whether the kind is one of the known exchange kinds.
func (k ExchangeKind) Valid() bool {
	return k == KindTechnosphere || k == KindBiosphere
}

// Exchange is a directed, amount-bearing edge between two nodes.
// When Formula is non-empty, Amount caches the last successful resolution of
// the formula against the parameter store; it is stale until the
// recalculation engine runs.
type Exchange struct {
	ID        int64
	ParentID  int64
	TargetID  int64
	ParentKey NodeKey
	TargetKey NodeKey
	Amount    float64
	Formula   string
	Kind      ExchangeKind
}

// Parameter is a named scalar synchronized from a simulation output.
// SourceVariable names the simulation output feeding this parameter; it is
// empty for parameters not managed by the synchronization engine.
type Parameter struct {
	Name           string
	Amount         float64
	SourceVariable string
	SourceUnits    string
	TargetUnits    string
}

// FunctionalUnit maps node keys to requested amounts. Together with an impact
// method identifier it defines one scoring request.
type FunctionalUnit map[NodeKey]float64
