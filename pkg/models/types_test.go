package models

import "testing"

func TestNodeKeyString(t *testing.T) {
	key := NodeKey{Database: "ecoinvent", Code: "aluminium"}
	if got := key.String(); got != "ecoinvent:aluminium" {
		t.Fatalf("expected ecoinvent:aluminium, got %s", got)
	}
}

func TestNodeKeyIsZero(t *testing.T) {
	if !(NodeKey{}).IsZero() {
		t.Fatalf("expected zero key to report IsZero")
	}
	if (NodeKey{Database: "proj"}).IsZero() {
		t.Fatalf("expected partially set key to not report IsZero")
	}
}

func TestExchangeKindValid(t *testing.T) {
	tests := []struct {
		kind  ExchangeKind
		valid bool
	}{
		{KindTechnosphere, true},
		{KindBiosphere, true},
		{ExchangeKind(""), false},
		{ExchangeKind("production"), false},
	}

	for _, tt := range tests {
		if got := tt.kind.Valid(); got != tt.valid {
			t.Errorf("kind %q: expected valid=%v, got %v", tt.kind, tt.valid, got)
		}
	}
}
