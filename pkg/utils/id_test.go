package utils

import (
	"strings"
	"testing"
)

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateCandidateID(t *testing.T) {
	a := GenerateCandidateID()
	b := GenerateCandidateID()
	if a == b {
		t.Fatalf("expected distinct candidate IDs, got %s twice", a)
	}
	if len(a) != 36 {
		t.Errorf("expected UUID format (36 chars), got %q", a)
	}
}

func TestGenerateEvaluationID(t *testing.T) {
	id := GenerateEvaluationID()
	if !strings.HasPrefix(id, "eval-") {
		t.Errorf("expected eval- prefix, got %q", id)
	}
}
