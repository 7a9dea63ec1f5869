package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7Unique(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]bool)
	for range 1000 {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestUUIDv7Sortable(t *testing.T) {
	gen := UUIDv7()
	a := gen()
	b := gen()
	if a >= b {
		t.Errorf("expected time-sorted IDs, got %s >= %s", a, b)
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("run_", Default)
	id := gen()
	if !strings.HasPrefix(id, "run_") {
		t.Errorf("expected run_ prefix, got %s", id)
	}
	if _, err := Parse(strings.TrimPrefix(id, "run_")); err != nil {
		t.Errorf("suffix is not a valid UUID: %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for invalid UUID")
	}
}
