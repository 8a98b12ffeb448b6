package internal

import (
	"errors"
	"testing"
)

func TestMemoizeCachesTables(t *testing.T) {
	inner := &fakeProvider{tables: map[string]ParameterTable{
		"u": {{Index: 0, Symbol: "gain", Label: "Gain"}},
	}}
	provider := Memoize(inner)

	for i := 0; i < 3; i++ {
		table, err := provider.Lookup("u")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if len(table) != 1 || table[0].Label != "Gain" {
			t.Fatalf("Lookup() = %+v", table)
		}
	}
	if inner.lookups != 1 {
		t.Errorf("inner provider saw %d lookups, want 1", inner.lookups)
	}
}

func TestMemoizeCachesMisses(t *testing.T) {
	inner := &fakeProvider{}
	provider := Memoize(inner)

	for i := 0; i < 3; i++ {
		_, err := provider.Lookup("missing")
		if !errors.Is(err, ErrPluginNotFound) {
			t.Fatalf("Lookup() error = %v, want ErrPluginNotFound", err)
		}
	}
	if inner.lookups != 1 {
		t.Errorf("inner provider saw %d lookups, want 1 (misses must be cached too)", inner.lookups)
	}
}
