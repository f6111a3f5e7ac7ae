package compiler

import (
	"strings"
	"testing"
)

func TestSymbolTable(t *testing.T) {
	t.Run("DeclareAndLookup", func(t *testing.T) {
		s := NewSymbolTable()
		s.Declare(&Symbol{Name: "max", Kind: ConstSymbol, Value: 10})
		s.Declare(&Symbol{Name: "counter", Kind: VarSymbol, Key: "counter"})
		s.Declare(&Symbol{Name: "step", Kind: ProcSymbol, Entry: "step"})

		sym, found := s.Lookup("max")
		if !found {
			t.Fatal("Lookup(max) failed")
		}
		if sym.Kind != ConstSymbol || sym.Value != 10 {
			t.Errorf("max = %v %d, want const 10", sym.Kind, sym.Value)
		}
		if sym.Level != 0 {
			t.Errorf("max level = %d, want 0", sym.Level)
		}

		sym, _ = s.Lookup("counter")
		if sym.Kind != VarSymbol || sym.Key != "counter" {
			t.Errorf("counter = %v key=%q, want var key=counter", sym.Kind, sym.Key)
		}

		sym, _ = s.Lookup("step")
		if sym.Kind != ProcSymbol || sym.Entry != "step" {
			t.Errorf("step = %v entry=%q, want procedure entry=step", sym.Kind, sym.Entry)
		}
	})

	t.Run("LookupFailure", func(t *testing.T) {
		s := NewSymbolTable()
		if _, found := s.Lookup("nonexistent"); found {
			t.Error("Lookup(nonexistent) succeeded, expected failure")
		}
	})

	t.Run("RedeclarationSameScope", func(t *testing.T) {
		s := NewSymbolTable()
		if err := s.Declare(&Symbol{Name: "x", Kind: VarSymbol}); err != nil {
			t.Fatalf("first declare: %v", err)
		}
		err := s.Declare(&Symbol{Name: "x", Kind: VarSymbol})
		if err == nil {
			t.Fatal("second declare of x succeeded, want error")
		}
		if !strings.Contains(err.Error(), "already declared") {
			t.Errorf("error = %q, want mention of redeclaration", err)
		}

		// The kind does not matter: one scope, one name.
		if err := s.Declare(&Symbol{Name: "x", Kind: ProcSymbol}); err == nil {
			t.Error("declare of procedure x over var x succeeded, want error")
		}
	})

	t.Run("Shadowing", func(t *testing.T) {
		s := NewSymbolTable()
		s.Declare(&Symbol{Name: "x", Kind: VarSymbol, Key: "x"})

		s.EnterScope()
		s.Declare(&Symbol{Name: "x", Kind: VarSymbol, Key: "p.x"})

		sym, found := s.Lookup("x")
		if !found {
			t.Fatal("Lookup(x) failed in inner scope")
		}
		if sym.Key != "p.x" {
			t.Errorf("inner lookup key = %q, want the shadowing p.x", sym.Key)
		}
		if sym.Level != 1 {
			t.Errorf("inner level = %d, want 1", sym.Level)
		}

		s.ExitScope()

		sym, found = s.Lookup("x")
		if !found {
			t.Fatal("Lookup(x) failed in outer scope")
		}
		if sym.Key != "x" {
			t.Errorf("outer lookup key = %q, want x", sym.Key)
		}
	})

	t.Run("InnerScopeReachesOuter", func(t *testing.T) {
		s := NewSymbolTable()
		s.Declare(&Symbol{Name: "total", Kind: VarSymbol, Key: "total"})
		s.EnterScope()

		if _, found := s.Lookup("total"); !found {
			t.Error("Lookup(total) failed from inner scope")
		}
	})

	t.Run("ExitDropsLocals", func(t *testing.T) {
		s := NewSymbolTable()
		s.EnterScope()
		s.Declare(&Symbol{Name: "local", Kind: VarSymbol, Key: "p.local"})
		s.ExitScope()

		if _, found := s.Lookup("local"); found {
			t.Error("Lookup(local) succeeded after ExitScope, expected failure")
		}
	})

	t.Run("Level", func(t *testing.T) {
		s := NewSymbolTable()
		if s.Level() != 0 {
			t.Errorf("fresh table level = %d, want 0", s.Level())
		}
		s.EnterScope()
		if s.Level() != 1 {
			t.Errorf("level after EnterScope = %d, want 1", s.Level())
		}
		s.ExitScope()
		if s.Level() != 0 {
			t.Errorf("level after ExitScope = %d, want 0", s.Level())
		}
	})

	t.Run("EntriesSurviveExit", func(t *testing.T) {
		s := NewSymbolTable()
		s.Declare(&Symbol{Name: "g", Kind: VarSymbol, Key: "g"})
		s.EnterScope()
		s.Declare(&Symbol{Name: "l", Kind: VarSymbol, Key: "p.l"})
		s.ExitScope()
		s.Declare(&Symbol{Name: "h", Kind: VarSymbol, Key: "h"})

		entries := s.Entries()
		if len(entries) != 3 {
			t.Fatalf("entry count = %d, want 3", len(entries))
		}
		names := []string{entries[0].Name, entries[1].Name, entries[2].Name}
		if names[0] != "g" || names[1] != "l" || names[2] != "h" {
			t.Errorf("entry order = %v, want declaration order g, l, h", names)
		}
		if entries[1].Level != 1 {
			t.Errorf("exited local keeps level = %d, want 1", entries[1].Level)
		}
	})
}

func TestSymbolTableDump(t *testing.T) {
	s := NewSymbolTable()
	s.Declare(&Symbol{Name: "max", Kind: ConstSymbol, Value: 10})
	s.Declare(&Symbol{Name: "counter", Kind: VarSymbol, Key: "counter"})
	s.Declare(&Symbol{Name: "step", Kind: ProcSymbol, Entry: "step"})
	s.EnterScope()
	s.Declare(&Symbol{Name: "delta", Kind: VarSymbol, Key: "step.delta"})
	s.ExitScope()

	dump := s.String()
	lines := strings.Split(strings.TrimRight(dump, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("dump has %d lines, want 4:\n%s", len(lines), dump)
	}

	wants := [][]string{
		{"max", "const", "level=0", "value=10"},
		{"counter", "var", "level=0", "key=counter"},
		{"step", "procedure", "level=0", "entry=step"},
		{"delta", "var", "level=1", "key=step.delta"},
	}
	for i, parts := range wants {
		for _, part := range parts {
			if !strings.Contains(lines[i], part) {
				t.Errorf("dump line %d = %q, missing %q", i, lines[i], part)
			}
		}
	}
}
