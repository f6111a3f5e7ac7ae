package compiler

import (
	"fmt"
	"io"
	"strings"
)

// SymbolKind classifies what a declared name refers to.
type SymbolKind int

const (
	ConstSymbol SymbolKind = iota
	VarSymbol
	ProcSymbol
)

var symbolKindNames = [...]string{
	ConstSymbol: "const",
	VarSymbol:   "var",
	ProcSymbol:  "procedure",
}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is one declared name. The payload depends on the kind:
// constants carry their value, variables the storage key the generated
// code reads and writes, procedures their TAC entry label.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Level int // scope nesting depth; 0 is the program block
	Value int64
	Key   string
	Entry string
}

// payload renders the kind-specific column of the symbol table dump.
func (s *Symbol) payload() string {
	switch s.Kind {
	case ConstSymbol:
		return fmt.Sprintf("value=%d", s.Value)
	case VarSymbol:
		return "key=" + s.Key
	case ProcSymbol:
		return "entry=" + s.Entry
	}
	return ""
}

// SymbolTable is a stack of scopes plus an ordered log of every
// declaration ever made. Lookup walks the stack innermost-out, so an
// inner declaration shadows an outer one of the same name. The log
// survives ExitScope: the symbol table dump lists procedure locals even
// though they are no longer reachable.
type SymbolTable struct {
	scopes  []map[string]*Symbol
	entries []*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []map[string]*Symbol{{}}}
}

// Level returns the current scope nesting depth (0 = program block).
func (t *SymbolTable) Level() int {
	return len(t.scopes) - 1
}

// EnterScope pushes a fresh innermost scope.
func (t *SymbolTable) EnterScope() {
	t.scopes = append(t.scopes, map[string]*Symbol{})
}

// ExitScope drops the innermost scope and every name declared in it.
func (t *SymbolTable) ExitScope() {
	if len(t.scopes) == 1 {
		panic("compiler: ExitScope without matching EnterScope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Declare inserts a symbol at the current level. Declaring a name twice
// at the same level is an error; shadowing an outer level is not.
func (t *SymbolTable) Declare(sym *Symbol) error {
	scope := t.scopes[len(t.scopes)-1]
	if _, exists := scope[sym.Name]; exists {
		return fmt.Errorf("%s %q already declared in this scope", sym.Kind, sym.Name)
	}
	sym.Level = t.Level()
	scope[sym.Name] = sym
	t.entries = append(t.entries, sym)
	return nil
}

// Lookup resolves a name against the active scopes, innermost first.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Entries returns every declaration in source order, including names
// whose scopes have since been exited.
func (t *SymbolTable) Entries() []*Symbol {
	return t.entries
}

// WriteTo renders the dump format: one line per declared name with its
// kind, scope level and payload, in declaration order.
func (t *SymbolTable) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, sym := range t.entries {
		n, err := fmt.Fprintf(w, "%-12s %-10s level=%d  %s\n", sym.Name, sym.Kind, sym.Level, sym.payload())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (t *SymbolTable) String() string {
	var sb strings.Builder
	t.WriteTo(&sb)
	return sb.String()
}
