package compiler

import (
	"strings"
	"testing"

	"plzero/pkg/tac"
)

// mustGenerate runs the front half of the pipeline and lowers the
// program, failing the test on any error.
func mustGenerate(t *testing.T, src string) *tac.Program {
	t.Helper()
	block, _ := mustResolve(t, src)
	prog, err := Generate(block)
	if err != nil {
		t.Fatalf("Generate(%q): %v", src, err)
	}
	return prog
}

func TestGenerateAssignment(t *testing.T) {
	prog := mustGenerate(t, "var x;\nx := 4 + 2.")

	want := `main:
t0 = LOAD 4
t1 = LOAD 2
t2 = + t0 t1
x = t2
HALT
`
	if got := prog.String(); got != want {
		t.Errorf("listing mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateIfLowering(t *testing.T) {
	prog := mustGenerate(t, "var x;\nbegin x := 1; if x < 2 then x := 3 end.")

	want := `main:
t0 = LOAD 1
x = t0
t1 = LOAD x
t2 = LOAD 2
t3 = < t1 t2
IF_NOT t3 GOTO L0
t4 = LOAD 3
x = t4
L0:
HALT
`
	if got := prog.String(); got != want {
		t.Errorf("listing mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateWhileLowering(t *testing.T) {
	prog := mustGenerate(t, "var n;\nbegin n := 2; while n > 0 do n := n - 1 end.")

	want := `main:
t0 = LOAD 2
n = t0
L0:
t1 = LOAD n
t2 = LOAD 0
t3 = > t1 t2
IF_NOT t3 GOTO L1
t4 = LOAD n
t5 = LOAD 1
t6 = - t4 t5
n = t6
GOTO L0
L1:
HALT
`
	if got := prog.String(); got != want {
		t.Errorf("listing mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateProcedureLayout(t *testing.T) {
	src := `var total;
procedure bump;
  total := total + 1;
begin
  total := 0;
  call bump
end.`
	prog := mustGenerate(t, src)

	want := `main:
t0 = LOAD 0
total = t0
CALL bump
HALT
bump:
t1 = LOAD total
t2 = LOAD 1
t3 = + t1 t2
total = t3
RETURN
`
	if got := prog.String(); got != want {
		t.Errorf("listing mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateOperatorSpellings(t *testing.T) {
	// The source comparison spellings normalize on the way down: "="
	// emits "==", "#" and "<>" emit "!=". A bare "=" in the listing is
	// always a copy.
	tests := []struct {
		cond   string
		wantOp string
	}{
		{"x = 1", "=="},
		{"x # 1", "!="},
		{"x <> 1", "!="},
		{"x < 1", "<"},
		{"x <= 1", "<="},
		{"x > 1", ">"},
		{"x >= 1", ">="},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			prog := mustGenerate(t, "var x;\nbegin x := 0; if "+tt.cond+" then x := 1 end.")
			listing := prog.String()
			// t1 and t2 load the operands, t3 holds the comparison.
			wantLine := "t3 = " + tt.wantOp + " t1 t2"
			if !strings.Contains(listing, wantLine) {
				t.Errorf("listing missing %q:\n%s", wantLine, listing)
			}
		})
	}
}

func TestGenerateConstantsInline(t *testing.T) {
	prog := mustGenerate(t, "const max = 7;\nvar x;\nx := max.")
	listing := prog.String()

	if !strings.Contains(listing, "t0 = LOAD 7") {
		t.Errorf("constant not inlined as its value:\n%s", listing)
	}
	if strings.Contains(listing, "LOAD max") {
		t.Errorf("constant read from memory instead of inlined:\n%s", listing)
	}
}

func TestGenerateUnaryMinus(t *testing.T) {
	prog := mustGenerate(t, "var x;\nx := -5.")

	want := `main:
t0 = LOAD 5
t1 = NEG t0
x = t1
HALT
`
	if got := prog.String(); got != want {
		t.Errorf("listing mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateReadWrite(t *testing.T) {
	prog := mustGenerate(t, "var x;\nbegin ? x; ! x + 1 end.")
	listing := prog.String()

	if !strings.Contains(listing, "READ x") {
		t.Errorf("listing missing READ x:\n%s", listing)
	}
	if !strings.Contains(listing, "PRINT t2") {
		t.Errorf("listing missing PRINT of the sum temporary:\n%s", listing)
	}
}

func TestGenerateProcedureLocalKeys(t *testing.T) {
	src := `var sum;
procedure addtwo;
  var step;
  begin
    step := 2;
    sum := sum + step
  end;
begin
  sum := 3;
  call addtwo
end.`
	prog := mustGenerate(t, src)
	listing := prog.String()

	if !strings.Contains(listing, "addtwo.step = ") {
		t.Errorf("local store does not use the qualified key:\n%s", listing)
	}
	if !strings.Contains(listing, "LOAD addtwo.step") {
		t.Errorf("local read does not use the qualified key:\n%s", listing)
	}
	if !strings.Contains(listing, "sum = ") {
		t.Errorf("global store lost its bare key:\n%s", listing)
	}
}

// Temporaries and labels number monotonically across the whole
// program: every definition is unique, procedures included.
func TestGenerateNamesUnique(t *testing.T) {
	src := `var a, b;
procedure p;
  if a < b then a := a + 1;
begin
  a := 0;
  b := 3;
  while a < b do
  begin
    call p;
    if b > 0 then b := b - 1
  end
end.`
	prog := mustGenerate(t, src)

	labels := map[string]bool{}
	temps := map[string]bool{}
	for _, in := range prog.Instrs {
		switch in.Op {
		case tac.Label:
			if labels[in.Result] {
				t.Errorf("label %q defined twice", in.Result)
			}
			labels[in.Result] = true
		case tac.Load, tac.Neg:
			if temps[in.Result] {
				t.Errorf("temporary %q defined twice", in.Result)
			}
			temps[in.Result] = true
		default:
			if tac.IsBinary(in.Op) {
				if temps[in.Result] {
					t.Errorf("temporary %q defined twice", in.Result)
				}
				temps[in.Result] = true
			}
		}
	}
	if !labels["main"] || !labels["p"] {
		t.Errorf("labels = %v, missing main or p", labels)
	}
}

func TestGenerateEmptyProgram(t *testing.T) {
	prog := mustGenerate(t, ".")

	want := `main:
HALT
`
	if got := prog.String(); got != want {
		t.Errorf("listing mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateRejectsUnresolved(t *testing.T) {
	// An AST that skipped Resolve has nil symbols; lowering it must
	// fail instead of emitting broken stores.
	block := &Block{Body: &AssignStmt{Name: "x", Value: &Number{Value: 1}}}
	_, err := Generate(block)
	if err == nil {
		t.Fatal("Generate succeeded on unresolved AST, want error")
	}
	if !strings.Contains(err.Error(), "not resolved") {
		t.Errorf("error = %q, want mention of unresolved identifier", err)
	}
}
