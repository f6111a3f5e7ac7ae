// Package vm executes three-address code programs.
//
// Execution is two-pass: construction scans the program once and builds
// the label table, then Run walks instructions from the "main" label
// (or instruction 0 when no such label exists) until HALT, a fault, or
// the end of the program. Memory is a flat map from string keys to
// integers; temporaries share it with named variables.
package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"plzero/pkg/tac"
)

// Runtime faults. Every fault returned by Run or Step wraps one of
// these and carries the pc and instruction text.
var (
	ErrUnbound       = errors.New("unbound memory key")
	ErrUnknownLabel  = errors.New("unknown label")
	ErrCallUnderflow = errors.New("RETURN with empty call stack")
	ErrDivideByZero  = errors.New("division by zero")
	ErrLimit         = errors.New("limit exceeded")
)

// Capacity defaults, applied wherever a Limits field is zero.
const (
	DefaultProgram   = 1000
	DefaultLabels    = 100
	DefaultMemory    = 100
	DefaultCallDepth = 100
)

// Limits bounds the machine's growable containers. The zero value of a
// field selects its default; Steps has no default bound, so zero means
// the machine runs until it halts on its own.
type Limits struct {
	Program   int
	Labels    int
	Memory    int
	CallDepth int
	Steps     int
}

func (l Limits) withDefaults() Limits {
	if l.Program == 0 {
		l.Program = DefaultProgram
	}
	if l.Labels == 0 {
		l.Labels = DefaultLabels
	}
	if l.Memory == 0 {
		l.Memory = DefaultMemory
	}
	if l.CallDepth == 0 {
		l.CallDepth = DefaultCallDepth
	}
	return l
}

// Machine runs one program. It is not safe for concurrent use.
type Machine struct {
	prog   *tac.Program
	labels map[string]int
	mem    map[string]int64
	stack  []int
	pc     int
	halted bool
	steps  int64
	limits Limits
	out    io.Writer
	in     io.Reader
	scan   *bufio.Scanner
	log    *slog.Logger
	temps  bool
}

// Option configures a Machine at construction.
type Option func(*Machine)

// WithOutput directs PRINT to w. The default is standard output.
func WithOutput(w io.Writer) Option {
	return func(m *Machine) { m.out = w }
}

// WithInput makes READ consume whitespace-separated integers from r.
// The default is standard input.
func WithInput(r io.Reader) Option {
	return func(m *Machine) { m.in = r }
}

// WithLogger traces every executed instruction at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithLimits replaces the default capacity bounds.
func WithLimits(l Limits) Option {
	return func(m *Machine) { m.limits = l }
}

// WithTemporaries makes Bindings include temporary keys instead of
// filtering them out.
func WithTemporaries() Option {
	return func(m *Machine) { m.temps = true }
}

// New loads prog, builds the label table and positions the machine at
// the "main" label when the program defines one. Duplicate labels and
// programs over the configured bounds fail here, before anything runs.
func New(prog *tac.Program, opts ...Option) (*Machine, error) {
	m := &Machine{
		prog:   prog,
		labels: make(map[string]int),
		mem:    make(map[string]int64),
		out:    os.Stdout,
		in:     os.Stdin,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.limits = m.limits.withDefaults()

	if n := len(prog.Instrs); n > m.limits.Program {
		return nil, fmt.Errorf("vm: %w: program has %d instructions, limit %d", ErrLimit, n, m.limits.Program)
	}
	for i, in := range prog.Instrs {
		if in.Op != tac.Label {
			continue
		}
		if prev, dup := m.labels[in.Result]; dup {
			return nil, fmt.Errorf("vm: duplicate label %q at instructions %d and %d", in.Result, prev, i)
		}
		if len(m.labels) >= m.limits.Labels {
			return nil, fmt.Errorf("vm: %w: more than %d labels", ErrLimit, m.limits.Labels)
		}
		m.labels[in.Result] = i
	}
	if start, ok := m.labels["main"]; ok {
		m.pc = start
	}
	return m, nil
}

// Run executes until the program halts or faults.
func (m *Machine) Run() error {
	for {
		more, err := m.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Halted reports whether the machine has stopped.
func (m *Machine) Halted() bool { return m.halted }

// Steps returns how many instructions have executed. Labels are
// position markers, not instructions, and are never counted.
func (m *Machine) Steps() int64 { return m.steps }

// Value reads one memory cell.
func (m *Machine) Value(key string) (int64, bool) {
	v, ok := m.mem[key]
	return v, ok
}

// Bindings returns a copy of memory with temporary keys (t0, t1, …)
// filtered out, unless the machine was built WithTemporaries.
func (m *Machine) Bindings() map[string]int64 {
	out := make(map[string]int64, len(m.mem))
	for k, v := range m.mem {
		if !m.temps && isTemp(k) {
			continue
		}
		out[k] = v
	}
	return out
}

func isTemp(key string) bool {
	if len(key) < 2 || key[0] != 't' {
		return false
	}
	for _, r := range key[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Step executes the next instruction. It reports false once the
// machine has halted; calling it again after that is a no-op.
func (m *Machine) Step() (bool, error) {
	if m.halted {
		return false, nil
	}
	for m.pc >= 0 && m.pc < len(m.prog.Instrs) && m.prog.Instrs[m.pc].Op == tac.Label {
		m.pc++
	}
	if m.pc < 0 || m.pc >= len(m.prog.Instrs) {
		m.halted = true
		return false, nil
	}
	if m.limits.Steps > 0 && m.steps >= int64(m.limits.Steps) {
		return false, m.faultf("%w: more than %d steps", ErrLimit, m.limits.Steps)
	}

	in := m.prog.Instrs[m.pc]
	m.steps++
	m.log.Debug("exec", slog.Int("pc", m.pc), slog.String("instr", in.String()))

	switch in.Op {
	case tac.Load, tac.Copy:
		v, err := m.operand(in.Arg1)
		if err != nil {
			return false, err
		}
		if err := m.store(in.Result, v); err != nil {
			return false, err
		}

	case tac.Neg:
		v, err := m.operand(in.Arg1)
		if err != nil {
			return false, err
		}
		if err := m.store(in.Result, -v); err != nil {
			return false, err
		}

	case tac.Goto:
		return m.jump(in.Result)

	case tac.IfNot:
		cond, err := m.operand(in.Arg1)
		if err != nil {
			return false, err
		}
		if cond == 0 {
			return m.jump(in.Result)
		}

	case tac.Call:
		if len(m.stack) >= m.limits.CallDepth {
			return false, m.faultf("%w: call depth over %d", ErrLimit, m.limits.CallDepth)
		}
		target, ok := m.labels[in.Result]
		if !ok {
			return false, m.faultf("%w %q", ErrUnknownLabel, in.Result)
		}
		m.stack = append(m.stack, m.pc+1)
		m.pc = target
		return true, nil

	case tac.Return:
		if len(m.stack) == 0 {
			return false, m.faultf("%w", ErrCallUnderflow)
		}
		m.pc = m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		return true, nil

	case tac.Halt:
		m.halted = true
		return false, nil

	case tac.Print:
		v, err := m.operand(in.Arg1)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(m.out, "%d\n", v)

	case tac.Read:
		v, err := m.readInt()
		if err != nil {
			return false, err
		}
		if err := m.store(in.Result, v); err != nil {
			return false, err
		}

	default:
		if tac.IsBinary(in.Op) {
			return m.binary(in)
		}
		return false, m.faultf("unknown opcode %q", string(in.Op))
	}

	m.pc++
	return true, nil
}

func (m *Machine) binary(in tac.Instruction) (bool, error) {
	a, err := m.operand(in.Arg1)
	if err != nil {
		return false, err
	}
	b, err := m.operand(in.Arg2)
	if err != nil {
		return false, err
	}
	var v int64
	switch in.Op {
	case tac.Add:
		v = a + b
	case tac.Sub:
		v = a - b
	case tac.Mul:
		v = a * b
	case tac.Div:
		if b == 0 {
			return false, m.faultf("%w", ErrDivideByZero)
		}
		v = a / b
	case tac.Eq:
		v = b2i(a == b)
	case tac.Ne:
		v = b2i(a != b)
	case tac.Lt:
		v = b2i(a < b)
	case tac.Le:
		v = b2i(a <= b)
	case tac.Gt:
		v = b2i(a > b)
	case tac.Ge:
		v = b2i(a >= b)
	}
	if err := m.store(in.Result, v); err != nil {
		return false, err
	}
	m.pc++
	return true, nil
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (m *Machine) jump(label string) (bool, error) {
	target, ok := m.labels[label]
	if !ok {
		return false, m.faultf("%w %q", ErrUnknownLabel, label)
	}
	m.pc = target
	return true, nil
}

// operand resolves an instruction argument. Anything that parses as an
// integer is a literal; every other spelling names a memory cell, and
// reading a cell that was never written is fatal.
func (m *Machine) operand(arg string) (int64, error) {
	if isLiteral(arg) {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return 0, m.faultf("bad literal %q", arg)
		}
		return v, nil
	}
	v, ok := m.mem[arg]
	if !ok {
		return 0, m.faultf("%w %q", ErrUnbound, arg)
	}
	return v, nil
}

func isLiteral(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		arg = arg[1:]
	}
	if arg == "" {
		return false
	}
	return arg[0] >= '0' && arg[0] <= '9'
}

func (m *Machine) store(key string, v int64) error {
	if _, ok := m.mem[key]; !ok && len(m.mem) >= m.limits.Memory {
		return m.faultf("%w: more than %d memory cells", ErrLimit, m.limits.Memory)
	}
	m.mem[key] = v
	return nil
}

func (m *Machine) readInt() (int64, error) {
	if m.scan == nil {
		m.scan = bufio.NewScanner(m.in)
		m.scan.Split(bufio.ScanWords)
	}
	if !m.scan.Scan() {
		if err := m.scan.Err(); err != nil {
			return 0, m.faultf("read: %v", err)
		}
		return 0, m.faultf("read past end of input")
	}
	v, err := strconv.ParseInt(m.scan.Text(), 10, 64)
	if err != nil {
		return 0, m.faultf("read %q: not an integer", m.scan.Text())
	}
	return v, nil
}

func (m *Machine) faultf(format string, args ...any) error {
	in := m.prog.Instrs[m.pc]
	return fmt.Errorf("vm: pc %d (%s): "+format, append([]any{m.pc, in.String()}, args...)...)
}
