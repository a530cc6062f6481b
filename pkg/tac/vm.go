package tac

import (
	"fmt"
	"strings"

	"minic/pkg/compiler"
)

// DefaultStepLimit bounds Run when the caller passes no limit of its own.
const DefaultStepLimit = 100000

// Machine executes a Program one instruction at a time. Registers live in
// Regs under their listing names; Result carries the operand of the ret
// instruction that halted the machine.
type Machine struct {
	Regs   map[string]int32
	PC     int
	Halted bool
	Result int32

	prog   *Program
	labels map[string]int
}

// NewMachine resolves the program's labels up front: duplicate labels and
// jumps to missing labels are rejected before any step runs.
func NewMachine(p *Program) (*Machine, error) {
	labels := make(map[string]int)
	for idx, in := range p.Instrs {
		if lbl, ok := in.(Label); ok {
			if _, dup := labels[lbl.Name]; dup {
				return nil, fmt.Errorf("duplicate label %q", lbl.Name)
			}
			labels[lbl.Name] = idx
		}
	}
	for _, in := range p.Instrs {
		var target string
		switch j := in.(type) {
		case Jump:
			target = j.Target
		case JumpIfZero:
			target = j.Target
		case JumpIfNotZero:
			target = j.Target
		default:
			continue
		}
		if _, ok := labels[target]; !ok {
			return nil, fmt.Errorf("jump to unknown label %q", target)
		}
	}

	return &Machine{
		Regs:   make(map[string]int32),
		prog:   p,
		labels: labels,
	}, nil
}

func (m *Machine) value(v Val) (int32, error) {
	switch val := v.(type) {
	case Constant:
		return val.Value, nil
	case Var:
		n, ok := m.Regs[val.Name]
		if !ok {
			// No source positions survive into listings, hence Line 0.
			return 0, &compiler.EvalError{Kind: compiler.UndefinedVariable, Name: val.Name}
		}
		return n, nil
	default:
		panic("unknown operand")
	}
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func evalUnary(op UnaryOp, v int32) int32 {
	switch op {
	case Negate:
		return -v
	case Complement:
		return ^v
	case LogicalNot:
		return boolToInt(v == 0)
	default:
		panic("unknown unary op " + op.String())
	}
}

func evalBinary(op BinaryOp, a, b int32) (int32, error) {
	switch op {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	case Multiply:
		return a * b, nil
	case Divide:
		if b == 0 {
			return 0, &compiler.EvalError{Kind: compiler.DivisionByZero}
		}
		return a / b, nil
	case Modulo:
		if b == 0 {
			return 0, &compiler.EvalError{Kind: compiler.ModuloByZero}
		}
		return a % b, nil
	case BitAnd:
		return a & b, nil
	case BitOr:
		return a | b, nil
	case BitXor:
		return a ^ b, nil
	case ShiftLeft:
		return a << (uint32(b) % 32), nil
	case ShiftRight:
		return a >> (uint32(b) % 32), nil
	case Equal:
		return boolToInt(a == b), nil
	case NotEqual:
		return boolToInt(a != b), nil
	case LessThan:
		return boolToInt(a < b), nil
	case GreaterThan:
		return boolToInt(a > b), nil
	case LessOrEqual:
		return boolToInt(a <= b), nil
	case GreaterOrEqual:
		return boolToInt(a >= b), nil
	default:
		panic("unknown binary op " + op.String())
	}
}

// Step executes one instruction. Once the machine has halted, or after any
// error, further calls do nothing.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	if m.PC < 0 || m.PC >= len(m.prog.Instrs) {
		// Fell off the end of a hand-written listing: implicit ret 0.
		m.Halted = true
		return nil
	}

	in := m.prog.Instrs[m.PC]
	m.PC++

	switch i := in.(type) {
	case Copy:
		v, err := m.value(i.Src)
		if err != nil {
			m.Halted = true
			return err
		}
		m.Regs[i.Dst.Name] = v

	case Unary:
		v, err := m.value(i.Src)
		if err != nil {
			m.Halted = true
			return err
		}
		m.Regs[i.Dst.Name] = evalUnary(i.Op, v)

	case Binary:
		a, err := m.value(i.Src1)
		if err != nil {
			m.Halted = true
			return err
		}
		b, err := m.value(i.Src2)
		if err != nil {
			m.Halted = true
			return err
		}
		res, err := evalBinary(i.Op, a, b)
		if err != nil {
			m.Halted = true
			return err
		}
		m.Regs[i.Dst.Name] = res

	case Jump:
		m.PC = m.labels[i.Target]

	case JumpIfZero:
		v, err := m.value(i.Src)
		if err != nil {
			m.Halted = true
			return err
		}
		if v == 0 {
			m.PC = m.labels[i.Target]
		}

	case JumpIfNotZero:
		v, err := m.value(i.Src)
		if err != nil {
			m.Halted = true
			return err
		}
		if v != 0 {
			m.PC = m.labels[i.Target]
		}

	case Label:
		// No effect at run time.

	case Return:
		v, err := m.value(i.Src)
		if err != nil {
			m.Halted = true
			return err
		}
		m.Result = v
		m.Halted = true

	default:
		panic("unknown instruction")
	}
	return nil
}

// Run steps until the machine halts. limit <= 0 selects DefaultStepLimit;
// exceeding the limit is an error so a looping listing cannot spin forever.
func (m *Machine) Run(limit int) error {
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	for i := 0; i < limit; i++ {
		if m.Halted {
			return nil
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	if !m.Halted {
		return fmt.Errorf("machine did not halt after %d steps", limit)
	}
	return nil
}

// Vars returns the user-visible registers, without lowering temporaries.
func (m *Machine) Vars() map[string]int32 {
	out := make(map[string]int32, len(m.Regs))
	for name, v := range m.Regs {
		if strings.HasPrefix(name, "tmp.") {
			continue
		}
		out[name] = v
	}
	return out
}

// Execute lowers nothing and parses nothing: it simply runs p on a fresh
// machine and reports the variables and result, mirroring the shape of the
// tree evaluator's output.
func Execute(p *Program, limit int) (map[string]int32, int32, error) {
	m, err := NewMachine(p)
	if err != nil {
		return nil, 0, err
	}
	if err := m.Run(limit); err != nil {
		return nil, 0, err
	}
	return m.Vars(), m.Result, nil
}
