package tac

import (
	"fmt"

	"minic/pkg/compiler"
)

// reservedNames are the listing mnemonics. A variable carrying one of these
// names would make the printed listing unparseable, so lowering rejects it.
var reservedNames = map[string]bool{
	"ret":  true,
	"goto": true,
	"ifz":  true,
	"ifnz": true,
}

type lowerer struct {
	instrs []Instruction
	tmps   int
	labels int
	vars   map[string]bool
}

func (l *lowerer) emit(in Instruction) {
	l.instrs = append(l.instrs, in)
}

func (l *lowerer) newTmp() Var {
	v := Var{Name: fmt.Sprintf("tmp.%d", l.tmps)}
	l.tmps++
	return v
}

func (l *lowerer) newLabel() string {
	name := fmt.Sprintf("label.%d", l.labels)
	l.labels++
	return name
}

func unaryOpFor(tt compiler.TokenType) UnaryOp {
	switch tt {
	case compiler.MINUS:
		return Negate
	case compiler.TILDE:
		return Complement
	case compiler.NOT:
		return LogicalNot
	default:
		panic("no unary lowering for " + tt.String())
	}
}

func binaryOpFor(tt compiler.TokenType) BinaryOp {
	switch tt {
	case compiler.PLUS:
		return Add
	case compiler.MINUS:
		return Subtract
	case compiler.STAR:
		return Multiply
	case compiler.SLASH:
		return Divide
	case compiler.PERCENT:
		return Modulo
	case compiler.AND:
		return BitAnd
	case compiler.PIPE:
		return BitOr
	case compiler.CARET:
		return BitXor
	case compiler.SHL_OP:
		return ShiftLeft
	case compiler.SHR_OP:
		return ShiftRight
	case compiler.EQUALS:
		return Equal
	case compiler.NOT_EQ:
		return NotEqual
	case compiler.LESS:
		return LessThan
	case compiler.GREATER:
		return GreaterThan
	case compiler.LESS_EQ:
		return LessOrEqual
	case compiler.GREATER_EQ:
		return GreaterOrEqual
	default:
		panic("no binary lowering for " + tt.String())
	}
}

// lowerExpr emits the instructions for e and returns the Val holding its
// result. Literals and variable reads emit nothing.
func (l *lowerer) lowerExpr(e compiler.Expr) (Val, error) {
	switch n := e.(type) {
	case *compiler.Literal:
		return Constant{Value: n.Value}, nil

	case *compiler.VarRef:
		// Straight-line code cannot declare conditionally, so an unknown
		// name here is unknown at run time too.
		if !l.vars[n.Name] {
			return nil, &compiler.EvalError{Kind: compiler.UndefinedVariable, Name: n.Name, Line: n.Line}
		}
		return Var{Name: n.Name}, nil

	case *compiler.UnaryExpr:
		src, err := l.lowerExpr(n.Right)
		if err != nil {
			return nil, err
		}
		dst := l.newTmp()
		l.emit(Unary{Op: unaryOpFor(n.Op), Src: src, Dst: dst})
		return dst, nil

	case *compiler.BinaryExpr:
		src1, err := l.lowerExpr(n.Left)
		if err != nil {
			return nil, err
		}
		src2, err := l.lowerExpr(n.Right)
		if err != nil {
			return nil, err
		}
		dst := l.newTmp()
		l.emit(Binary{Op: binaryOpFor(n.Op), Src1: src1, Src2: src2, Dst: dst})
		return dst, nil

	case *compiler.LogicalExpr:
		return l.lowerLogical(n)

	default:
		panic("unknown expression node")
	}
}

// lowerLogical emits the short-circuit shape for && and ||: normalise the
// left side to 0/1, jump past the right side when it already decides the
// result, otherwise overwrite with the normalised right side.
func (l *lowerer) lowerLogical(n *compiler.LogicalExpr) (Val, error) {
	leftVal, err := l.lowerExpr(n.Left)
	if err != nil {
		return nil, err
	}

	dst := l.newTmp()
	boolDst := l.newTmp()
	end := l.newLabel()

	l.emit(Binary{Op: NotEqual, Src1: leftVal, Src2: Constant{Value: 0}, Dst: boolDst})
	l.emit(Copy{Src: boolDst, Dst: dst})

	if n.Op == compiler.AND_LOGICAL {
		l.emit(JumpIfZero{Src: boolDst, Target: end})
	} else {
		l.emit(JumpIfNotZero{Src: boolDst, Target: end})
	}

	rightVal, err := l.lowerExpr(n.Right)
	if err != nil {
		return nil, err
	}
	l.emit(Binary{Op: NotEqual, Src1: rightVal, Src2: Constant{Value: 0}, Dst: dst})
	l.emit(Label{Name: end})

	return dst, nil
}

func (l *lowerer) lowerStmt(s compiler.Stmt) error {
	switch n := s.(type) {
	case *compiler.VariableDecl:
		if l.vars[n.Name] {
			return &compiler.EvalError{Kind: compiler.DuplicateDeclaration, Name: n.Name, Line: n.Line}
		}
		if reservedNames[n.Name] {
			return fmt.Errorf("line %d: variable name %q is reserved in listings", n.Line, n.Name)
		}
		var val Val = Constant{Value: 0}
		if n.Init != nil {
			v, err := l.lowerExpr(n.Init)
			if err != nil {
				return err
			}
			val = v
		}
		l.vars[n.Name] = true
		l.emit(Copy{Src: val, Dst: Var{Name: n.Name}})
		return nil

	case *compiler.Assignment:
		if !l.vars[n.Name] {
			return &compiler.EvalError{Kind: compiler.AssignmentToUndeclared, Name: n.Name, Line: n.Line}
		}
		val, err := l.lowerExpr(n.Value)
		if err != nil {
			return err
		}
		l.emit(Copy{Src: val, Dst: Var{Name: n.Name}})
		return nil

	case *compiler.ReturnStmt:
		var val Val = Constant{Value: 0}
		if n.Expr != nil {
			v, err := l.lowerExpr(n.Expr)
			if err != nil {
				return err
			}
			val = v
		}
		l.emit(Return{Src: val})
		return nil

	case *compiler.ExprStmt:
		// Lowered for its potential run-time faults; the value goes nowhere.
		_, err := l.lowerExpr(n.Expr)
		return err

	default:
		panic("unknown statement node")
	}
}

// Lower flattens a statement list into a Program. A trailing "ret 0" covers
// programs without an explicit return; statements after a source return still
// lower, but execution never reaches them.
func Lower(stmts []compiler.Stmt) (*Program, error) {
	l := &lowerer{vars: make(map[string]bool)}
	for _, s := range stmts {
		if err := l.lowerStmt(s); err != nil {
			return nil, err
		}
	}
	l.emit(Return{Src: Constant{Value: 0}})
	return &Program{Instrs: l.instrs}, nil
}
