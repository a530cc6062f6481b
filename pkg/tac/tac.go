// Package tac holds the three-address intermediate form: a flat instruction
// list over named registers, lowered from the AST or parsed back from its
// textual listing.
package tac

import (
	"fmt"
	"strconv"
	"strings"
)

// Val is an instruction operand: a constant or a named register.
type Val interface {
	valNode()
	String() string
}

type Constant struct {
	Value int32
}

// Var names a register. User variables keep their source names; lowering
// temporaries are tmp.0, tmp.1, ... which no source identifier can collide
// with since '.' cannot appear in one.
type Var struct {
	Name string
}

func (Constant) valNode() {}
func (Var) valNode()      {}

func (c Constant) String() string { return strconv.FormatInt(int64(c.Value), 10) }
func (v Var) String() string      { return v.Name }

type UnaryOp int

const (
	Negate UnaryOp = iota
	Complement
	LogicalNot
)

var unaryOpStrings = [...]string{
	Negate:     "-",
	Complement: "~",
	LogicalNot: "!",
}

func (op UnaryOp) String() string {
	if int(op) >= 0 && int(op) < len(unaryOpStrings) {
		return unaryOpStrings[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", int(op))
}

// BinaryOp covers every operator an instruction can apply. The logical
// operators are absent: lowering turns && and || into jumps.
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Modulo
	BitAnd
	BitOr
	BitXor
	ShiftLeft
	ShiftRight
	Equal
	NotEqual
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
)

var binaryOpStrings = [...]string{
	Add:            "+",
	Subtract:       "-",
	Multiply:       "*",
	Divide:         "/",
	Modulo:         "%",
	BitAnd:         "&",
	BitOr:          "|",
	BitXor:         "^",
	ShiftLeft:      "<<",
	ShiftRight:     ">>",
	Equal:          "==",
	NotEqual:       "!=",
	LessThan:       "<",
	GreaterThan:    ">",
	LessOrEqual:    "<=",
	GreaterOrEqual: ">=",
}

func (op BinaryOp) String() string {
	if int(op) >= 0 && int(op) < len(binaryOpStrings) {
		return binaryOpStrings[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// Instruction is one line of a listing. Implementations are plain value
// structs so whole programs compare with reflect.DeepEqual in tests.
type Instruction interface {
	instrNode()
	String() string
}

type Copy struct {
	Src Val
	Dst Var
}

type Unary struct {
	Op  UnaryOp
	Src Val
	Dst Var
}

type Binary struct {
	Op         BinaryOp
	Src1, Src2 Val
	Dst        Var
}

type Jump struct {
	Target string
}

type JumpIfZero struct {
	Src    Val
	Target string
}

type JumpIfNotZero struct {
	Src    Val
	Target string
}

type Label struct {
	Name string
}

type Return struct {
	Src Val
}

func (Copy) instrNode()          {}
func (Unary) instrNode()         {}
func (Binary) instrNode()        {}
func (Jump) instrNode()          {}
func (JumpIfZero) instrNode()    {}
func (JumpIfNotZero) instrNode() {}
func (Label) instrNode()         {}
func (Return) instrNode()        {}

// The listing format is canonical: binary operators are always surrounded by
// single spaces, so "- " is an operator while "-5" is a constant.
func (i Copy) String() string   { return fmt.Sprintf("%s = %s", i.Dst, i.Src) }
func (i Unary) String() string  { return fmt.Sprintf("%s = %s %s", i.Dst, i.Op, i.Src) }
func (i Binary) String() string { return fmt.Sprintf("%s = %s %s %s", i.Dst, i.Src1, i.Op, i.Src2) }
func (i Jump) String() string   { return fmt.Sprintf("goto %s", i.Target) }
func (i JumpIfZero) String() string {
	return fmt.Sprintf("ifz %s goto %s", i.Src, i.Target)
}
func (i JumpIfNotZero) String() string {
	return fmt.Sprintf("ifnz %s goto %s", i.Src, i.Target)
}
func (i Label) String() string  { return i.Name + ":" }
func (i Return) String() string { return "ret " + i.Src.String() }

// Program is a lowered compilation unit. The source language has a single
// implicit function, so a flat instruction list is the whole program.
type Program struct {
	Instrs []Instruction
}

// String renders the listing: labels flush left, everything else indented.
// ParseListing reads the result back; String and ParseListing round-trip.
func (p *Program) String() string {
	var b strings.Builder
	for _, in := range p.Instrs {
		if _, ok := in.(Label); !ok {
			b.WriteString("  ")
		}
		b.WriteString(in.String())
		b.WriteByte('\n')
	}
	return b.String()
}
