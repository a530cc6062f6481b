package compiler

import "fmt"

// ErrorKind classifies the ways an evaluation pass can fail.
type ErrorKind int

const (
	UndefinedVariable     ErrorKind = iota // read of a name with no declaration
	DuplicateDeclaration                   // same name declared twice
	AssignmentToUndeclared                 // write to a name with no declaration
	DivisionByZero                         // x / 0
	ModuloByZero                           // x % 0
)

var kindNames = [...]string{
	UndefinedVariable:      "UndefinedVariable",
	DuplicateDeclaration:   "DuplicateDeclaration",
	AssignmentToUndeclared: "AssignmentToUndeclared",
	DivisionByZero:         "DivisionByZero",
	ModuloByZero:           "ModuloByZero",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// EvalError is the terminal failure of one evaluation pass. Name is set for
// the variable-related kinds and empty for the arithmetic ones; Line is the
// 1-based source line, or 0 when the failing operation has no source position
// (an instruction executed from a listing, for example).
type EvalError struct {
	Kind ErrorKind
	Name string
	Line int
}

func (e *EvalError) Error() string {
	var msg string
	switch e.Kind {
	case UndefinedVariable:
		msg = fmt.Sprintf("undefined variable %q", e.Name)
	case DuplicateDeclaration:
		msg = fmt.Sprintf("variable %q already declared", e.Name)
	case AssignmentToUndeclared:
		msg = fmt.Sprintf("assignment to undeclared variable %q", e.Name)
	case DivisionByZero:
		msg = "division by zero"
	case ModuloByZero:
		msg = "modulo by zero"
	default:
		msg = fmt.Sprintf("evaluation error %d", int(e.Kind))
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}
