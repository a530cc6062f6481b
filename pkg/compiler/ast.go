package compiler

import "fmt"

//  Expression nodes

// Expr is implemented by every node that produces a value.
// Expression trees are built bottom-up by the parser and never mutated.
type Expr interface {
	exprNode()
	String() string
}

// Literal is an integer constant.
//
//	int x = 10;
//	         ^^  Literal{Value: 10}
type Literal struct {
	Value int32
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return fmt.Sprintf("%d", l.Value) }

// VarRef is a read of a named variable.
//
//	return x;
//	       ^  VarRef{Name: "x"}
type VarRef struct {
	Name string
	Line int
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// BinaryExpr represents a binary operation: Left Op Right.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
	Line  int // line of the operator, for runtime error reports
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opGlyphs[b.Op], b.Right)
}

// LogicalExpr represents Left && Right or Left || Right.
// It is separate from BinaryExpr because evaluation short-circuits.
type LogicalExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*LogicalExpr) exprNode() {}
func (l *LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Left, opGlyphs[l.Op], l.Right)
}

// UnaryExpr represents Op Right (e.g., -x, ~x, !x).
type UnaryExpr struct {
	Op    TokenType
	Right Expr
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", opGlyphs[u.Op], u.Right) }

// opGlyphs maps operator token types back to their source spelling so that
// AST dumps read like the expression they came from.
var opGlyphs = map[TokenType]string{
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	PERCENT:     "%",
	AND:         "&",
	PIPE:        "|",
	CARET:       "^",
	TILDE:       "~",
	SHL_OP:      "<<",
	SHR_OP:      ">>",
	AND_LOGICAL: "&&",
	OR_LOGICAL:  "||",
	NOT:         "!",
	EQUALS:      "==",
	NOT_EQ:      "!=",
	LESS:        "<",
	GREATER:     ">",
	LESS_EQ:     "<=",
	GREATER_EQ:  ">=",
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// VariableDecl represents  int name = expr;
// Init is nil for a bare declaration (int name;), which binds zero.
type VariableDecl struct {
	Name string
	Init Expr
	Line int
}

func (*VariableDecl) stmtNode() {}
func (d *VariableDecl) String() string {
	if d.Init == nil {
		return fmt.Sprintf("VariableDecl(int %s)", d.Name)
	}
	return fmt.Sprintf("VariableDecl(int %s = %s)", d.Name, d.Init)
}

// Assignment represents  name = expr;
type Assignment struct {
	Name  string
	Value Expr
	Line  int
}

func (*Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment(%s = %s)", a.Name, a.Value)
}

// ReturnStmt represents  return expr;
// Expr is nil for a bare return, which yields zero.
type ReturnStmt struct {
	Expr Expr
	Line int
}

func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	if r.Expr == nil {
		return "ReturnStmt()"
	}
	return fmt.Sprintf("ReturnStmt(%s)", r.Expr)
}

// ExprStmt represents an expression evaluated and discarded (e.g.  a + 1;).
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}
func (e *ExprStmt) String() string {
	return fmt.Sprintf("ExprStmt(%s)", e.Expr)
}
