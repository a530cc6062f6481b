package compiler

// Constant folding. Fold rewrites expression trees so that operators whose
// operands are all literals are computed up front. Anything that would fail
// at run time, like 1/0, is left alone so the evaluator still reports it.

// FoldExpr returns e with constant subexpressions collapsed to literals.
// The input tree is never modified; rebuilt nodes are fresh.
func FoldExpr(e Expr) Expr {
	switch n := e.(type) {
	case *Literal, *VarRef:
		return e

	case *UnaryExpr:
		right := FoldExpr(n.Right)
		if lit, ok := right.(*Literal); ok {
			return &Literal{Value: applyUnary(n.Op, lit.Value)}
		}
		return &UnaryExpr{Op: n.Op, Right: right}

	case *BinaryExpr:
		left := FoldExpr(n.Left)
		right := FoldExpr(n.Right)
		ll, lok := left.(*Literal)
		rl, rok := right.(*Literal)
		if lok && rok {
			val, err := applyBinary(n.Op, ll.Value, rl.Value, n.Line)
			if err == nil {
				return &Literal{Value: val}
			}
		}
		return &BinaryExpr{Op: n.Op, Left: left, Right: right, Line: n.Line}

	case *LogicalExpr:
		left := FoldExpr(n.Left)
		right := FoldExpr(n.Right)
		ll, lok := left.(*Literal)
		rl, rok := right.(*Literal)
		if lok && rok {
			if n.Op == AND_LOGICAL {
				return &Literal{Value: boolToInt(ll.Value != 0 && rl.Value != 0)}
			}
			return &Literal{Value: boolToInt(ll.Value != 0 || rl.Value != 0)}
		}
		if lok {
			// A deciding left side makes the right side dead, exactly as
			// short-circuit evaluation would skip it.
			if n.Op == AND_LOGICAL && ll.Value == 0 {
				return &Literal{Value: 0}
			}
			if n.Op == OR_LOGICAL && ll.Value != 0 {
				return &Literal{Value: 1}
			}
		}
		return &LogicalExpr{Op: n.Op, Left: left, Right: right}

	default:
		panic("unknown expression node")
	}
}

// Fold applies FoldExpr to every expression position in a statement list.
// Statements themselves are never added or removed.
func Fold(stmts []Stmt) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch n := s.(type) {
		case *VariableDecl:
			decl := &VariableDecl{Name: n.Name, Line: n.Line}
			if n.Init != nil {
				decl.Init = FoldExpr(n.Init)
			}
			out = append(out, decl)

		case *Assignment:
			out = append(out, &Assignment{Name: n.Name, Value: FoldExpr(n.Value), Line: n.Line})

		case *ReturnStmt:
			ret := &ReturnStmt{Line: n.Line}
			if n.Expr != nil {
				ret.Expr = FoldExpr(n.Expr)
			}
			out = append(out, ret)

		case *ExprStmt:
			out = append(out, &ExprStmt{Expr: FoldExpr(n.Expr)})

		default:
			panic("unknown statement node")
		}
	}
	return out
}
