package compiler

// Env holds the variable bindings of a program run. All values are int32;
// every operation wraps in two's complement like a 32-bit machine register.
type Env map[string]int32

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// applyUnary computes a prefix operator. No unary operator can fail.
func applyUnary(op TokenType, v int32) int32 {
	switch op {
	case MINUS:
		return -v
	case TILDE:
		return ^v
	case NOT:
		return boolToInt(v == 0)
	default:
		panic("unknown unary operator " + op.String())
	}
}

// applyBinary computes a non-short-circuit binary operator. line is attached
// to division and modulo errors so they point at the operator in the source.
func applyBinary(op TokenType, l, r int32, line int) (int32, error) {
	switch op {
	case PLUS:
		return l + r, nil
	case MINUS:
		return l - r, nil
	case STAR:
		return l * r, nil
	case SLASH:
		if r == 0 {
			return 0, &EvalError{Kind: DivisionByZero, Line: line}
		}
		// Truncating division; MinInt32 / -1 wraps back to MinInt32.
		return l / r, nil
	case PERCENT:
		if r == 0 {
			return 0, &EvalError{Kind: ModuloByZero, Line: line}
		}
		return l % r, nil
	case AND:
		return l & r, nil
	case PIPE:
		return l | r, nil
	case CARET:
		return l ^ r, nil
	case SHL_OP:
		return l << (uint32(r) % 32), nil
	case SHR_OP:
		// Arithmetic shift: the sign bit is replicated.
		return l >> (uint32(r) % 32), nil
	case EQUALS:
		return boolToInt(l == r), nil
	case NOT_EQ:
		return boolToInt(l != r), nil
	case LESS:
		return boolToInt(l < r), nil
	case GREATER:
		return boolToInt(l > r), nil
	case LESS_EQ:
		return boolToInt(l <= r), nil
	case GREATER_EQ:
		return boolToInt(l >= r), nil
	default:
		panic("unknown binary operator " + op.String())
	}
}

// EvalExpr evaluates a single expression against env. env is never modified.
func EvalExpr(e Expr, env Env) (int32, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Value, nil

	case *VarRef:
		val, ok := env[n.Name]
		if !ok {
			return 0, &EvalError{Kind: UndefinedVariable, Name: n.Name, Line: n.Line}
		}
		return val, nil

	case *UnaryExpr:
		val, err := EvalExpr(n.Right, env)
		if err != nil {
			return 0, err
		}
		return applyUnary(n.Op, val), nil

	case *BinaryExpr:
		left, err := EvalExpr(n.Left, env)
		if err != nil {
			return 0, err
		}
		right, err := EvalExpr(n.Right, env)
		if err != nil {
			return 0, err
		}
		return applyBinary(n.Op, left, right, n.Line)

	case *LogicalExpr:
		left, err := EvalExpr(n.Left, env)
		if err != nil {
			return 0, err
		}
		// Short circuit: the right side is not evaluated when the left
		// side already decides the outcome, so 0 && (1/0) is 0.
		if n.Op == AND_LOGICAL && left == 0 {
			return 0, nil
		}
		if n.Op == OR_LOGICAL && left != 0 {
			return 1, nil
		}
		right, err := EvalExpr(n.Right, env)
		if err != nil {
			return 0, err
		}
		return boolToInt(right != 0), nil

	default:
		panic("unknown expression node")
	}
}

// EvalStmt executes one statement, mutating env. A non-nil result means a
// return statement ran and carries the value the program finished with.
func EvalStmt(s Stmt, env Env) (*int32, error) {
	switch n := s.(type) {
	case *VariableDecl:
		if _, exists := env[n.Name]; exists {
			return nil, &EvalError{Kind: DuplicateDeclaration, Name: n.Name, Line: n.Line}
		}
		var val int32
		if n.Init != nil {
			// The initialiser sees the environment before the name is
			// bound, so  int a = a;  reports a as undefined.
			v, err := EvalExpr(n.Init, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		env[n.Name] = val
		return nil, nil

	case *Assignment:
		if _, exists := env[n.Name]; !exists {
			return nil, &EvalError{Kind: AssignmentToUndeclared, Name: n.Name, Line: n.Line}
		}
		val, err := EvalExpr(n.Value, env)
		if err != nil {
			return nil, err
		}
		env[n.Name] = val
		return nil, nil

	case *ReturnStmt:
		var val int32
		if n.Expr != nil {
			v, err := EvalExpr(n.Expr, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &val, nil

	case *ExprStmt:
		if _, err := EvalExpr(n.Expr, env); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		panic("unknown statement node")
	}
}

// Evaluate runs a statement list top to bottom against a fresh environment.
// It stops at the first return statement and reports its value; a program
// without one finishes with value 0. The final environment reflects every
// statement executed before the stop.
func Evaluate(stmts []Stmt) (Env, int32, error) {
	env := make(Env)
	for _, s := range stmts {
		ret, err := EvalStmt(s, env)
		if err != nil {
			return nil, 0, err
		}
		if ret != nil {
			return env, *ret, nil
		}
	}
	return env, 0, nil
}
