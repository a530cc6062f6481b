package compiler

import "fmt"

// Run lexes, parses and evaluates a whole program and returns the final
// environment alongside the program's result value.
func Run(src string) (Env, int32, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, 0, fmt.Errorf("lex error: %w", err)
	}

	stmts, err := Parse(tokens, src)
	if err != nil {
		return nil, 0, fmt.Errorf("parse error: %w", err)
	}

	return Evaluate(stmts)
}

// RunExpr evaluates a single expression against an existing environment,
// as the REPL and the eval command do. A nil env means no variables are in
// scope.
func RunExpr(src string, env Env) (int32, error) {
	tokens, err := Lex(src)
	if err != nil {
		return 0, fmt.Errorf("lex error: %w", err)
	}

	expr, err := ParseExpr(tokens, src)
	if err != nil {
		return 0, fmt.Errorf("parse error: %w", err)
	}

	return EvalExpr(expr, env)
}
