package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = statement* EOF
//	           | "int" "main" "(" "void"? ")" "{" statement* "}" EOF
//	statement  = varDecl | assignment | returnStmt | exprStmt | ";"
//	varDecl    = "int" IDENTIFIER ("=" expression)? ";"
//	assignment = IDENTIFIER "=" expression ";"
//	returnStmt = "return" expression? ";"
//	exprStmt   = expression ";"
//	expression = logical_or
//	logical_or = logical_and ("||" logical_and)*
//	logical_and = bitwise_or ("&&" bitwise_or)*
//	bitwise_or = bitwise_xor ("|" bitwise_xor)*
//	bitwise_xor = bitwise_and ("^" bitwise_and)*
//	bitwise_and = equality ("&" equality)*
//	equality   = relational (("=="|"!=") relational)*
//	relational = shift (("<"|">"|"<="|">=") shift)*
//	shift      = additive (("<<"|">>") additive)*
//	additive   = multiplicative (("+"|"-") multiplicative)*
//	multiplicative = unary (("*"|"/"|"%") unary)*
//	unary      = ("-"|"~"|"!") unary | primary
//	primary    = INTEGER | IDENTIFIER | "(" expression ")"
//
// Assignment exists only as a statement; "=" inside an expression is an error.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

// parseLogicalOr handles ||
func (p *Parser) parseLogicalOr() (Expr, error) {
	expr, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR_LOGICAL {
		op := p.advance().Type
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseLogicalAnd handles &&
func (p *Parser) parseLogicalAnd() (Expr, error) {
	expr, err := p.parseBitwiseOr()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND_LOGICAL {
		op := p.advance().Type
		right, err := p.parseBitwiseOr()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseBitwiseOr handles | (lowest precedence among bitwise ops)
func (p *Parser) parseBitwiseOr() (Expr, error) {
	expr, err := p.parseBitwiseXor()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PIPE {
		opTok := p.advance()
		right, err := p.parseBitwiseXor()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}
	return expr, nil
}

// parseBitwiseXor handles ^
func (p *Parser) parseBitwiseXor() (Expr, error) {
	expr, err := p.parseBitwiseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == CARET {
		opTok := p.advance()
		right, err := p.parseBitwiseAnd()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}
	return expr, nil
}

// parseBitwiseAnd handles binary &
func (p *Parser) parseBitwiseAnd() (Expr, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		opTok := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}
	return expr, nil
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == EQUALS || p.peek().Type == NOT_EQ {
		opTok := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}

	return expr, nil
}

// parseRelational handles <, >, <= and >=
func (p *Parser) parseRelational() (Expr, error) {
	expr, err := p.parseShift()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == LESS || p.peek().Type == GREATER ||
		p.peek().Type == LESS_EQ || p.peek().Type == GREATER_EQ {
		opTok := p.advance()
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}

	return expr, nil
}

// parseShift handles << and >>
func (p *Parser) parseShift() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == SHL_OP || p.peek().Type == SHR_OP {
		opTok := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}
	return expr, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != PLUS && tt != MINUS {
			break
		}
		opTok := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}

	return expr, nil
}

// parseMultiplicative handles *, / and %
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != STAR && tt != SLASH && tt != PERCENT {
			break
		}
		opTok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: opTok.Type, Left: expr, Right: right, Line: opTok.Line}
	}

	return expr, nil
}

// parseUnary handles the prefix operators -, ~ and !
func (p *Parser) parseUnary() (Expr, error) {
	if p.peek().Type == MINUS || p.peek().Type == TILDE || p.peek().Type == NOT {
		op := p.advance().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Right: right}, nil
	}
	return p.parsePrimary()
}

// parsePrimary handles literals, variables, and parenthesised expressions.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.advance()
		// Base 0 gives the C reading: 0x.. hex, leading 0 octal, else decimal.
		val, err := strconv.ParseUint(tok.Lexeme, 0, 32)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, fmt.Errorf("line %d: integer %q out of 32-bit range", tok.Line, tok.Lexeme)
			}
			return nil, fmt.Errorf("line %d: invalid integer literal %q", tok.Line, tok.Lexeme)
		}
		// 0xFFFFFFFF reads back as -1: literals above MaxInt32 wrap, the
		// same reinterpretation the arithmetic itself uses.
		return &Literal{Value: int32(uint32(val))}, nil

	case IDENTIFIER:
		p.advance()
		return &VarRef{Name: tok.Lexeme, Line: tok.Line}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fmtError(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

// parseVarDecl parses  int name;  or  int name = expr;
func (p *Parser) parseVarDecl() (Stmt, error) {
	if _, err := p.expect(INT); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if p.peek().Type == LPAREN {
		return nil, p.fmtError(nameTok, "function %q is not allowed here, only a top-level main wrapper is recognised", nameTok.Lexeme)
	}

	decl := &VariableDecl{Name: nameTok.Lexeme, Line: nameTok.Line}
	if p.peek().Type == ASSIGN {
		p.advance()
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}

	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseAssignment parses  name = expr ;
// The caller has already seen IDENTIFIER followed by ASSIGN.
func (p *Parser) parseAssignment() (Stmt, error) {
	nameTok := p.advance()
	p.advance() // =

	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Assignment{Name: nameTok.Lexeme, Value: val, Line: nameTok.Line}, nil
}

// parseReturn parses  return expr ;  or  return ;
// The leading RETURN token has already been consumed by parseStatement.
func (p *Parser) parseReturn(retTok Token) (Stmt, error) {
	if p.peek().Type == SEMICOLON {
		p.advance()
		return &ReturnStmt{Expr: nil, Line: retTok.Line}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &ReturnStmt{Expr: expr, Line: retTok.Line}, nil
}

// parseStatement parses one statement. It returns (nil, nil) for the empty
// statement ";" so callers simply skip it.
func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case SEMICOLON:
		p.advance()
		return nil, nil

	case INT:
		return p.parseVarDecl()

	case RETURN:
		retTok := p.advance()
		return p.parseReturn(retTok)

	case IDENTIFIER:
		if p.peekAt(1).Type == ASSIGN {
			return p.parseAssignment()
		}
		fallthrough

	default:
		// Expression statement: evaluated for errors, result discarded.
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr}, nil
	}
}

// parseMainWrapper parses  int main ( void? ) { statement* }  and returns the
// body. The caller has already seen INT IDENTIFIER LPAREN at the current
// position.
func (p *Parser) parseMainWrapper() ([]Stmt, error) {
	p.advance() // int
	nameTok := p.advance()
	if nameTok.Lexeme != "main" {
		return nil, p.fmtError(nameTok, "unsupported function %q, only main is recognised", nameTok.Lexeme)
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	if p.peek().Type == VOID {
		p.advance()
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	var stmts []Stmt
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.fmtError(tok, "unexpected %s (%q) after the closing '}' of main", tok.Type, tok.Lexeme)
	}
	return stmts, nil
}

// Parse builds the statement list for a whole program. Both a bare statement
// list and the  int main(void) { ... }  wrapper shape are accepted; the
// wrapper contributes nothing beyond its body.
func Parse(tokens []Token, rawSource string) ([]Stmt, error) {
	p := NewParser(tokens, rawSource)

	if p.peek().Type == INT && p.peekAt(1).Type == IDENTIFIER && p.peekAt(2).Type == LPAREN {
		return p.parseMainWrapper()
	}

	var stmts []Stmt
	for p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// ParseExpr parses src as a single expression, e.g. one REPL line.
// A trailing semicolon is allowed.
func ParseExpr(tokens []Token, rawSource string) (Expr, error) {
	p := NewParser(tokens, rawSource)
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == SEMICOLON {
		p.advance()
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.fmtError(tok, "unexpected %s (%q) after expression", tok.Type, tok.Lexeme)
	}
	return expr, nil
}

// ParseStmt parses src as a single statement. The empty statement ";" yields
// (nil, nil).
func ParseStmt(tokens []Token, rawSource string) (Stmt, error) {
	p := NewParser(tokens, rawSource)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.fmtError(tok, "unexpected %s (%q) after statement", tok.Type, tok.Lexeme)
	}
	return stmt, nil
}
