package tac

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Listing tokens. Int is tried before Op so "-5" lexes as one negative
// constant while "- " (the canonical spacing of the operator) lexes as an
// operator; Ident admits '.' for tmp.N and label.N names.
var listingLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Op", Pattern: `<<|>>|<=|>=|==|!=|[-+*/%&|^~!<>]`},
	{Name: "Punct", Pattern: `[=:]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var unaryOps = map[string]UnaryOp{
	"-": Negate,
	"~": Complement,
	"!": LogicalNot,
}

var binaryOps = map[string]BinaryOp{
	"+":  Add,
	"-":  Subtract,
	"*":  Multiply,
	"/":  Divide,
	"%":  Modulo,
	"&":  BitAnd,
	"|":  BitOr,
	"^":  BitXor,
	"<<": ShiftLeft,
	">>": ShiftRight,
	"==": Equal,
	"!=": NotEqual,
	"<":  LessThan,
	">":  GreaterThan,
	"<=": LessOrEqual,
	">=": GreaterOrEqual,
}

type listingFile struct {
	Lines []*listingLine `parser:"@@*"`
}

type listingLine struct {
	Label  *labelLine  `parser:"@@"`
	Ret    *retLine    `parser:"| @@"`
	Goto   *gotoLine   `parser:"| @@"`
	Cond   *condLine   `parser:"| @@"`
	Assign *assignLine `parser:"| @@"`
}

type labelLine struct {
	Name string `parser:"@Ident ':'"`
}

type retLine struct {
	Src *operand `parser:"'ret' @@"`
}

type gotoLine struct {
	Target string `parser:"'goto' @Ident"`
}

type condLine struct {
	Mnemonic string   `parser:"@('ifz' | 'ifnz')"`
	Src      *operand `parser:"@@"`
	Target   string   `parser:"'goto' @Ident"`
}

type assignLine struct {
	Dst   string     `parser:"@Ident '='"`
	Unary *unaryRHS  `parser:"( @@"`
	Bin   *binaryRHS `parser:"| @@"`
	Copy  *operand   `parser:"| @@ )"`
}

type unaryRHS struct {
	Op  string   `parser:"@('-' | '~' | '!')"`
	Src *operand `parser:"@@"`
}

type binaryRHS struct {
	Src1 *operand `parser:"@@"`
	Op   string   `parser:"@('<<' | '>>' | '<=' | '>=' | '==' | '!=' | '+' | '-' | '*' | '/' | '%' | '&' | '|' | '^' | '<' | '>')"`
	Src2 *operand `parser:"@@"`
}

type operand struct {
	Number *int32  `parser:"@Int"`
	Name   *string `parser:"| @Ident"`
}

func (o *operand) val() Val {
	if o.Number != nil {
		return Constant{Value: *o.Number}
	}
	return Var{Name: *o.Name}
}

var listingParser = participle.MustBuild[listingFile](
	participle.Lexer(listingLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// ParseListing reads a textual listing back into a Program. It accepts the
// exact output of Program.String, plus ; comments and free-form spacing.
func ParseListing(src string) (*Program, error) {
	file, err := listingParser.ParseString("listing", src)
	if err != nil {
		return nil, fmt.Errorf("listing parse error: %w", err)
	}

	p := &Program{}
	for _, ln := range file.Lines {
		switch {
		case ln.Label != nil:
			p.Instrs = append(p.Instrs, Label{Name: ln.Label.Name})

		case ln.Ret != nil:
			p.Instrs = append(p.Instrs, Return{Src: ln.Ret.Src.val()})

		case ln.Goto != nil:
			p.Instrs = append(p.Instrs, Jump{Target: ln.Goto.Target})

		case ln.Cond != nil:
			if ln.Cond.Mnemonic == "ifz" {
				p.Instrs = append(p.Instrs, JumpIfZero{Src: ln.Cond.Src.val(), Target: ln.Cond.Target})
			} else {
				p.Instrs = append(p.Instrs, JumpIfNotZero{Src: ln.Cond.Src.val(), Target: ln.Cond.Target})
			}

		case ln.Assign != nil:
			a := ln.Assign
			dst := Var{Name: a.Dst}
			switch {
			case a.Unary != nil:
				op, ok := unaryOps[a.Unary.Op]
				if !ok {
					return nil, fmt.Errorf("unknown unary operator %q", a.Unary.Op)
				}
				p.Instrs = append(p.Instrs, Unary{Op: op, Src: a.Unary.Src.val(), Dst: dst})
			case a.Bin != nil:
				op, ok := binaryOps[a.Bin.Op]
				if !ok {
					return nil, fmt.Errorf("unknown operator %q", a.Bin.Op)
				}
				p.Instrs = append(p.Instrs, Binary{Op: op, Src1: a.Bin.Src1.val(), Src2: a.Bin.Src2.val(), Dst: dst})
			default:
				p.Instrs = append(p.Instrs, Copy{Src: a.Copy.val(), Dst: dst})
			}
		}
	}
	return p, nil
}
