package ast

import (
	"strings"
)

// ExprString renders an expression roughly the way it would be written.
// It is meant for logs and error messages, not for faithful formatting.
func ExprString(expr Expr) string {
	ctx := newShowContext()
	ctx.showExprWalker(expr)
	return ctx.String()
}

func ArgPatString(argPat ArgPat) string {
	ctx := newShowContext()
	ctx.showArgPat(argPat)
	return ctx.String()
}

type showContext struct {
	*strings.Builder
}

func newShowContext() *showContext {
	return &showContext{Builder: &strings.Builder{}}
}

func (ctx *showContext) showExprWalker(expr Expr) {
	if expr == nil {
		ctx.WriteString("nil")
		return
	}
	switch expr := expr.(type) {
	case *Symbol:
		ctx.WriteString(expr.Name)
	case *Data:
		ctx.WriteString(expr.Lit.Syntax)
	case *Block:
		ctx.WriteString("{ ")
		for i, sub := range expr.Exprs {
			if i > 0 {
				ctx.WriteString("; ")
			}
			ctx.showExprWalker(sub)
		}
		ctx.WriteString(" }")
	case *Form:
		ctx.WriteString("(")
		for i, sub := range expr.Exprs {
			if i > 0 {
				ctx.WriteString(" ")
			}
			ctx.showExprWalker(sub)
		}
		ctx.WriteString(")")
	case *Composition:
		ctx.showExprWalker(expr.Argument)
		ctx.WriteString(" |> ")
		ctx.showExprWalker(expr.Function)
	case *PatternExpr:
		ctx.showPattern(expr.Pattern)
	case *ArgPatExpr:
		ctx.showArgPat(expr.ArgPat)
	case *Macro:
		ctx.WriteString("syntax ")
		ctx.showArgPat(expr.Signature)
		ctx.WriteString(" = ")
		ctx.showExprWalker(expr.Body)
	case *Assign:
		ctx.showPattern(expr.Pattern)
		ctx.WriteString(" = ")
		ctx.showExprWalker(expr.Value)
	case *Lambda:
		ctx.showPattern(expr.Pattern)
		ctx.WriteString(" -> ")
		ctx.showExprWalker(expr.Body)
	case *Print:
		ctx.WriteString("print ")
		ctx.showExprWalker(expr.Value)
	case *Label:
		ctx.WriteString(":" + expr.Name + " ")
		ctx.showExprWalker(expr.Value)
	default:
		ctx.WriteString(expr.ExprName())
	}
}

func (ctx *showContext) showPattern(pattern Pattern) {
	switch pattern := pattern.(type) {
	case *BindPattern:
		ctx.WriteString(pattern.Name)
	case *LiteralPattern:
		ctx.WriteString(pattern.Lit.Syntax)
	case *LabelPattern:
		ctx.WriteString(":" + pattern.Name + " ")
		ctx.showPattern(pattern.Pattern)
	case *ChainPattern:
		for i, sub := range pattern.Patterns {
			if i > 0 {
				ctx.WriteString(" ")
			}
			ctx.showPattern(sub)
		}
	default:
		ctx.WriteString(pattern.Describe())
	}
}

func (ctx *showContext) showArgPat(argPat ArgPat) {
	switch argPat := argPat.(type) {
	case *KeywordPat:
		ctx.WriteString("'" + argPat.Name)
	case *BinderPat:
		ctx.WriteString(argPat.Name)
	case *GroupPat:
		for i, sub := range argPat.Elems {
			if i > 0 {
				ctx.WriteString(" ")
			}
			ctx.showArgPat(sub)
		}
	default:
		ctx.WriteString(argPat.Describe())
	}
}
