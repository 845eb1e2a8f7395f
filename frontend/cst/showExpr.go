package cst

import (
	"strings"
)

// ExprString renders a desugared expression. Calls print fully
// parenthesized so associativity is visible: `(((a b) c) d)`.
func ExprString(expr Expr) string {
	ctx := &showContext{Builder: &strings.Builder{}}
	ctx.showExprWalker(expr)
	return ctx.String()
}

type showContext struct {
	*strings.Builder
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
		if len(expr.Exprs) == 0 {
			ctx.WriteString("{}")
			return
		}
		ctx.WriteString("{ ")
		for i, sub := range expr.Exprs {
			if i > 0 {
				ctx.WriteString("; ")
			}
			ctx.showExprWalker(sub)
		}
		ctx.WriteString(" }")
	case *Call:
		ctx.WriteString("(")
		ctx.showExprWalker(expr.Func)
		ctx.WriteString(" ")
		ctx.showExprWalker(expr.Arg)
		ctx.WriteString(")")
	case *Lambda:
		ctx.WriteString("(")
		ctx.showPattern(expr.Param)
		ctx.WriteString(" -> ")
		ctx.showExprWalker(expr.Body)
		ctx.WriteString(")")
	case *Assign:
		ctx.showPattern(expr.Target)
		ctx.WriteString(" = ")
		ctx.showExprWalker(expr.Value)
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
	case *SymbolPattern:
		ctx.WriteString(pattern.Name)
	case *LiteralPattern:
		ctx.WriteString(pattern.Lit.Syntax)
	case *LabelPattern:
		ctx.WriteString(":" + pattern.Name + " ")
		ctx.showPattern(pattern.Pattern)
	default:
		ctx.WriteString(pattern.Describe())
	}
}
