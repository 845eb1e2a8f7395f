// Package frontend implements the desugaring phase of the serin compiler:
// user-defined macro expansion plus the lowering of surface sugar into the
// primitive constructs of the cst package.
package frontend

import (
	"github.com/serin-lang/serin/frontend/ast"
	"github.com/serin-lang/serin/frontend/cst"
)

// Desugar turns a loose tree into a tight one. On success the result
// contains no Form: every juxtaposition has been reduced to either a
// binary Call or the expansion of exactly one macro. Failures are
// serr.SyntaxError values; the first failure aborts the walk.
func Desugar(expr ast.Expr) (cst.Expr, error) {
	t := &Transformer{}
	return t.Walk(expr)
}
