package frontend

import (
	"go/token"
	"testing"

	"github.com/serin-lang/serin/frontend/ast"
	"github.com/serin-lang/serin/frontend/cst"
	"github.com/serin-lang/serin/frontend/serr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeAt(start, end int) ast.Range {
	return ast.Range{PosStart: token.Pos(start), PosEnd: token.Pos(end)}
}

func sym(name string, start int) *ast.Symbol {
	return &ast.Symbol{Name: name, Range: rangeAt(start, start+1)}
}

func bindPat(name string, start int) *ast.BindPattern {
	return &ast.BindPattern{Name: name, Range: rangeAt(start, start+1)}
}

func kw(name string, start int) *ast.KeywordPat {
	return &ast.KeywordPat{Name: name, Range: rangeAt(start, start+1)}
}

func binder(name string, start int) *ast.BinderPat {
	return &ast.BinderPat{Name: name, Range: rangeAt(start, start+1)}
}

func group(start, end int, elems ...ast.ArgPat) *ast.GroupPat {
	return &ast.GroupPat{Elems: elems, Range: rangeAt(start, end)}
}

func desugarOrFail(t *testing.T, expr ast.Expr) cst.Expr {
	t.Helper()
	desugared, err := Desugar(expr)
	require.NoError(t, err)
	return desugared
}

func desugarExpectingCode(t *testing.T, expr ast.Expr, code serr.Code) serr.SyntaxError {
	t.Helper()
	_, err := Desugar(expr)
	require.Error(t, err)
	syntaxErr, isSyntax := serr.FromError(err)
	require.True(t, isSyntax, "expected a syntax error, got: %v", err)
	assert.Equal(t, code, syntaxErr.Code())
	return syntaxErr
}

func TestCallBuilding(t *testing.T) {
	form := &ast.Form{
		Exprs: []ast.Expr{sym("a", 1), sym("b", 3), sym("c", 5), sym("d", 7)},
		Range: rangeAt(1, 8),
	}

	desugared := desugarOrFail(t, form)
	assert.Equal(t, "(((a b) c) d)", cst.ExprString(desugared))

	outer := desugared.(*cst.Call)
	assert.Equal(t, rangeAt(1, 8), outer.Range, "outermost call keeps the form's span")

	middle := outer.Func.(*cst.Call)
	assert.Equal(t, rangeAt(1, 6), middle.Range, "intermediate spans the joined prefix")

	inner := middle.Func.(*cst.Call)
	assert.Equal(t, rangeAt(1, 4), inner.Range)
	assert.Equal(t, rangeAt(1, 2), inner.Func.(*cst.Symbol).Range)
}

func TestCompositionChain(t *testing.T) {
	// c |> b |> a, left-associated by the parser
	chain := &ast.Composition{
		Argument: &ast.Composition{
			Argument: sym("c", 1),
			Function: sym("b", 6),
			Range:    rangeAt(1, 7),
		},
		Function: sym("a", 11),
		Range:    rangeAt(1, 12),
	}

	desugared := desugarOrFail(t, chain)
	assert.Equal(t, "(a (b c))", cst.ExprString(desugared))
	assert.Equal(t, rangeAt(1, 12), ast.RangeOf(desugared))
}

func TestCompositionEquivalentToForm(t *testing.T) {
	composition := &ast.Composition{
		Argument: sym("x", 1),
		Function: sym("f", 6),
		Range:    rangeAt(1, 7),
	}
	form := &ast.Form{
		Exprs: []ast.Expr{sym("f", 6), sym("x", 1)},
		Range: rangeAt(1, 7),
	}

	fromComposition := desugarOrFail(t, composition)
	fromForm := desugarOrFail(t, form)
	assert.Equal(t, fromComposition.Hash(), fromForm.Hash())
}

func TestMultiArgLambdaCurries(t *testing.T) {
	lambda := &ast.Lambda{
		Pattern: &ast.ChainPattern{
			Patterns: []ast.Pattern{bindPat("x", 1), bindPat("y", 3), bindPat("z", 5)},
			Range:    rangeAt(1, 6),
		},
		Body:  sym("x", 10),
		Range: rangeAt(1, 11),
	}

	desugared := desugarOrFail(t, lambda)
	assert.Equal(t, "(x -> (y -> (z -> x)))", cst.ExprString(desugared))

	outer := desugared.(*cst.Lambda)
	assert.Equal(t, rangeAt(1, 11), outer.Range, "outermost lambda keeps the node's span")
	assert.Equal(t, "x", outer.Param.(*cst.SymbolPattern).Name)

	middle := outer.Body.(*cst.Lambda)
	assert.Equal(t, "y", middle.Param.(*cst.SymbolPattern).Name)
	inner := middle.Body.(*cst.Lambda)
	assert.Equal(t, "z", inner.Param.(*cst.SymbolPattern).Name)
	assert.Equal(t, rangeAt(5, 11), inner.Range, "synthetic lambda covers pattern and body")
	assert.IsType(t, &cst.Symbol{}, inner.Body)
}

func TestSingleArgLambda(t *testing.T) {
	lambda := &ast.Lambda{
		Pattern: bindPat("x", 1),
		Body:    sym("x", 6),
		Range:   rangeAt(1, 7),
	}

	desugared := desugarOrFail(t, lambda)
	assert.Equal(t, "(x -> x)", cst.ExprString(desugared))
	assert.Equal(t, rangeAt(1, 7), ast.RangeOf(desugared))
}

func TestAssignLowering(t *testing.T) {
	assign := &ast.Assign{
		Pattern: bindPat("n", 1),
		Value:   &ast.Data{Lit: ast.IntLit("1"), Range: rangeAt(5, 6)},
		Range:   rangeAt(1, 6),
	}

	desugared := desugarOrFail(t, assign)
	assert.Equal(t, "n = 1", cst.ExprString(desugared))
	assert.Equal(t, rangeAt(1, 6), ast.RangeOf(desugared))
}

func TestAssignRefusesChainedPattern(t *testing.T) {
	assign := &ast.Assign{
		Pattern: &ast.ChainPattern{
			Patterns: []ast.Pattern{bindPat("a", 1), bindPat("b", 3)},
			Range:    rangeAt(1, 4),
		},
		Value: sym("x", 7),
		Range: rangeAt(1, 8),
	}

	syntaxErr := desugarExpectingCode(t, assign, serr.UnliftablePatternCode)
	assert.Equal(t, token.Pos(1), syntaxErr.Pos(), "blamed on the pattern's span")
	assert.Equal(t, token.Pos(4), syntaxErr.End())
}

func TestLambdaPatternFailureBlamesWholePattern(t *testing.T) {
	// a chain nested inside a chain cannot be lowered; the error carries
	// the span of the whole original pattern
	pattern := &ast.ChainPattern{
		Patterns: []ast.Pattern{
			bindPat("a", 1),
			&ast.ChainPattern{
				Patterns: []ast.Pattern{bindPat("b", 3), bindPat("c", 5)},
				Range:    rangeAt(3, 6),
			},
		},
		Range: rangeAt(1, 6),
	}
	lambda := &ast.Lambda{Pattern: pattern, Body: sym("a", 10), Range: rangeAt(1, 11)}

	syntaxErr := desugarExpectingCode(t, lambda, serr.UnliftablePatternCode)
	assert.Equal(t, token.Pos(1), syntaxErr.Pos())
	assert.Equal(t, token.Pos(6), syntaxErr.End())
}

func TestMisplacedPatternNodes(t *testing.T) {
	t.Run("pattern in expression position", func(t *testing.T) {
		expr := &ast.PatternExpr{Pattern: bindPat("p", 1), Range: rangeAt(1, 2)}
		syntaxErr := desugarExpectingCode(t, expr, serr.UnexpectedPatternCode)
		assert.Equal(t, token.Pos(1), syntaxErr.Pos())
	})
	t.Run("signature in expression position", func(t *testing.T) {
		expr := &ast.ArgPatExpr{ArgPat: kw("k", 1), Range: rangeAt(1, 2)}
		desugarExpectingCode(t, expr, serr.UnexpectedArgPatternCode)
	})
}

func TestStructuralPassThrough(t *testing.T) {
	block := &ast.Block{
		Exprs: []ast.Expr{
			&ast.Print{Value: &ast.Data{Lit: ast.StringLit(`"hi"`), Range: rangeAt(7, 11)}, Range: rangeAt(1, 11)},
			&ast.Label{Name: "Just", Value: sym("v", 18), Range: rangeAt(13, 19)},
		},
		Range: rangeAt(1, 20),
	}

	desugared := desugarOrFail(t, block)
	assert.Equal(t, `{ print "hi"; :Just v }`, cst.ExprString(desugared))

	asBlock := desugared.(*cst.Block)
	require.Len(t, asBlock.Exprs, 2)
	assert.Equal(t, rangeAt(1, 11), ast.RangeOf(asBlock.Exprs[0]))
	assert.Equal(t, rangeAt(13, 19), ast.RangeOf(asBlock.Exprs[1]))
}

// twiceMacro is `syntax 'twice x = x x` rooted at start.
func twiceMacro(start int) *ast.Macro {
	return &ast.Macro{
		Signature: group(start, start+7,
			kw("twice", start),
			binder("x", start+6),
		),
		Body: &ast.Form{
			Exprs: []ast.Expr{sym("x", start+10), sym("x", start+12)},
			Range: rangeAt(start+10, start+13),
		},
		Range: rangeAt(start, start+13),
	}
}

func TestRuleRegistration(t *testing.T) {
	block := &ast.Block{
		Exprs: []ast.Expr{
			twiceMacro(1),
			&ast.Form{
				Exprs: []ast.Expr{sym("twice", 20), sym("a", 26)},
				Range: rangeAt(20, 27),
			},
		},
		Range: rangeAt(1, 28),
	}

	desugared := desugarOrFail(t, block)
	asBlock := desugared.(*cst.Block)
	require.Len(t, asBlock.Exprs, 2)

	definition := asBlock.Exprs[0].(*cst.Block)
	assert.Empty(t, definition.Exprs, "a definition lowers to an empty block")
	assert.Equal(t, rangeAt(1, 14), definition.Range)

	expansion := asBlock.Exprs[1].(*cst.Call)
	assert.Equal(t, "(a a)", cst.ExprString(expansion))
	assert.Equal(t, rangeAt(20, 27), expansion.Range, "expansion keeps the form's span")
}

func TestRuleNotYetInScope(t *testing.T) {
	// same block with the two elements swapped: the form desugars to a
	// plain call because the rule is not registered yet
	block := &ast.Block{
		Exprs: []ast.Expr{
			&ast.Form{
				Exprs: []ast.Expr{sym("twice", 1), sym("a", 7)},
				Range: rangeAt(1, 8),
			},
			twiceMacro(10),
		},
		Range: rangeAt(1, 24),
	}

	desugared := desugarOrFail(t, block)
	asBlock := desugared.(*cst.Block)
	require.Len(t, asBlock.Exprs, 2)
	assert.Equal(t, "(twice a)", cst.ExprString(asBlock.Exprs[0]))
}

func TestDefinitionValueIdempotence(t *testing.T) {
	// replacing an unused definition with an empty block yields the same
	// tree, up to spans
	withMacro := &ast.Block{
		Exprs: []ast.Expr{
			twiceMacro(1),
			&ast.Form{Exprs: []ast.Expr{sym("f", 20), sym("a", 22)}, Range: rangeAt(20, 23)},
		},
		Range: rangeAt(1, 24),
	}
	withEmptyBlock := &ast.Block{
		Exprs: []ast.Expr{
			&ast.Block{Range: rangeAt(1, 14)},
			&ast.Form{Exprs: []ast.Expr{sym("f", 20), sym("a", 22)}, Range: rangeAt(20, 23)},
		},
		Range: rangeAt(1, 24),
	}

	fst := desugarOrFail(t, withMacro)
	snd := desugarOrFail(t, withEmptyBlock)
	assert.Equal(t, fst.Hash(), snd.Hash())
}

func ifMacro(start int, binders ...string) *ast.Macro {
	pats := []ast.ArgPat{
		kw("if", start),
		binder(binders[0], start+3),
		kw("then", start+5),
		binder(binders[1], start+10),
		kw("else", start+12),
		binder(binders[2], start+17),
	}
	return &ast.Macro{
		Signature: group(start, start+18, pats...),
		Body:      sym(binders[1], start+22),
		Range:     rangeAt(start, start+23),
	}
}

func TestMacroAmbiguity(t *testing.T) {
	block := &ast.Block{
		Exprs: []ast.Expr{
			ifMacro(1, "a", "b", "c"),
			ifMacro(30, "p", "q", "r"),
			&ast.Form{
				Exprs: []ast.Expr{
					sym("if", 60), sym("x", 63),
					sym("then", 65), sym("y", 70),
					sym("else", 72), sym("z", 77),
				},
				Range: rangeAt(60, 78),
			},
		},
		Range: rangeAt(1, 79),
	}

	syntaxErr := desugarExpectingCode(t, block, serr.AmbiguousFormCode)
	ambiguous := syntaxErr.(serr.AmbiguousForm)
	assert.Len(t, ambiguous.RuleSpans, 2, "both matched rules are enumerated")
	assert.Contains(t, ambiguous.Error(), rangeAt(1, 19).String())
	assert.Contains(t, ambiguous.Error(), rangeAt(30, 48).String())
	assert.Equal(t, token.Pos(60), syntaxErr.Pos(), "blamed on the combined form span")
	assert.Equal(t, token.Pos(78), syntaxErr.End())
}

func TestSingleMatchExpands(t *testing.T) {
	block := &ast.Block{
		Exprs: []ast.Expr{
			ifMacro(1, "a", "b", "c"),
			&ast.Form{
				Exprs: []ast.Expr{
					sym("if", 60), sym("x", 63),
					sym("then", 65), sym("y", 70),
					sym("else", 72), sym("z", 77),
				},
				Range: rangeAt(60, 78),
			},
		},
		Range: rangeAt(1, 79),
	}

	desugared := desugarOrFail(t, block)
	asBlock := desugared.(*cst.Block)
	require.Len(t, asBlock.Exprs, 2)
	// the macro body is just its second binder
	assert.Equal(t, "y", cst.ExprString(asBlock.Exprs[1]))
	assert.Equal(t, rangeAt(60, 78), ast.RangeOf(asBlock.Exprs[1]))
}

func TestNullaryMacroViaBareSymbol(t *testing.T) {
	block := &ast.Block{
		Exprs: []ast.Expr{
			&ast.Macro{
				Signature: kw("unit", 1),
				Body:      &ast.Data{Lit: ast.IntLit("0"), Range: rangeAt(9, 10)},
				Range:     rangeAt(1, 10),
			},
			sym("unit", 12),
		},
		Range: rangeAt(1, 17),
	}

	desugared := desugarOrFail(t, block)
	asBlock := desugared.(*cst.Block)
	require.Len(t, asBlock.Exprs, 2)
	assert.Equal(t, "0", cst.ExprString(asBlock.Exprs[1]))
	assert.Equal(t, rangeAt(12, 13), ast.RangeOf(asBlock.Exprs[1]), "expansion keeps the symbol's span")
}

func TestReservedKeywordOutsideInvocation(t *testing.T) {
	block := &ast.Block{
		Exprs: []ast.Expr{
			ifMacro(1, "a", "b", "c"),
			&ast.Form{
				Exprs: []ast.Expr{sym("f", 60), sym("then", 62)},
				Range: rangeAt(60, 67),
			},
		},
		Range: rangeAt(1, 68),
	}

	syntaxErr := desugarExpectingCode(t, block, serr.ReservedKeywordCode)
	assert.Equal(t, token.Pos(62), syntaxErr.Pos(), "blamed on the misused keyword")
	assert.Contains(t, syntaxErr.Error(), "'then'")
}

func TestPartialMatchIsNotACandidate(t *testing.T) {
	// the rule matches a prefix of the form but not the whole of it, so
	// it is not a candidate; the leftover keyword then trips the
	// reserved-keyword check rather than silently becoming a call
	block := &ast.Block{
		Exprs: []ast.Expr{
			twiceMacro(1),
			&ast.Form{
				Exprs: []ast.Expr{sym("twice", 20), sym("a", 26), sym("b", 28)},
				Range: rangeAt(20, 29),
			},
		},
		Range: rangeAt(1, 30),
	}

	desugarExpectingCode(t, block, serr.ReservedKeywordCode)
}

func TestRecursiveExpansionIsBounded(t *testing.T) {
	// `syntax 'go x = (x x)` invoked as `go go` expands to itself forever
	block := &ast.Block{
		Exprs: []ast.Expr{
			&ast.Macro{
				Signature: group(1, 6, kw("go", 1), binder("x", 4)),
				Body: &ast.Form{
					Exprs: []ast.Expr{sym("x", 9), sym("x", 11)},
					Range: rangeAt(9, 12),
				},
				Range: rangeAt(1, 12),
			},
			&ast.Form{
				Exprs: []ast.Expr{sym("go", 14), sym("go", 17)},
				Range: rangeAt(14, 19),
			},
		},
		Range: rangeAt(1, 20),
	}

	desugarExpectingCode(t, block, serr.MacroDepthCode)
}

func TestMacroExpandingToMacroInvocation(t *testing.T) {
	// `also` expands to a `twice` invocation, which must expand in turn
	block := &ast.Block{
		Exprs: []ast.Expr{
			twiceMacro(1),
			&ast.Macro{
				Signature: group(20, 26, kw("also", 20), binder("y", 25)),
				Body: &ast.Form{
					Exprs: []ast.Expr{sym("twice", 29), sym("y", 35)},
					Range: rangeAt(29, 36),
				},
				Range: rangeAt(20, 36),
			},
			&ast.Form{
				Exprs: []ast.Expr{sym("also", 40), sym("b", 45)},
				Range: rangeAt(40, 46),
			},
		},
		Range: rangeAt(1, 47),
	}

	desugared := desugarOrFail(t, block)
	asBlock := desugared.(*cst.Block)
	require.Len(t, asBlock.Exprs, 3)
	assert.Equal(t, "(b b)", cst.ExprString(asBlock.Exprs[2]))
}

func TestLengthOneNonSymbolForm(t *testing.T) {
	form := &ast.Form{
		Exprs: []ast.Expr{&ast.Data{Lit: ast.IntLit("1"), Range: rangeAt(1, 2)}},
		Range: rangeAt(1, 2),
	}

	syntaxErr := desugarExpectingCode(t, form, serr.InvalidCallTargetCode)
	assert.Contains(t, syntaxErr.Error(), "literal")
}

func TestSignatureWithoutKeywordsRejected(t *testing.T) {
	macro := &ast.Macro{
		Signature: group(1, 4, binder("x", 1), binder("y", 3)),
		Body:      sym("x", 8),
		Range:     rangeAt(1, 9),
	}

	desugarExpectingCode(t, macro, serr.MissingKeywordsCode)
}

func TestNoFormSurvivesDesugaring(t *testing.T) {
	block := &ast.Block{
		Exprs: []ast.Expr{
			twiceMacro(1),
			&ast.Form{Exprs: []ast.Expr{sym("twice", 20), sym("a", 26)}, Range: rangeAt(20, 27)},
			&ast.Form{Exprs: []ast.Expr{sym("f", 30), sym("g", 32), sym("h", 34)}, Range: rangeAt(30, 35)},
		},
		Range: rangeAt(1, 36),
	}

	desugared := desugarOrFail(t, block)

	// the cst package has no Form variant, so it suffices to check every
	// node is one of the primitive constructs
	desugared.Transform(func(expr cst.Expr) cst.Expr {
		switch expr.(type) {
		case *cst.Symbol, *cst.Data, *cst.Block, *cst.Call, *cst.Lambda, *cst.Assign, *cst.Print, *cst.Label:
		default:
			t.Errorf("unexpected node %T in desugared tree", expr)
		}
		return expr
	})
}
