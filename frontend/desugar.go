package frontend

import (
	"iter"

	"github.com/hashicorp/go-set/v3"
	"github.com/serin-lang/serin/frontend/ast"
	"github.com/serin-lang/serin/frontend/cst"
	"github.com/serin-lang/serin/frontend/serr"
	"github.com/serin-lang/serin/internal/log"
	"github.com/serin-lang/serin/util"
)

var logger = log.DefaultLogger.With("section", "desugar")

// maxExpansionDepth bounds recursive macro re-expansion, so a macro that
// expands to an invocation of itself fails instead of looping forever.
const maxExpansionDepth = 512

// Transformer desugars the loose tree into the tight one: it expands
// user-defined macros and lowers surface forms (multi-argument lambdas,
// composition, juxtaposition) into their canonical binary shapes.
//
// Its only state is the ordered list of in-scope macro rules, which grows
// as definitions are encountered during the walk. A rule defined at
// position i of a block is in scope for every later position and
// everything nested within them.
type Transformer struct {
	rules []*Rule
	depth int
}

// Walk desugars one expression. The result carries the input's span;
// failures are serr.SyntaxError values, and the first one aborts the walk.
func (t *Transformer) Walk(expr ast.Expr) (cst.Expr, error) {
	switch expr := expr.(type) {
	case *ast.Symbol:
		// a bare identifier goes through the form reducer as a
		// one-element form, so a single-pseudokeyword macro can fire on it
		return t.form([]ast.Expr{expr}, expr.Range)
	case *ast.Data:
		return &cst.Data{Lit: expr.Lit, Range: expr.Range}, nil
	case *ast.Block:
		return t.block(expr)
	case *ast.Form:
		return t.form(expr.Exprs, expr.Range)
	case *ast.Composition:
		return t.composition(expr)
	case *ast.PatternExpr:
		return nil, serr.New(serr.UnexpectedPattern{Positioner: expr})
	case *ast.ArgPatExpr:
		return nil, serr.New(serr.UnexpectedArgPattern{Positioner: expr})
	case *ast.Macro:
		return t.macro(expr)
	case *ast.Assign:
		return t.assign(expr)
	case *ast.Lambda:
		lowered, err := t.lambda(expr.Pattern, expr.Body)
		if err != nil {
			return nil, err
		}
		return cst.WithRange(lowered, expr.Range), nil
	case *ast.Print:
		value, err := t.Walk(expr.Value)
		if err != nil {
			return nil, err
		}
		return &cst.Print{Value: value, Range: expr.Range}, nil
	case *ast.Label:
		value, err := t.Walk(expr.Value)
		if err != nil {
			return nil, err
		}
		return &cst.Label{Name: expr.Name, Value: value, Range: expr.Range}, nil
	default:
		panic("unhandled expression in Walk")
	}
}

// form decides whether a flat juxtaposition is a macro invocation or a
// function call. Exactly one rule fully matching the form expands it;
// none makes it a call; several is an ambiguity error.
func (t *Transformer) form(form []ast.Expr, span ast.Range) (cst.Expr, error) {
	// pseudokeywords of every in-scope rule: they survive expansion
	// unmangled, and they may not appear as plain values in a form no
	// macro matched
	keywords := t.keywordsInScope()

	var matches []util.Pair[*Rule, Bindings]
	for _, rule := range t.rules {
		working := &util.Stack[ast.Expr]{}
		for elem := range util.Reverse(form) {
			working.Push(elem)
		}
		bindings, matched, err := rule.Bind(working)
		if !matched {
			continue
		}
		if err != nil {
			return nil, err
		}
		// a candidate must consume the whole form, not just a prefix
		if working.Len() == 0 {
			matches = append(matches, util.NewPair(rule, bindings))
		}
	}

	if len(matches) == 0 {
		if err := checkReservedKeywords(form, keywords); err != nil {
			return nil, err
		}
		return t.call(form, span)
	}
	if len(matches) > 1 {
		ruleSpans := make([]string, len(matches))
		for i, match := range matches {
			ruleSpans[i] = match.Fst.Range.String()
		}
		return nil, serr.NewAmbiguousForm(ast.RangeJoin(form), ruleSpans)
	}

	rule, bindings := matches[0].Fst, matches[0].Snd
	if t.depth >= maxExpansionDepth {
		return nil, serr.New(serr.MacroDepth{Positioner: span, Depth: maxExpansionDepth})
	}
	expanded, err := rule.Expand(bindings, keywords)
	if err != nil {
		return nil, err
	}
	logger.Debug("expanded macro invocation",
		"at", span.String(),
		"expansion", ast.Slog(expanded),
	)

	// the expansion may itself contain macro invocations, so it goes
	// through the walker again
	t.depth++
	walked, err := t.Walk(expanded)
	t.depth--
	if err != nil {
		return nil, err
	}
	return cst.WithRange(walked, span), nil
}

func (t *Transformer) keywordsInScope() *set.Set[string] {
	seqs := make([]iter.Seq[string], len(t.rules))
	for i, rule := range t.rules {
		seqs[i] = rule.Keywords()
	}
	return util.SetFromSeq(util.ConcatIter(seqs...), len(t.rules))
}

// checkReservedKeywords rejects a form that uses an in-scope pseudokeyword
// as a plain value. Such a form is almost always a broken macro
// invocation, and failing here beats a confusing unbound-variable error
// from a later pass.
func checkReservedKeywords(form []ast.Expr, keywords *set.Set[string]) error {
	if keywords.Empty() {
		return nil
	}
	for _, elem := range form {
		if sym, isSymbol := elem.(*ast.Symbol); isSymbol && keywords.Contains(sym.Name) {
			return serr.New(serr.ReservedKeyword{Positioner: sym, Keyword: sym.Name})
		}
	}
	return nil
}

// call left-folds a flat juxtaposition into nested binary applications:
// `a b c d` becomes `(((a b) c) d)`. Intermediate nodes span the join of
// the elements they cover.
func (t *Transformer) call(form []ast.Expr, span ast.Range) (cst.Expr, error) {
	switch len(form) {
	case 0:
		panic("a call must have at least one value")
	case 1:
		sym, isSymbol := form[0].(*ast.Symbol)
		if !isSymbol {
			// reachable when a macro expands to a one-element form
			return nil, serr.New(serr.InvalidCallTarget{
				Positioner: form[0],
				Described:  form[0].Describe(),
			})
		}
		return &cst.Symbol{Name: sym.Name, Range: sym.Range}, nil
	case 2:
		fun, err := t.Walk(form[0])
		if err != nil {
			return nil, err
		}
		arg, err := t.Walk(form[1])
		if err != nil {
			return nil, err
		}
		return cst.WithRange(cst.NewCall(fun, arg), span), nil
	default:
		prefix := form[:len(form)-1]
		fun, err := t.call(prefix, ast.RangeJoin(prefix))
		if err != nil {
			return nil, err
		}
		arg, err := t.Walk(form[len(form)-1])
		if err != nil {
			return nil, err
		}
		return cst.WithRange(cst.NewCall(fun, arg), span), nil
	}
}

// composition lowers `x |> f` into `f x`. The parser emits `c |> b |> a`
// left-associated, so the chain desugars to `a (b c)`.
func (t *Transformer) composition(expr *ast.Composition) (cst.Expr, error) {
	function, err := t.Walk(expr.Function)
	if err != nil {
		return nil, err
	}
	argument, err := t.Walk(expr.Argument)
	if err != nil {
		return nil, err
	}
	return &cst.Call{Func: function, Arg: argument, Range: expr.Range}, nil
}

func (t *Transformer) block(block *ast.Block) (cst.Expr, error) {
	exprs := make([]cst.Expr, len(block.Exprs))
	for i, sub := range block.Exprs {
		walked, err := t.Walk(sub)
		if err != nil {
			return nil, err
		}
		exprs[i] = walked
	}
	return &cst.Block{Exprs: exprs, Range: block.Range}, nil
}

func (t *Transformer) assign(expr *ast.Assign) (cst.Expr, error) {
	target, err := cst.PatternFromAST(expr.Pattern)
	if err != nil {
		return nil, serr.New(serr.UnliftablePattern{
			Positioner: expr.Pattern,
			Reason:     err.Error(),
		})
	}
	value, err := t.Walk(expr.Value)
	if err != nil {
		return nil, err
	}
	return &cst.Assign{Target: target, Value: value, Range: expr.Range}, nil
}

// lambda curries multi-argument sugar away: `x y z -> e` becomes
// `x -> (y -> (z -> e))`, folding right over the argument list.
func (t *Transformer) lambda(pattern ast.Pattern, body ast.Expr) (cst.Expr, error) {
	arguments := []ast.Pattern{pattern}
	if chain, isChain := pattern.(*ast.ChainPattern); isChain {
		arguments = chain.Patterns
	}
	expression, err := t.Walk(body)
	if err != nil {
		return nil, err
	}
	for argument := range util.Reverse(arguments) {
		param, err := cst.PatternFromAST(argument)
		if err != nil {
			// blamed on the whole original pattern, not the one argument
			return nil, serr.New(serr.UnliftablePattern{
				Positioner: pattern,
				Reason:     err.Error(),
			})
		}
		expression = &cst.Lambda{
			Param: param,
			Body:  expression,
			Range: ast.RangeCovering(param, expression),
		}
	}
	return expression, nil
}

// macro registers a rule definition. The definition's only observable
// value is its side effect on the rule list; an empty block keeps the
// tree uniform so sequencing works naturally.
func (t *Transformer) macro(expr *ast.Macro) (cst.Expr, error) {
	rule, err := NewRule(expr.Signature, expr.Body)
	if err != nil {
		return nil, err
	}
	t.rules = append(t.rules, rule)
	logger.Debug("registered macro rule",
		"signature", ast.ArgPatString(rule.Signature),
		"at", rule.Range.String(),
	)
	return &cst.Block{Range: expr.Range}, nil
}
