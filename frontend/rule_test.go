package frontend

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/serin-lang/serin/frontend/ast"
	"github.com/serin-lang/serin/frontend/serr"
	"github.com/serin-lang/serin/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workingQueue(form ...ast.Expr) *util.Stack[ast.Expr] {
	working := &util.Stack[ast.Expr]{}
	for elem := range util.Reverse(form) {
		working.Push(elem)
	}
	return working
}

func noKeywords() *set.Set[string] { return set.New[string](0) }

func TestRuleRequiresKeyword(t *testing.T) {
	_, err := NewRule(group(1, 4, binder("x", 1), binder("y", 3)), sym("x", 8))
	require.Error(t, err)
	syntaxErr, isSyntax := serr.FromError(err)
	require.True(t, isSyntax)
	assert.Equal(t, serr.MissingKeywordsCode, syntaxErr.Code())
}

func TestRuleKeywords(t *testing.T) {
	rule, err := NewRule(
		group(1, 19,
			kw("if", 1),
			binder("c", 4),
			kw("then", 6),
			binder("a", 11),
			kw("else", 13),
			binder("b", 18),
		),
		sym("a", 23),
	)
	require.NoError(t, err)

	var keywords []string
	for keyword := range rule.Keywords() {
		keywords = append(keywords, keyword)
	}
	assert.Equal(t, []string{"if", "then", "else"}, keywords)
}

func TestBindPopsInSourceOrder(t *testing.T) {
	rule, err := NewRule(group(1, 6, kw("let", 1), binder("x", 5)), sym("x", 10))
	require.NoError(t, err)

	working := workingQueue(sym("let", 20), sym("v", 24), sym("rest", 26))
	bindings, matched, bindErr := rule.Bind(working)
	require.NoError(t, bindErr)
	require.True(t, matched)

	require.Contains(t, bindings, "x")
	assert.Equal(t, "v", bindings["x"].(*ast.Symbol).Name)
	assert.Equal(t, 1, working.Len(), "unmatched tail stays on the queue")
	tail, _ := working.Pop()
	assert.Equal(t, "rest", tail.(*ast.Symbol).Name)
}

func TestBindStructuralMismatch(t *testing.T) {
	rule, err := NewRule(group(1, 6, kw("let", 1), binder("x", 5)), sym("x", 10))
	require.NoError(t, err)

	t.Run("wrong keyword", func(t *testing.T) {
		_, matched, bindErr := rule.Bind(workingQueue(sym("for", 20), sym("v", 24)))
		assert.NoError(t, bindErr)
		assert.False(t, matched)
	})
	t.Run("keyword position holds a non-symbol", func(t *testing.T) {
		data := &ast.Data{Lit: ast.IntLit("1"), Range: rangeAt(20, 21)}
		_, matched, bindErr := rule.Bind(workingQueue(data, sym("v", 24)))
		assert.NoError(t, bindErr)
		assert.False(t, matched)
	})
	t.Run("form too short", func(t *testing.T) {
		_, matched, bindErr := rule.Bind(workingQueue(sym("let", 20)))
		assert.NoError(t, bindErr)
		assert.False(t, matched)
	})
}

func TestBindReboundBinder(t *testing.T) {
	rule, err := NewRule(
		group(1, 10, kw("pair", 1), binder("x", 6), binder("x", 8)),
		sym("x", 14),
	)
	require.NoError(t, err)

	_, matched, bindErr := rule.Bind(workingQueue(sym("pair", 20), sym("a", 25), sym("b", 27)))
	require.True(t, matched)
	require.Error(t, bindErr)
	syntaxErr, isSyntax := serr.FromError(bindErr)
	require.True(t, isSyntax)
	assert.Equal(t, serr.ReboundBinderCode, syntaxErr.Code())
	assert.Contains(t, syntaxErr.Error(), "'x'")
}

func TestExpandSubstitutesBindings(t *testing.T) {
	rule, err := NewRule(
		group(1, 8, kw("twice", 1), binder("x", 7)),
		&ast.Form{Exprs: []ast.Expr{sym("x", 11), sym("x", 13)}, Range: rangeAt(11, 14)},
	)
	require.NoError(t, err)

	bound := sym("a", 30)
	expanded, err := rule.Expand(Bindings{"x": bound}, noKeywords())
	require.NoError(t, err)

	form := expanded.(*ast.Form)
	require.Len(t, form.Exprs, 2)
	fst := form.Exprs[0].(*ast.Symbol)
	snd := form.Exprs[1].(*ast.Symbol)
	assert.Equal(t, "a", fst.Name)
	assert.Equal(t, "a", snd.Name)
	assert.NotSame(t, fst, snd, "each occurrence is a fresh copy")
	assert.NotSame(t, bound, fst, "the binding itself is not reused")
}

func TestExpandManglesUnboundSymbols(t *testing.T) {
	// `syntax 'fst p = { tmp = p; tmp }`: tmp is the template's own
	// variable and must not capture a tmp at the expansion site
	rule, err := NewRule(
		group(1, 6, kw("fst", 1), binder("p", 5)),
		&ast.Block{
			Exprs: []ast.Expr{
				&ast.Assign{Pattern: bindPat("tmp", 10), Value: sym("p", 16), Range: rangeAt(10, 17)},
				sym("tmp", 19),
			},
			Range: rangeAt(10, 23),
		},
	)
	require.NoError(t, err)

	expanded, err := rule.Expand(Bindings{"p": sym("v", 30)}, noKeywords())
	require.NoError(t, err)

	block := expanded.(*ast.Block)
	require.Len(t, block.Exprs, 2)
	assigned := block.Exprs[0].(*ast.Assign).Pattern.(*ast.BindPattern)
	referenced := block.Exprs[1].(*ast.Symbol)

	assert.NotEqual(t, "tmp", assigned.Name)
	assert.True(t, strings.HasPrefix(assigned.Name, "#tmp#"), "mangled names are unparseable")
	assert.Equal(t, assigned.Name, referenced.Name, "occurrences share one fresh name")
}

func TestExpandFreshNamesPerExpansion(t *testing.T) {
	rule, err := NewRule(group(1, 4, kw("it", 1)), sym("hidden", 8))
	require.NoError(t, err)

	fst, err := rule.Expand(Bindings{}, noKeywords())
	require.NoError(t, err)
	snd, err := rule.Expand(Bindings{}, noKeywords())
	require.NoError(t, err)

	assert.NotEqual(t, fst.(*ast.Symbol).Name, snd.(*ast.Symbol).Name,
		"two expansions must not share introduced names")
}

func TestExpandKeepsInScopeKeywords(t *testing.T) {
	// the template invokes another macro by its pseudokeyword; the
	// keyword must survive expansion unmangled
	rule, err := NewRule(
		group(1, 7, kw("also", 1), binder("y", 6)),
		&ast.Form{Exprs: []ast.Expr{sym("twice", 10), sym("y", 16)}, Range: rangeAt(10, 17)},
	)
	require.NoError(t, err)

	keywords := set.From([]string{"also", "twice"})
	expanded, err := rule.Expand(Bindings{"y": sym("b", 30)}, keywords)
	require.NoError(t, err)

	form := expanded.(*ast.Form)
	assert.Equal(t, "twice", form.Exprs[0].(*ast.Symbol).Name)
	assert.Equal(t, "b", form.Exprs[1].(*ast.Symbol).Name)
}

func TestExpandPatternNeedsSymbolBinding(t *testing.T) {
	// the template assigns to the macro variable, so the invocation must
	// bind it to an identifier
	rule, err := NewRule(
		group(1, 7, kw("setq", 1), binder("x", 6)),
		&ast.Assign{Pattern: bindPat("x", 10), Value: &ast.Data{Lit: ast.IntLit("1"), Range: rangeAt(14, 15)}, Range: rangeAt(10, 15)},
	)
	require.NoError(t, err)

	t.Run("bound to a symbol", func(t *testing.T) {
		expanded, err := rule.Expand(Bindings{"x": sym("n", 30)}, noKeywords())
		require.NoError(t, err)
		assert.Equal(t, "n", expanded.(*ast.Assign).Pattern.(*ast.BindPattern).Name)
	})
	t.Run("bound to a literal", func(t *testing.T) {
		data := &ast.Data{Lit: ast.IntLit("2"), Range: rangeAt(30, 31)}
		_, err := rule.Expand(Bindings{"x": data}, noKeywords())
		require.Error(t, err)
		syntaxErr, isSyntax := serr.FromError(err)
		require.True(t, isSyntax)
		assert.Equal(t, serr.MacroPatternArgCode, syntaxErr.Code())
	})
}
