package cst

import (
	"go/token"
	"testing"

	"github.com/serin-lang/serin/frontend/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeAt(start, end int) ast.Range {
	return ast.Range{PosStart: token.Pos(start), PosEnd: token.Pos(end)}
}

func TestPatternFromAST(t *testing.T) {
	t.Run("binding", func(t *testing.T) {
		pattern, err := PatternFromAST(&ast.BindPattern{Name: "x", Range: rangeAt(1, 2)})
		require.NoError(t, err)
		symbol := pattern.(*SymbolPattern)
		assert.Equal(t, "x", symbol.Name)
		assert.Equal(t, rangeAt(1, 2), symbol.Range)
	})

	t.Run("literal", func(t *testing.T) {
		pattern, err := PatternFromAST(&ast.LiteralPattern{Lit: ast.IntLit("0"), Range: rangeAt(1, 2)})
		require.NoError(t, err)
		assert.Equal(t, ast.IntLit("0"), pattern.(*LiteralPattern).Lit)
	})

	t.Run("nested label", func(t *testing.T) {
		pattern, err := PatternFromAST(&ast.LabelPattern{
			Name: "Some",
			Pattern: &ast.LabelPattern{
				Name:    "Pair",
				Pattern: &ast.BindPattern{Name: "p", Range: rangeAt(12, 13)},
				Range:   rangeAt(6, 13),
			},
			Range: rangeAt(1, 13),
		})
		require.NoError(t, err)

		outer := pattern.(*LabelPattern)
		assert.Equal(t, "Some", outer.Name)
		inner := outer.Pattern.(*LabelPattern)
		assert.Equal(t, "Pair", inner.Name)
		assert.Equal(t, "p", inner.Pattern.(*SymbolPattern).Name)
	})

	t.Run("chained patterns are refused", func(t *testing.T) {
		_, err := PatternFromAST(&ast.ChainPattern{
			Patterns: []ast.Pattern{
				&ast.BindPattern{Name: "x", Range: rangeAt(1, 2)},
				&ast.BindPattern{Name: "y", Range: rangeAt(3, 4)},
			},
			Range: rangeAt(1, 4),
		})
		require.Error(t, err)
		assert.ErrorContains(t, err, "chained pattern")
	})

	t.Run("chain under a label is refused too", func(t *testing.T) {
		_, err := PatternFromAST(&ast.LabelPattern{
			Name: "Pair",
			Pattern: &ast.ChainPattern{
				Patterns: []ast.Pattern{&ast.BindPattern{Name: "x", Range: rangeAt(6, 7)}},
				Range:    rangeAt(6, 7),
			},
			Range: rangeAt(1, 7),
		})
		require.Error(t, err)
	})
}
