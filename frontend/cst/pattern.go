package cst

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/serin-lang/serin/frontend/ast"
)

var (
	_ Pattern = (*SymbolPattern)(nil)
	_ Pattern = (*LiteralPattern)(nil)
	_ Pattern = (*LabelPattern)(nil)
)

// Pattern is the strict subset of ast.Pattern later passes can compile.
// There is no chained pattern: the desugarer curries those away before
// lowering.
type Pattern interface {
	ast.Positioner
	Describe() string
	Hash() uint64
	patternNode()
}

type SymbolPattern struct {
	Name string
	ast.Range
}

func (p *SymbolPattern) patternNode()     {}
func (p *SymbolPattern) Describe() string { return "binding pattern" }

func (p *SymbolPattern) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("SymbolPattern" + p.Name))
	return h.Sum64()
}

type LiteralPattern struct {
	Lit ast.Literal
	ast.Range
}

func (p *LiteralPattern) patternNode()     {}
func (p *LiteralPattern) Describe() string { return "literal pattern" }

func (p *LiteralPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("LiteralPattern")
	arr = binary.LittleEndian.AppendUint64(arr, p.Lit.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

type LabelPattern struct {
	Name    string
	Pattern Pattern
	ast.Range
}

func (p *LabelPattern) patternNode()     {}
func (p *LabelPattern) Describe() string { return "label pattern" }

func (p *LabelPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("LabelPattern" + p.Name)
	arr = binary.LittleEndian.AppendUint64(arr, p.Pattern.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// PatternFromAST lowers an AST pattern into a CST pattern. It refuses
// shapes the CST forbids with a descriptive error; the caller is expected
// to wrap that error with the span it wants to blame.
func PatternFromAST(pattern ast.Pattern) (Pattern, error) {
	switch pattern := pattern.(type) {
	case *ast.BindPattern:
		return &SymbolPattern{Name: pattern.Name, Range: pattern.Range}, nil
	case *ast.LiteralPattern:
		return &LiteralPattern{Lit: pattern.Lit, Range: pattern.Range}, nil
	case *ast.LabelPattern:
		sub, err := PatternFromAST(pattern.Pattern)
		if err != nil {
			return nil, err
		}
		return &LabelPattern{Name: pattern.Name, Pattern: sub, Range: pattern.Range}, nil
	case *ast.ChainPattern:
		return nil, fmt.Errorf("unexpected chained pattern")
	default:
		return nil, fmt.Errorf("unexpected %s", pattern.Describe())
	}
}
