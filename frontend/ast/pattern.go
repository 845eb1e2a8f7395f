package ast

import (
	"encoding/binary"
	"hash/fnv"
)

var (
	_ Pattern = (*BindPattern)(nil)
	_ Pattern = (*LiteralPattern)(nil)
	_ Pattern = (*LabelPattern)(nil)
	_ Pattern = (*ChainPattern)(nil)

	_ ArgPat = (*KeywordPat)(nil)
	_ ArgPat = (*BinderPat)(nil)
	_ ArgPat = (*GroupPat)(nil)
)

// Pattern is the left-hand side of assignments and lambdas.
//
//	BindPattern:     binds a name
//	LiteralPattern:  matches a literal value
//	LabelPattern:    destructures a tagged value
//	ChainPattern:    ordered pattern sequence (multi-argument lambda sugar)
type Pattern interface {
	Positioner
	Describe() string
	Hash() uint64
	patternNode()
}

type BindPattern struct {
	Name string
	Range
}

func (p *BindPattern) patternNode()     {}
func (p *BindPattern) Describe() string { return "binding pattern" }

func (p *BindPattern) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("BindPattern" + p.Name))
	return h.Sum64()
}

type LiteralPattern struct {
	Lit Literal
	Range
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
	Range
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

// ChainPattern only appears directly under a Lambda, where it stands for
// the argument list of a multi-argument function
type ChainPattern struct {
	Patterns []Pattern
	Range
}

func (p *ChainPattern) patternNode()     {}
func (p *ChainPattern) Describe() string { return "chained pattern" }

func (p *ChainPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ChainPattern")
	for _, sub := range p.Patterns {
		arr = binary.LittleEndian.AppendUint64(arr, sub.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ArgPat is a macro signature: the shape forms are matched against.
//
//	KeywordPat:  matches an identifier literally, binds nothing
//	BinderPat:   binds any one expression
//	GroupPat:    ordered sequence of argument patterns
type ArgPat interface {
	Positioner
	Describe() string
	Hash() uint64
	argPatNode()
}

type KeywordPat struct {
	Name string
	Range
}

func (p *KeywordPat) argPatNode()      {}
func (p *KeywordPat) Describe() string { return "pseudokeyword" }

func (p *KeywordPat) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("KeywordPat" + p.Name))
	return h.Sum64()
}

type BinderPat struct {
	Name string
	Range
}

func (p *BinderPat) argPatNode()      {}
func (p *BinderPat) Describe() string { return "macro variable" }

func (p *BinderPat) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("BinderPat" + p.Name))
	return h.Sum64()
}

type GroupPat struct {
	Elems []ArgPat
	Range
}

func (p *GroupPat) argPatNode()      {}
func (p *GroupPat) Describe() string { return "signature group" }

func (p *GroupPat) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("GroupPat")
	for _, sub := range p.Elems {
		arr = binary.LittleEndian.AppendUint64(arr, sub.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}
