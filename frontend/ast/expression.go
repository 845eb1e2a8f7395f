package ast

import (
	"encoding/binary"
	"hash/fnv"
)

var (
	_ Expr = (*Symbol)(nil)
	_ Expr = (*Data)(nil)
	_ Expr = (*Block)(nil)
	_ Expr = (*Form)(nil)
	_ Expr = (*Composition)(nil)
	_ Expr = (*PatternExpr)(nil)
	_ Expr = (*ArgPatExpr)(nil)
	_ Expr = (*Macro)(nil)
	_ Expr = (*Assign)(nil)
	_ Expr = (*Lambda)(nil)
	_ Expr = (*Print)(nil)
	_ Expr = (*Label)(nil)
)

// Expr is the base for all expressions of the loose tree the parser emits.
//
// The following expressions are supported:
//
//	Symbol:       identifier
//	Data:         opaque literal value
//	Block:        ordered expression sequence
//	Form:         flat juxtaposition, call vs macro resolved while desugaring
//	Composition:  the left-associative '|>' operator
//	PatternExpr:  a pattern where an expression should be (always an error)
//	ArgPatExpr:   a macro signature where an expression should be (always an error)
//	Macro:        a macro rule definition
//	Assign:       binding form
//	Lambda:       anonymous function, possibly multi-argument
//	Print:        built-in
//	Label:        tagged value constructor
type Expr interface {
	Positioner
	// ExprName is the name of the syntax-type of the expression.
	ExprName() string
	// Describe is what to call this expression in error messages
	Describe() string

	// Transform should, in order:
	//  - copy the expression
	//  - call Transform(f) on any child expressions (thus copying them too)
	//  - call f on this Expr
	// In practice this means first copying the entire tree, applying f to each
	// component bottom-up, and returning the result
	Transform(f func(Expr) Expr) Expr
	Hash() uint64
}

// Symbol is an identifier
type Symbol struct {
	Name string
	Range
}

func (e *Symbol) ExprName() string { return "Symbol" }
func (e *Symbol) Describe() string { return "identifier" }

func (e *Symbol) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}

func (e *Symbol) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Symbol" + e.Name))
	return h.Sum64()
}

// Data is an opaque literal, passed through desugaring unchanged
type Data struct {
	Lit Literal
	Range
}

func (e *Data) ExprName() string { return "Data" }
func (e *Data) Describe() string { return e.Lit.Kind.String() + " literal" }

func (e *Data) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	return f(&copied)
}

func (e *Data) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Data")
	arr = binary.LittleEndian.AppendUint64(arr, e.Lit.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Block is an ordered sequence of expressions: `{ a; b; c }`
type Block struct {
	Exprs []Expr
	Range
}

func (e *Block) ExprName() string { return "Block" }
func (e *Block) Describe() string { return "block" }

func (e *Block) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Exprs = make([]Expr, len(e.Exprs))
	for i, sub := range e.Exprs {
		copied.Exprs[i] = sub.Transform(f)
	}
	return f(&copied)
}

func (e *Block) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Block")
	for _, sub := range e.Exprs {
		arr = binary.LittleEndian.AppendUint64(arr, sub.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Form is a flat juxtaposition `a b c d` whose meaning (function call or
// macro invocation) is unknown until macro resolution
type Form struct {
	Exprs []Expr
	Range
}

func (e *Form) ExprName() string { return "Form" }
func (e *Form) Describe() string { return "form" }

func (e *Form) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Exprs = make([]Expr, len(e.Exprs))
	for i, sub := range e.Exprs {
		copied.Exprs[i] = sub.Transform(f)
	}
	return f(&copied)
}

func (e *Form) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Form")
	for _, sub := range e.Exprs {
		arr = binary.LittleEndian.AppendUint64(arr, sub.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Composition is the `|>` operator: `x |> f` applies f to x.
// The parser emits it left-associative, so `c |> b |> a` arrives as
// Composition{Composition{c, b}, a}
type Composition struct {
	Argument Expr
	Function Expr
	Range
}

func (e *Composition) ExprName() string { return "Composition" }
func (e *Composition) Describe() string { return "composition" }

func (e *Composition) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Argument = e.Argument.Transform(f)
	copied.Function = e.Function.Transform(f)
	return f(&copied)
}

func (e *Composition) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Composition")
	arr = binary.LittleEndian.AppendUint64(arr, e.Argument.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Function.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// PatternExpr is a Pattern in expression position.
// The parser can emit it, but desugaring always rejects it
type PatternExpr struct {
	Pattern Pattern
	Range
}

func (e *PatternExpr) ExprName() string { return "PatternExpr" }
func (e *PatternExpr) Describe() string { return "pattern" }

func (e *PatternExpr) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Pattern = CopyPattern(e.Pattern)
	return f(&copied)
}

func (e *PatternExpr) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("PatternExpr")
	arr = binary.LittleEndian.AppendUint64(arr, e.Pattern.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// ArgPatExpr is a macro signature in expression position.
// Like PatternExpr, desugaring always rejects it
type ArgPatExpr struct {
	ArgPat ArgPat
	Range
}

func (e *ArgPatExpr) ExprName() string { return "ArgPatExpr" }
func (e *ArgPatExpr) Describe() string { return "argument pattern" }

func (e *ArgPatExpr) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.ArgPat = CopyArgPat(e.ArgPat)
	return f(&copied)
}

func (e *ArgPatExpr) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("ArgPatExpr")
	arr = binary.LittleEndian.AppendUint64(arr, e.ArgPat.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Macro defines a rewrite rule: a signature of pseudokeywords and binders,
// and the template forms matching the signature expand to
type Macro struct {
	Signature ArgPat
	Body      Expr
	Range
}

func (e *Macro) ExprName() string { return "Macro" }
func (e *Macro) Describe() string { return "macro definition" }

func (e *Macro) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Signature = CopyArgPat(e.Signature)
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *Macro) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Macro")
	arr = binary.LittleEndian.AppendUint64(arr, e.Signature.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Body.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Assign binds the value of an expression to a pattern
type Assign struct {
	Pattern Pattern
	Value   Expr
	Range
}

func (e *Assign) ExprName() string { return "Assign" }
func (e *Assign) Describe() string { return "assignment" }

func (e *Assign) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Pattern = CopyPattern(e.Pattern)
	copied.Value = e.Value.Transform(f)
	return f(&copied)
}

func (e *Assign) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Assign")
	arr = binary.LittleEndian.AppendUint64(arr, e.Pattern.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Value.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Lambda is an anonymous function. Pattern may be a ChainPattern, which is
// multi-argument sugar the desugarer curries away
type Lambda struct {
	Pattern Pattern
	Body    Expr
	Range
}

func (e *Lambda) ExprName() string { return "Lambda" }
func (e *Lambda) Describe() string { return "function" }

func (e *Lambda) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Pattern = CopyPattern(e.Pattern)
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *Lambda) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Lambda")
	arr = binary.LittleEndian.AppendUint64(arr, e.Pattern.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Body.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Print is the built-in print statement
type Print struct {
	Value Expr
	Range
}

func (e *Print) ExprName() string { return "Print" }
func (e *Print) Describe() string { return "print" }

func (e *Print) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Value = e.Value.Transform(f)
	return f(&copied)
}

func (e *Print) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Print")
	arr = binary.LittleEndian.AppendUint64(arr, e.Value.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Label is a tagged value constructor: `:Name value`
type Label struct {
	Name  string
	Value Expr
	Range
}

func (e *Label) ExprName() string { return "Label" }
func (e *Label) Describe() string { return "label" }

func (e *Label) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Value = e.Value.Transform(f)
	return f(&copied)
}

func (e *Label) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Label" + e.Name)
	arr = binary.LittleEndian.AppendUint64(arr, e.Value.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}
