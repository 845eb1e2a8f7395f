// Package cst holds the tight tree later compiler passes consume: only
// primitive constructs remain after desugaring. Calls are strictly binary
// and lambdas strictly unary.
package cst

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/serin-lang/serin/frontend/ast"
)

var (
	_ Expr = (*Symbol)(nil)
	_ Expr = (*Data)(nil)
	_ Expr = (*Block)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Lambda)(nil)
	_ Expr = (*Assign)(nil)
	_ Expr = (*Print)(nil)
	_ Expr = (*Label)(nil)
)

// Expr is the base for all desugared expressions.
type Expr interface {
	ast.Positioner
	ExprName() string
	Describe() string

	// Transform should copy the expression, call Transform(f) on any child
	// expressions, then call f on the copy. See ast.Expr.
	Transform(f func(Expr) Expr) Expr
	Hash() uint64
}

type Symbol struct {
	Name string
	ast.Range
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

type Data struct {
	Lit ast.Literal
	ast.Range
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

type Block struct {
	Exprs []Expr
	ast.Range
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

// Call is a strictly binary application. Multi-argument calls arrive as a
// left-associated nest of Calls.
type Call struct {
	Func Expr
	Arg  Expr
	ast.Range
}

func (e *Call) ExprName() string { return "Call" }
func (e *Call) Describe() string { return "function call" }

func (e *Call) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Func = e.Func.Transform(f)
	copied.Arg = e.Arg.Transform(f)
	return f(&copied)
}

func (e *Call) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Call")
	arr = binary.LittleEndian.AppendUint64(arr, e.Func.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Arg.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// NewCall builds a Call spanning both of its children.
func NewCall(fun, arg Expr) *Call {
	return &Call{
		Func:  fun,
		Arg:   arg,
		Range: ast.RangeCovering(fun, arg),
	}
}

// Lambda is a strictly unary function. Multi-argument lambdas arrive
// curried.
type Lambda struct {
	Param Pattern
	Body  Expr
	ast.Range
}

func (e *Lambda) ExprName() string { return "Lambda" }
func (e *Lambda) Describe() string { return "function" }

func (e *Lambda) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Body = e.Body.Transform(f)
	return f(&copied)
}

func (e *Lambda) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Lambda")
	arr = binary.LittleEndian.AppendUint64(arr, e.Param.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Body.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

type Assign struct {
	Target Pattern
	Value  Expr
	ast.Range
}

func (e *Assign) ExprName() string { return "Assign" }
func (e *Assign) Describe() string { return "assignment" }

func (e *Assign) Transform(f func(expr Expr) Expr) Expr {
	copied := *e
	copied.Value = e.Value.Transform(f)
	return f(&copied)
}

func (e *Assign) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Assign")
	arr = binary.LittleEndian.AppendUint64(arr, e.Target.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, e.Value.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

type Print struct {
	Value Expr
	ast.Range
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

type Label struct {
	Name  string
	Value Expr
	ast.Range
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

// WithRange returns a shallow copy of e spanning r. Used when a macro
// expansion replaces a form: the result keeps the form's span.
func WithRange(e Expr, r ast.Range) Expr {
	switch e := e.(type) {
	case *Symbol:
		copied := *e
		copied.Range = r
		return &copied
	case *Data:
		copied := *e
		copied.Range = r
		return &copied
	case *Block:
		copied := *e
		copied.Range = r
		return &copied
	case *Call:
		copied := *e
		copied.Range = r
		return &copied
	case *Lambda:
		copied := *e
		copied.Range = r
		return &copied
	case *Assign:
		copied := *e
		copied.Range = r
		return &copied
	case *Print:
		copied := *e
		copied.Range = r
		return &copied
	case *Label:
		copied := *e
		copied.Range = r
		return &copied
	default:
		panic("unhandled expression in WithRange")
	}
}
