package ast

import (
	"go/token"
	"hash/fnv"
)

// Literal is a semi-opaque literal value. The desugarer passes literals
// through unchanged, so only their syntax and kind are kept.
type Literal struct {
	// Syntax is a string representation of the literal value.
	// The syntax will be printed when the literal is printed.
	Syntax string

	// Kind indicates what literal this is originally
	//
	// Should be one of
	// token.INT, token.FLOAT, token.IMAG, token.CHAR, or token.STRING
	Kind token.Token
}

func IntLit(syntax string) Literal {
	return Literal{Syntax: syntax, Kind: token.INT}
}

func StringLit(syntax string) Literal {
	return Literal{Syntax: syntax, Kind: token.STRING}
}

func (l Literal) String() string { return l.Syntax }

// Hash returns a hash value for the Literal, based on its structural characteristics
func (l Literal) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(l.Syntax))
	_, _ = h.Write([]byte(l.Kind.String()))
	return h.Sum64()
}
