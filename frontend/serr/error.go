// Package serr holds the structured syntax errors the frontend surfaces.
// Every failure of the desugaring pass is a SyntaxError: a message, an
// error code, and the source range to blame.
package serr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/serin-lang/serin/frontend/ast"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type Code int

const (
	None Code = iota
	UnexpectedPatternCode
	UnexpectedArgPatternCode
	AmbiguousFormCode
	ReservedKeywordCode
	MissingKeywordsCode
	ReboundBinderCode
	UnliftablePatternCode
	InvalidCallTargetCode
	MacroDepthCode
	MacroPatternArgCode
)

type SyntaxError interface {
	error
	Code() Code
	ast.Positioner

	withStack([]byte) SyntaxError
	getStack() []byte
}

func FormatWithCode(e SyntaxError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// New attaches the construction-time stack to err, for debug printing.
func New[E SyntaxError](err E) SyntaxError {
	return err.withStack(debug.Stack())
}

// FromError reports whether err (or anything it wraps) is a SyntaxError.
func FromError(err error) (SyntaxError, bool) {
	for err != nil {
		if syntaxErr, ok := err.(SyntaxError); ok {
			return syntaxErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
