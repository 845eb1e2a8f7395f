package serr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/serin-lang/serin/frontend/ast"
	"github.com/xtgo/set"
)

// UnexpectedPattern is a pattern in expression position.
type UnexpectedPattern struct {
	ast.Positioner
	stack []byte
}

func (e UnexpectedPattern) Error() string { return "unexpected pattern" }
func (e UnexpectedPattern) Code() Code    { return UnexpectedPatternCode }
func (e UnexpectedPattern) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e UnexpectedPattern) getStack() []byte { return e.stack }

// UnexpectedArgPattern is a macro signature in expression position.
type UnexpectedArgPattern struct {
	ast.Positioner
	stack []byte
}

func (e UnexpectedArgPattern) Error() string { return "unexpected argument pattern" }
func (e UnexpectedArgPattern) Code() Code    { return UnexpectedArgPatternCode }
func (e UnexpectedArgPattern) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e UnexpectedArgPattern) getStack() []byte { return e.stack }

// AmbiguousForm is a form that fully matched more than one macro.
type AmbiguousForm struct {
	ast.Positioner
	// RuleSpans are the rendered spans of every matched macro signature,
	// sorted and deduplicated.
	RuleSpans []string
	stack     []byte
}

// NewAmbiguousForm sorts and dedupes the matched-rule spans before
// wrapping them.
func NewAmbiguousForm(at ast.Positioner, ruleSpans []string) SyntaxError {
	sort.Strings(ruleSpans)
	n := set.Uniq(sort.StringSlice(ruleSpans))
	return New(AmbiguousForm{Positioner: at, RuleSpans: ruleSpans[:n]})
}

func (e AmbiguousForm) Error() string {
	sb := &strings.Builder{}
	sb.WriteString("this form matched multiple macros, defined at:\n")
	for _, span := range e.RuleSpans {
		fmt.Fprintf(sb, "  %s\n", span)
	}
	sb.WriteString("a form may only match one macro; " +
		"try using variable names different from the pseudokeywords in scope, " +
		"adjusting the definitions of locally-defined macros, " +
		"or grouping nested macros with '( ... )' or '{ ... }'")
	return sb.String()
}
func (e AmbiguousForm) Code() Code { return AmbiguousFormCode }
func (e AmbiguousForm) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e AmbiguousForm) getStack() []byte { return e.stack }

// ReservedKeyword is an in-scope pseudokeyword used as a plain value in a
// form no macro matched.
type ReservedKeyword struct {
	ast.Positioner
	Keyword string
	stack   []byte
}

func (e ReservedKeyword) Error() string {
	return fmt.Sprintf("'%s' is a pseudokeyword of an in-scope macro, but no macro matches this form; "+
		"rename the variable or complete the macro invocation", e.Keyword)
}
func (e ReservedKeyword) Code() Code { return ReservedKeywordCode }
func (e ReservedKeyword) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e ReservedKeyword) getStack() []byte { return e.stack }

// MissingKeywords is a macro signature with no pseudokeyword at all.
type MissingKeywords struct {
	ast.Positioner
	stack []byte
}

func (e MissingKeywords) Error() string {
	return "a macro signature must contain at least one pseudokeyword; " +
		"a signature of bare variables would shadow every function call"
}
func (e MissingKeywords) Code() Code { return MissingKeywordsCode }
func (e MissingKeywords) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e MissingKeywords) getStack() []byte { return e.stack }

// ReboundBinder is a macro variable declared twice in one signature.
type ReboundBinder struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e ReboundBinder) Error() string {
	return fmt.Sprintf("variable '%s' has already been declared in this macro signature", e.Name)
}
func (e ReboundBinder) Code() Code { return ReboundBinderCode }
func (e ReboundBinder) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e ReboundBinder) getStack() []byte { return e.stack }

// UnliftablePattern is an AST pattern the CST cannot represent.
type UnliftablePattern struct {
	ast.Positioner
	Reason string
	stack  []byte
}

func (e UnliftablePattern) Error() string { return e.Reason }
func (e UnliftablePattern) Code() Code    { return UnliftablePatternCode }
func (e UnliftablePattern) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e UnliftablePattern) getStack() []byte { return e.stack }

// InvalidCallTarget is a single-element form whose element is not an
// identifier, such as a macro expanding to `(1)`.
type InvalidCallTarget struct {
	ast.Positioner
	Described string
	stack     []byte
}

func (e InvalidCallTarget) Error() string {
	return fmt.Sprintf("expected an identifier or a complete call, found a bare %s", e.Described)
}
func (e InvalidCallTarget) Code() Code { return InvalidCallTargetCode }
func (e InvalidCallTarget) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e InvalidCallTarget) getStack() []byte { return e.stack }

// MacroDepth is a macro expansion that exceeded the recursion limit.
type MacroDepth struct {
	ast.Positioner
	Depth int
	stack []byte
}

func (e MacroDepth) Error() string {
	return fmt.Sprintf("macro expansion exceeded %d nested expansions; "+
		"a macro is likely expanding to an invocation of itself", e.Depth)
}
func (e MacroDepth) Code() Code { return MacroDepthCode }
func (e MacroDepth) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e MacroDepth) getStack() []byte { return e.stack }

// MacroPatternArg is a macro variable used as a binding pattern in the
// template but bound to something that is not an identifier.
type MacroPatternArg struct {
	ast.Positioner
	Name      string
	Described string
	stack     []byte
}

func (e MacroPatternArg) Error() string {
	return fmt.Sprintf("macro variable '%s' is used as a binding pattern, "+
		"so it must be bound to an identifier, not a %s", e.Name, e.Described)
}
func (e MacroPatternArg) Code() Code { return MacroPatternArgCode }
func (e MacroPatternArg) withStack(s []byte) SyntaxError {
	e.stack = s
	return e
}
func (e MacroPatternArg) getStack() []byte { return e.stack }
