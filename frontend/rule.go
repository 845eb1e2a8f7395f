package frontend

import (
	"fmt"
	"iter"

	"github.com/hashicorp/go-set/v3"

	"github.com/serin-lang/serin/frontend/ast"
	"github.com/serin-lang/serin/frontend/serr"
	"github.com/serin-lang/serin/internal/log"
	"github.com/serin-lang/serin/util"
)

var ruleLogger = log.DefaultLogger.With("section", "rule")

// Bindings maps macro variable names to the expressions a form bound them to.
type Bindings map[string]ast.Expr

// Rule is one macro definition: a signature of pseudokeywords and
// variables, plus the template forms matching the signature expand to.
type Rule struct {
	Signature ast.ArgPat
	Template  ast.Expr
	ast.Range // of the signature
}

// NewRule validates a macro definition. A signature with no pseudokeyword
// would shadow every call form, so it is rejected up front.
func NewRule(signature ast.ArgPat, template ast.Expr) (*Rule, error) {
	hasKeyword := false
	for range keywordsOf(signature) {
		hasKeyword = true
		break
	}
	if !hasKeyword {
		return nil, serr.New(serr.MissingKeywords{Positioner: signature})
	}
	return &Rule{
		Signature: signature,
		Template:  template,
		Range:     ast.RangeOf(signature),
	}, nil
}

// Keywords yields the pseudokeywords the signature matches literally.
func (r *Rule) Keywords() iter.Seq[string] {
	return keywordsOf(r.Signature)
}

func keywordsOf(argPat ast.ArgPat) iter.Seq[string] {
	return func(yield func(string) bool) {
		yieldKeywords(argPat, yield)
	}
}

func yieldKeywords(argPat ast.ArgPat, yield func(string) bool) bool {
	switch argPat := argPat.(type) {
	case *ast.KeywordPat:
		return yield(argPat.Name)
	case *ast.GroupPat:
		for _, sub := range argPat.Elems {
			if !yieldKeywords(sub, yield) {
				return false
			}
		}
	}
	return true
}

// Bind matches the rule's signature against a form, popping matched
// tokens in source order. It returns:
//
//	(nil, false, nil)       the signature is structurally inapplicable
//	(bindings, true, nil)   bound; any unmatched tail is left on the form
//	(nil, true, err)        the form matched the shape but is malformed
func (r *Rule) Bind(form *util.Stack[ast.Expr]) (Bindings, bool, error) {
	return bindArgPat(r.Signature, form)
}

func bindArgPat(argPat ast.ArgPat, form *util.Stack[ast.Expr]) (Bindings, bool, error) {
	bindings := Bindings{}
	switch argPat := argPat.(type) {
	case *ast.KeywordPat:
		next, ok := form.Pop()
		if !ok {
			return nil, false, nil
		}
		sym, isSymbol := next.(*ast.Symbol)
		if !isSymbol || sym.Name != argPat.Name {
			return nil, false, nil
		}
	case *ast.BinderPat:
		next, ok := form.Pop()
		if !ok {
			return nil, false, nil
		}
		bindings[argPat.Name] = next
	case *ast.GroupPat:
		for _, sub := range argPat.Elems {
			subBindings, matched, err := bindArgPat(sub, form)
			if !matched {
				return nil, false, nil
			}
			if err != nil {
				return nil, true, err
			}
			for name, bound := range subBindings {
				if _, clash := bindings[name]; clash {
					return nil, true, serr.New(serr.ReboundBinder{Positioner: sub, Name: name})
				}
				bindings[name] = bound
			}
		}
	default:
		panic("unhandled argument pattern in bindArgPat")
	}
	return bindings, true, nil
}

// mangleTag distinguishes names introduced by successive expansions.
// The frontend is single-threaded, so a plain counter suffices.
var mangleTag uint64

func mangledName(name string) string {
	mangleTag++
	return fmt.Sprintf("#%s#%d", name, mangleTag)
}

// Expand substitutes bindings into a copy of the rule's template.
// Symbols the invocation did not bind are renamed to fresh, unparseable
// names, so variables the template introduces cannot capture variables at
// the expansion site. Repeated occurrences of one name share one fresh
// name within an expansion; the fresh symbol is recorded in bindings.
//
// Symbols in the keywords set are exempt from renaming: they are
// pseudokeywords of in-scope macros, and keeping them intact is what lets
// a template expand to a further macro invocation.
func (r *Rule) Expand(bindings Bindings, keywords *set.Set[string]) (ast.Expr, error) {
	ruleLogger.Debug("expanding macro template",
		"signature", ast.ArgPatString(r.Signature),
		"template", ast.Slog(r.Template),
	)
	ex := &expansion{bindings: bindings, keywords: keywords}
	return ex.expr(r.Template)
}

type expansion struct {
	bindings Bindings
	keywords *set.Set[string]
}

func (ex *expansion) expr(template ast.Expr) (ast.Expr, error) {
	switch template := template.(type) {
	case *ast.Symbol:
		return ex.resolveSymbol(template), nil
	case *ast.Data:
		copied := *template
		return &copied, nil
	case *ast.Block:
		exprs, err := ex.exprs(template.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Exprs: exprs, Range: template.Range}, nil
	case *ast.Form:
		exprs, err := ex.exprs(template.Exprs)
		if err != nil {
			return nil, err
		}
		return &ast.Form{Exprs: exprs, Range: template.Range}, nil
	case *ast.Composition:
		argument, err := ex.expr(template.Argument)
		if err != nil {
			return nil, err
		}
		function, err := ex.expr(template.Function)
		if err != nil {
			return nil, err
		}
		return &ast.Composition{Argument: argument, Function: function, Range: template.Range}, nil
	case *ast.PatternExpr:
		pattern, err := ex.pattern(template.Pattern)
		if err != nil {
			return nil, err
		}
		return &ast.PatternExpr{Pattern: pattern, Range: template.Range}, nil
	case *ast.ArgPatExpr:
		return nil, serr.New(serr.UnexpectedArgPattern{Positioner: template})
	case *ast.Macro:
		// nested definitions keep their signature; only the body is
		// subject to substitution
		body, err := ex.expr(template.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Macro{Signature: ast.CopyArgPat(template.Signature), Body: body, Range: template.Range}, nil
	case *ast.Assign:
		pattern, err := ex.pattern(template.Pattern)
		if err != nil {
			return nil, err
		}
		value, err := ex.expr(template.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Pattern: pattern, Value: value, Range: template.Range}, nil
	case *ast.Lambda:
		pattern, err := ex.pattern(template.Pattern)
		if err != nil {
			return nil, err
		}
		body, err := ex.expr(template.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Pattern: pattern, Body: body, Range: template.Range}, nil
	case *ast.Print:
		value, err := ex.expr(template.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Print{Value: value, Range: template.Range}, nil
	case *ast.Label:
		value, err := ex.expr(template.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Label{Name: template.Name, Value: value, Range: template.Range}, nil
	default:
		panic("unhandled expression in expandExpr")
	}
}

func (ex *expansion) exprs(templates []ast.Expr) ([]ast.Expr, error) {
	expanded := make([]ast.Expr, len(templates))
	for i, template := range templates {
		var err error
		expanded[i], err = ex.expr(template)
		if err != nil {
			return nil, err
		}
	}
	return expanded, nil
}

func (ex *expansion) resolveSymbol(sym *ast.Symbol) ast.Expr {
	if bound, ok := ex.bindings[sym.Name]; ok {
		return ast.CopyExpr(bound)
	}
	if ex.keywords.Contains(sym.Name) {
		copied := *sym
		return &copied
	}
	fresh := &ast.Symbol{Name: mangledName(sym.Name), Range: sym.Range}
	ex.bindings[sym.Name] = fresh
	return fresh
}

func (ex *expansion) pattern(pattern ast.Pattern) (ast.Pattern, error) {
	switch pattern := pattern.(type) {
	case *ast.BindPattern:
		resolved := ex.resolveSymbol(&ast.Symbol{Name: pattern.Name, Range: pattern.Range})
		sym, isSymbol := resolved.(*ast.Symbol)
		if !isSymbol {
			return nil, serr.New(serr.MacroPatternArg{
				Positioner: pattern,
				Name:       pattern.Name,
				Described:  resolved.Describe(),
			})
		}
		return &ast.BindPattern{Name: sym.Name, Range: pattern.Range}, nil
	case *ast.LiteralPattern:
		copied := *pattern
		return &copied, nil
	case *ast.LabelPattern:
		sub, err := ex.pattern(pattern.Pattern)
		if err != nil {
			return nil, err
		}
		return &ast.LabelPattern{Name: pattern.Name, Pattern: sub, Range: pattern.Range}, nil
	case *ast.ChainPattern:
		subs := make([]ast.Pattern, len(pattern.Patterns))
		for i, sub := range pattern.Patterns {
			var err error
			subs[i], err = ex.pattern(sub)
			if err != nil {
				return nil, err
			}
		}
		return &ast.ChainPattern{Patterns: subs, Range: pattern.Range}, nil
	default:
		panic("unhandled pattern in expandPattern")
	}
}
