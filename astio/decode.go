// Package astio reads serialized AST dumps, the machine format the CLI
// and the end-to-end fixtures feed to the desugarer. It is not the
// language parser: it decodes trees the parser (or a test) already built.
//
// A node is a mapping with exactly one variant key, plus an optional
// `at: [start, end]` source range:
//
//	sym: f                          identifier
//	data: 1                         literal (int, float, or string)
//	block: [node, ...]              expression sequence
//	form: [node, ...]               flat juxtaposition, nonempty
//	compose: {arg: node, fn: node}  the |> operator
//	macro: {sig: argpat, body: node}
//	assign: {pattern: pat, value: node}
//	lambda: {pattern: pat, body: node}
//	print: node
//	label: {name: X, value: node}
//	pattern: pat                    pattern in expression position
//	signature: argpat               signature in expression position
//
// Patterns: `bind: x`, `lit: 1`, `label: {name: X, pattern: pat}`,
// `chain: [pat, ...]`. Signatures: `kw: if`, `var: x`,
// `group: [argpat, ...]`.
//
// Nodes without `at` get synthetic positions in document order, nested so
// a parent's range covers its children's.
package astio

import (
	"fmt"
	"go/token"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/serin-lang/serin/frontend/ast"
	"github.com/serin-lang/serin/internal/log"
)

var logger = log.DefaultLogger.With("section", "astio")

// Decode reads one YAML AST dump into a loose tree.
func Decode(data []byte) (ast.Expr, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "could not parse AST dump")
	}
	d := &decoder{nextPos: 1}
	expr, err := d.expr(doc)
	if err != nil {
		return nil, err
	}
	logger.Debug("decoded AST dump", "expr", ast.Slog(expr))
	return expr, nil
}

type decoder struct {
	// nextPos is the next synthetic position for nodes without an
	// explicit range
	nextPos token.Pos
}

func (d *decoder) expr(doc any) (ast.Expr, error) {
	key, value, m, err := variantOf(doc)
	if err != nil {
		return nil, err
	}
	start := d.nextPos

	var expr ast.Expr
	switch key {
	case "sym":
		name, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("sym: expected a string, got %T", value)
		}
		expr = &ast.Symbol{Name: name, Range: d.leafRange()}
	case "data":
		lit, err := scalarLit(value)
		if err != nil {
			return nil, errors.Wrap(err, "data")
		}
		expr = &ast.Data{Lit: lit, Range: d.leafRange()}
	case "block", "form":
		items, ok := value.([]any)
		if !ok && value != nil {
			return nil, errors.Errorf("%s: expected a sequence, got %T", key, value)
		}
		exprs := make([]ast.Expr, len(items))
		for i, item := range items {
			exprs[i], err = d.expr(item)
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%d]", key, i)
			}
		}
		if key == "block" {
			expr = &ast.Block{Exprs: exprs, Range: d.spanFrom(start)}
		} else {
			// an empty block is a legal value, an empty form is not a
			// juxtaposition of anything
			if len(exprs) == 0 {
				return nil, errors.New("form: must have at least one element")
			}
			expr = &ast.Form{Exprs: exprs, Range: d.spanFrom(start)}
		}
	case "compose":
		fields, err := fieldsOf(value, "arg", "fn")
		if err != nil {
			return nil, errors.Wrap(err, "compose")
		}
		argument, err := d.expr(fields["arg"])
		if err != nil {
			return nil, errors.Wrap(err, "compose.arg")
		}
		function, err := d.expr(fields["fn"])
		if err != nil {
			return nil, errors.Wrap(err, "compose.fn")
		}
		expr = &ast.Composition{Argument: argument, Function: function, Range: d.spanFrom(start)}
	case "macro":
		fields, err := fieldsOf(value, "sig", "body")
		if err != nil {
			return nil, errors.Wrap(err, "macro")
		}
		signature, err := d.argPat(fields["sig"])
		if err != nil {
			return nil, errors.Wrap(err, "macro.sig")
		}
		body, err := d.expr(fields["body"])
		if err != nil {
			return nil, errors.Wrap(err, "macro.body")
		}
		expr = &ast.Macro{Signature: signature, Body: body, Range: d.spanFrom(start)}
	case "assign":
		fields, err := fieldsOf(value, "pattern", "value")
		if err != nil {
			return nil, errors.Wrap(err, "assign")
		}
		pattern, err := d.pattern(fields["pattern"])
		if err != nil {
			return nil, errors.Wrap(err, "assign.pattern")
		}
		assigned, err := d.expr(fields["value"])
		if err != nil {
			return nil, errors.Wrap(err, "assign.value")
		}
		expr = &ast.Assign{Pattern: pattern, Value: assigned, Range: d.spanFrom(start)}
	case "lambda":
		fields, err := fieldsOf(value, "pattern", "body")
		if err != nil {
			return nil, errors.Wrap(err, "lambda")
		}
		pattern, err := d.pattern(fields["pattern"])
		if err != nil {
			return nil, errors.Wrap(err, "lambda.pattern")
		}
		body, err := d.expr(fields["body"])
		if err != nil {
			return nil, errors.Wrap(err, "lambda.body")
		}
		expr = &ast.Lambda{Pattern: pattern, Body: body, Range: d.spanFrom(start)}
	case "print":
		printed, err := d.expr(value)
		if err != nil {
			return nil, errors.Wrap(err, "print")
		}
		expr = &ast.Print{Value: printed, Range: d.spanFrom(start)}
	case "label":
		fields, err := fieldsOf(value, "name", "value")
		if err != nil {
			return nil, errors.Wrap(err, "label")
		}
		name, ok := fields["name"].(string)
		if !ok {
			return nil, errors.Errorf("label.name: expected a string, got %T", fields["name"])
		}
		labelled, err := d.expr(fields["value"])
		if err != nil {
			return nil, errors.Wrap(err, "label.value")
		}
		expr = &ast.Label{Name: name, Value: labelled, Range: d.spanFrom(start)}
	case "pattern":
		pattern, err := d.pattern(value)
		if err != nil {
			return nil, errors.Wrap(err, "pattern")
		}
		expr = &ast.PatternExpr{Pattern: pattern, Range: d.spanFrom(start)}
	case "signature":
		argPat, err := d.argPat(value)
		if err != nil {
			return nil, errors.Wrap(err, "signature")
		}
		expr = &ast.ArgPatExpr{ArgPat: argPat, Range: d.spanFrom(start)}
	default:
		return nil, errors.Errorf("unknown AST node kind '%s'", key)
	}

	return withExplicitRange(expr, m)
}

func (d *decoder) pattern(doc any) (ast.Pattern, error) {
	key, value, m, err := variantOf(doc)
	if err != nil {
		return nil, err
	}
	start := d.nextPos

	var pattern ast.Pattern
	switch key {
	case "bind":
		name, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("bind: expected a string, got %T", value)
		}
		pattern = &ast.BindPattern{Name: name, Range: d.leafRange()}
	case "lit":
		lit, err := scalarLit(value)
		if err != nil {
			return nil, errors.Wrap(err, "lit")
		}
		pattern = &ast.LiteralPattern{Lit: lit, Range: d.leafRange()}
	case "label":
		fields, err := fieldsOf(value, "name", "pattern")
		if err != nil {
			return nil, errors.Wrap(err, "label")
		}
		name, ok := fields["name"].(string)
		if !ok {
			return nil, errors.Errorf("label.name: expected a string, got %T", fields["name"])
		}
		sub, err := d.pattern(fields["pattern"])
		if err != nil {
			return nil, errors.Wrap(err, "label.pattern")
		}
		pattern = &ast.LabelPattern{Name: name, Pattern: sub, Range: d.spanFrom(start)}
	case "chain":
		items, ok := value.([]any)
		if !ok {
			return nil, errors.Errorf("chain: expected a sequence, got %T", value)
		}
		patterns := make([]ast.Pattern, len(items))
		for i, item := range items {
			patterns[i], err = d.pattern(item)
			if err != nil {
				return nil, errors.Wrapf(err, "chain[%d]", i)
			}
		}
		pattern = &ast.ChainPattern{Patterns: patterns, Range: d.spanFrom(start)}
	default:
		return nil, errors.Errorf("unknown pattern kind '%s'", key)
	}

	return withExplicitPatternRange(pattern, m)
}

func (d *decoder) argPat(doc any) (ast.ArgPat, error) {
	key, value, m, err := variantOf(doc)
	if err != nil {
		return nil, err
	}
	start := d.nextPos

	var argPat ast.ArgPat
	switch key {
	case "kw":
		name, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("kw: expected a string, got %T", value)
		}
		argPat = &ast.KeywordPat{Name: name, Range: d.leafRange()}
	case "var":
		name, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("var: expected a string, got %T", value)
		}
		argPat = &ast.BinderPat{Name: name, Range: d.leafRange()}
	case "group":
		items, ok := value.([]any)
		if !ok {
			return nil, errors.Errorf("group: expected a sequence, got %T", value)
		}
		elems := make([]ast.ArgPat, len(items))
		for i, item := range items {
			elems[i], err = d.argPat(item)
			if err != nil {
				return nil, errors.Wrapf(err, "group[%d]", i)
			}
		}
		argPat = &ast.GroupPat{Elems: elems, Range: d.spanFrom(start)}
	default:
		return nil, errors.Errorf("unknown signature kind '%s'", key)
	}

	return withExplicitArgPatRange(argPat, m)
}

// leafRange allocates one synthetic position for a leaf node.
func (d *decoder) leafRange() ast.Range {
	r := ast.Range{PosStart: d.nextPos, PosEnd: d.nextPos + 1}
	d.nextPos++
	return r
}

// spanFrom closes a composite node's synthetic range over its children.
func (d *decoder) spanFrom(start token.Pos) ast.Range {
	if d.nextPos == start {
		// childless composite, still needs a nonempty range
		return d.leafRange()
	}
	return ast.Range{PosStart: start, PosEnd: d.nextPos}
}

// variantOf splits a node mapping into its single variant key and value.
func variantOf(doc any) (key string, value any, m map[string]any, err error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return "", nil, nil, errors.Errorf("expected a mapping node, got %T", doc)
	}
	for k, v := range m {
		if k == "at" {
			continue
		}
		if key != "" {
			return "", nil, nil, errors.Errorf("node has multiple variant keys: '%s' and '%s'", key, k)
		}
		key, value = k, v
	}
	if key == "" {
		return "", nil, nil, errors.New("node has no variant key")
	}
	return key, value, m, nil
}

func fieldsOf(value any, required ...string) (map[string]any, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, errors.Errorf("expected a mapping, got %T", value)
	}
	for _, field := range required {
		if _, present := fields[field]; !present {
			return nil, errors.Errorf("missing field '%s'", field)
		}
	}
	return fields, nil
}

func scalarLit(value any) (ast.Literal, error) {
	switch value := value.(type) {
	case string:
		return ast.StringLit(value), nil
	case int:
		return ast.IntLit(fmt.Sprint(value)), nil
	case int64:
		return ast.IntLit(fmt.Sprint(value)), nil
	case uint64:
		return ast.IntLit(fmt.Sprint(value)), nil
	case float64:
		return ast.Literal{Syntax: fmt.Sprint(value), Kind: token.FLOAT}, nil
	default:
		return ast.Literal{}, errors.Errorf("expected a scalar literal, got %T", value)
	}
}

func explicitRange(m map[string]any) (ast.Range, bool, error) {
	at, present := m["at"]
	if !present {
		return ast.Range{}, false, nil
	}
	pair, ok := at.([]any)
	if !ok || len(pair) != 2 {
		return ast.Range{}, false, errors.Errorf("at: expected [start, end]")
	}
	start, okStart := asInt(pair[0])
	end, okEnd := asInt(pair[1])
	if !okStart || !okEnd {
		return ast.Range{}, false, errors.Errorf("at: expected [start, end] to be integers")
	}
	return ast.Range{PosStart: token.Pos(start), PosEnd: token.Pos(end)}, true, nil
}

func asInt(value any) (int, bool) {
	switch value := value.(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case uint64:
		return int(value), true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}

func withExplicitRange(expr ast.Expr, m map[string]any) (ast.Expr, error) {
	r, present, err := explicitRange(m)
	if err != nil || !present {
		return expr, err
	}
	switch expr := expr.(type) {
	case *ast.Symbol:
		expr.Range = r
	case *ast.Data:
		expr.Range = r
	case *ast.Block:
		expr.Range = r
	case *ast.Form:
		expr.Range = r
	case *ast.Composition:
		expr.Range = r
	case *ast.PatternExpr:
		expr.Range = r
	case *ast.ArgPatExpr:
		expr.Range = r
	case *ast.Macro:
		expr.Range = r
	case *ast.Assign:
		expr.Range = r
	case *ast.Lambda:
		expr.Range = r
	case *ast.Print:
		expr.Range = r
	case *ast.Label:
		expr.Range = r
	}
	return expr, nil
}

func withExplicitPatternRange(pattern ast.Pattern, m map[string]any) (ast.Pattern, error) {
	r, present, err := explicitRange(m)
	if err != nil || !present {
		return pattern, err
	}
	switch pattern := pattern.(type) {
	case *ast.BindPattern:
		pattern.Range = r
	case *ast.LiteralPattern:
		pattern.Range = r
	case *ast.LabelPattern:
		pattern.Range = r
	case *ast.ChainPattern:
		pattern.Range = r
	}
	return pattern, nil
}

func withExplicitArgPatRange(argPat ast.ArgPat, m map[string]any) (ast.ArgPat, error) {
	r, present, err := explicitRange(m)
	if err != nil || !present {
		return argPat, err
	}
	switch argPat := argPat.(type) {
	case *ast.KeywordPat:
		argPat.Range = r
	case *ast.BinderPat:
		argPat.Range = r
	case *ast.GroupPat:
		argPat.Range = r
	}
	return argPat, nil
}
